package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/config"
	"github.com/abdul-hamid-achik/hitcurl/packages/transport"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the curl binary in use",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hitcurl version %s\n", version)
		fmt.Fprintf(out, "Built: %s\n", buildTime)

		// A broken config file should not hide the version.
		curlPath := ""
		if cfg, err := config.LoadConfig(configFlag); err == nil {
			curlPath = cfg.CurlPath
		}
		line, err := transport.CurlVersion(cmd.Context(), curlPath)
		if err != nil {
			fmt.Fprintf(out, "Transport: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Transport: %s\n", line)
	},
}
