package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/engine"
)

var (
	compileEnvFlag     string
	compileEnvFileFlag string
	compileRedactFlag  bool
	compileJSONFlag    bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>...",
	Short: "Print the curl command line for request documents",
	Long: `Resolve variables and compile request documents without sending them.

The printed command can be pasted into a shell. Use --redact to mask the
password and Authorization header, or --json to print the argument list.

Examples:
  hitcurl compile get-user.yaml
  hitcurl compile login.json --env staging --redact
  hitcurl compile upload.yaml --json`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: compileCommand,
}

func init() {
	compileCmd.Flags().StringVarP(&compileEnvFlag, "env", "e", getEnvString("HITCURL_ENV", ""), "Environment to resolve variables from (env: HITCURL_ENV)")
	compileCmd.Flags().StringVar(&compileEnvFileFlag, "env-file", getEnvString("HITCURL_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITCURL_ENV_FILE)")
	compileCmd.Flags().BoolVar(&compileRedactFlag, "redact", false, "Mask credentials in the output")
	compileCmd.Flags().BoolVar(&compileJSONFlag, "json", false, "Print the argument list as a JSON array")
}

func compileCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resolver, err := a.newResolver(compileEnvFlag, compileEnvFileFlag)
	if err != nil {
		return err
	}

	reqs, err := loadRequests(args)
	if err != nil {
		return err
	}

	// Compilation needs no transport.
	eng := engine.New(nil, engine.WithDefaultHeaders(a.cfg.Headers), engine.WithLogger(a.logger))

	for _, req := range reqs {
		inv := eng.Compile(resolver.ResolveRequest(req))
		if err := printInvocation(cmd, inv); err != nil {
			return err
		}
	}
	return nil
}

func printInvocation(cmd *cobra.Command, inv *compiler.Invocation) error {
	if compileJSONFlag {
		argv := append([]string{compiler.Binary}, inv.Args()...)
		data, err := json.MarshalIndent(argv, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if compileRedactFlag {
		fmt.Fprintln(cmd.OutOrStdout(), inv.Redacted())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), inv.String())
	return nil
}
