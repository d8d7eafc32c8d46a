package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitcurl project",
	Long: `Initialize a new hitcurl project in the current directory.

This creates:
  - .hitcurl.yaml  - Configuration file
  - .env           - Variables for the example request
  - example.yaml   - Example request document

Examples:
  hitcurl init
  hitcurl init --force
  hitcurl send example.yaml --env-file .env`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleDotEnv = `BASE_URL=https://httpbin.org
`

func exampleRequest() *collection.Request {
	return &collection.Request{
		Name:   "create_item",
		Method: "POST",
		URL:    "{{BASE_URL}}/anything/items",
		QueryParams: []collection.KeyValue{
			{Key: "source", Value: "hitcurl"},
		},
		Headers: []collection.KeyValue{
			{Key: "Accept", Value: "application/json"},
			{Key: "X-Request-Id", Value: "{{uuid()}}"},
		},
		Auth: &collection.Auth{
			Type:   "bearer",
			Bearer: &collection.BearerAuth{Token: "{{$API_TOKEN}}"},
		},
		Body: &collection.Body{
			Type: "json",
			JSON: map[string]any{
				"name":      "Test Item",
				"createdAt": "{{now()}}",
			},
		},
	}
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".hitcurl.yaml")
	envFile := filepath.Join(cwd, ".env")
	exampleFile := filepath.Join(cwd, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, envFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := &config.Config{
		Transport:       config.TransportCurl,
		Timeout:         config.DefaultTimeoutMs,
		FollowRedirects: config.BoolPtr(true),
		MaxRedirects:    config.DefaultMaxRedirects,
		HistoryLimit:    config.DefaultHistoryLimit,
		Headers: map[string]string{
			"User-Agent": "hitcurl/" + version,
		},
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(exampleDotEnv), 0644); err != nil {
		return fmt.Errorf("failed to create .env file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	if err := collection.SaveFile(exampleFile, exampleRequest()); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Get started:")
	fmt.Fprintln(cmd.OutOrStdout(), "  hitcurl compile example.yaml --env-file .env")
	fmt.Fprintln(cmd.OutOrStdout(), "  hitcurl send example.yaml --env-file .env")

	return nil
}
