package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	dataDirFlag  string
	logLevelFlag string
	logFileFlag  string
	noColorFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "hitcurl",
	Short: "Send HTTP requests through curl. See exactly what was sent.",
	Long: `hitcurl compiles request documents into curl command lines, runs them and
parses what comes back into a structured response.

Requests live in JSON or YAML files, or in saved collections. Variables in
{{double braces}} are resolved from the active environment, a .env file and
the process environment before the request is compiled.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITCURL_CONFIG", ""), "Path to config file (env: HITCURL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", getEnvString("HITCURL_DATA_DIR", ""), "Directory for collections, environments and history (env: HITCURL_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", getEnvString("HITCURL_LOG_LEVEL", ""), "Log level: trace, debug, info, warn, error (env: HITCURL_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", getEnvString("HITCURL_LOG_FILE", ""), "Also write logs to this file, rotated by size (env: HITCURL_LOG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITCURL_NO_COLOR", false), "Disable colored output (env: HITCURL_NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, fmt.Errorf("%w\nRun '%s --help' for usage", err, cmd.CommandPath()))
	})

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// usageArgs marks argument validation errors as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withExitCode(ExitUsageError, fn(cmd, args))
	}
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
