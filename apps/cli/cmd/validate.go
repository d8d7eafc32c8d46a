package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate request documents without sending them",
	Long: `Validate request documents against the request schema and check that
they convert to a sendable request.

Examples:
  hitcurl validate get-user.yaml
  hitcurl validate requests/*.json`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hasErrors := false
	for _, file := range args {
		_, err := collection.LoadRequest(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s\n", err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
