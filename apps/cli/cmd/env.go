package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/store"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environments and their variables",
	Long: `Manage named sets of variables used to resolve {{name}} references.

The active environment is used by send, compile and collection send unless
--env names another.

Examples:
  hitcurl env set staging baseUrl=https://staging.example.com token=abc
  hitcurl env use staging
  hitcurl env list
  hitcurl env delete staging`,
}

var envListCmd = &cobra.Command{
	Use:   "list [env]",
	Short: "List environments, or the variables of one",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE:  envListCommand,
}

var envSetCmd = &cobra.Command{
	Use:   "set <env> KEY=VALUE...",
	Short: "Set variables, creating the environment if needed",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE:  envSetCommand,
}

var envUseCmd = &cobra.Command{
	Use:   "use <env>",
	Short: "Make an environment the active one",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  envUseCommand,
}

var envDeleteCmd = &cobra.Command{
	Use:     "delete <env> [KEY]...",
	Aliases: []string{"rm"},
	Short:   "Delete an environment, or variables from it",
	Args:    usageArgs(cobra.MinimumNArgs(1)),
	RunE:    envDeleteCommand,
}

var envDisableFlag bool

func init() {
	envSetCmd.Flags().BoolVar(&envDisableFlag, "disabled", false, "Store the variables disabled")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envUseCmd)
	envCmd.AddCommand(envDeleteCmd)
}

func environmentStore(cmd *cobra.Command) (*app, *store.EnvironmentStore, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	return a, store.NewEnvironmentStore(a.cfg.DataDir), nil
}

func envListCommand(cmd *cobra.Command, args []string) error {
	a, es, err := environmentStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		e, err := es.Get(args[0])
		if err != nil {
			return storeError(err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tVALUE\tENABLED")
		for _, kv := range e.Variables {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", kv.Key, kv.Value, kv.IsEnabled())
		}
		return tw.Flush()
	}

	all, err := es.LoadAll()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No environments")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tVARIABLES\tID")
	for _, e := range all {
		marker := ""
		if e.IsActive {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", marker, e.Name, len(e.Variables), e.ID)
	}
	return tw.Flush()
}

func envSetCommand(cmd *cobra.Command, args []string) error {
	vars, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	a, es, err := environmentStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := es.Get(args[0])
	if errors.Is(err, store.ErrNotFound) {
		e = &collection.Environment{ID: uuid.NewString(), Name: args[0], Variables: []collection.KeyValue{}}
	} else if err != nil {
		return err
	}

	var enabled *bool
	if envDisableFlag {
		enabled = new(bool)
	}
	for _, kv := range vars {
		kv.Enabled = enabled
		e.Variables = setVariable(e.Variables, kv)
	}

	if err := es.Save(*e); err != nil {
		return fmt.Errorf("failed to save environment: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Environment %s: %d variable(s)\n", e.Name, len(e.Variables))
	return nil
}

// parseAssignments parses KEY=VALUE arguments. The value may contain '='.
func parseAssignments(args []string) ([]collection.KeyValue, error) {
	vars := make([]collection.KeyValue, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid variable %q (use KEY=VALUE)", arg))
		}
		vars = append(vars, collection.KeyValue{Key: key, Value: value})
	}
	return vars, nil
}

// setVariable replaces the variable with the same key or appends it.
func setVariable(vars []collection.KeyValue, kv collection.KeyValue) []collection.KeyValue {
	for i := range vars {
		if vars[i].Key == kv.Key {
			vars[i] = kv
			return vars
		}
	}
	return append(vars, kv)
}

func envUseCommand(cmd *cobra.Command, args []string) error {
	a, es, err := environmentStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := es.Get(args[0])
	if err != nil {
		return storeError(err)
	}
	if err := es.SetActive(e.ID); err != nil {
		return storeError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active environment: %s\n", e.Name)
	return nil
}

func envDeleteCommand(cmd *cobra.Command, args []string) error {
	a, es, err := environmentStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := es.Get(args[0])
	if err != nil {
		return storeError(err)
	}

	if len(args) == 1 {
		if err := es.Delete(e.ID); err != nil {
			return storeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted environment %s\n", e.Name)
		return nil
	}

	remove := make(map[string]bool, len(args)-1)
	for _, key := range args[1:] {
		remove[key] = true
	}
	kept := make([]collection.KeyValue, 0, len(e.Variables))
	for _, kv := range e.Variables {
		if remove[kv.Key] {
			delete(remove, kv.Key)
			continue
		}
		kept = append(kept, kv)
	}
	if len(remove) > 0 {
		missing := make([]string, 0, len(remove))
		for key := range remove {
			missing = append(missing, key)
		}
		sort.Strings(missing)
		return withExitCode(ExitUsageError, fmt.Errorf("environment %s has no variable %s", e.Name, strings.Join(missing, ", ")))
	}

	e.Variables = kept
	if err := es.Save(*e); err != nil {
		return fmt.Errorf("failed to save environment: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d variable(s) from environment %s\n", len(args)-1, e.Name)
	return nil
}
