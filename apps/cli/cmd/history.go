package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recorded responses",
	Long: `Responses that reached a server are recorded after every send, newest
first, up to historyLimit entries.

Examples:
  hitcurl history list
  hitcurl history list --limit 5
  hitcurl history clear`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded responses, newest first",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  historyListCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded response",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  historyClearCommand,
}

var historyLimitFlag int

func init() {
	historyListCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of entries to show (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.historyStore()
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := h.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tDURATION\tMETHOD\tURL\tNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%dms\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Response.Status,
			e.Response.TimeMs(),
			e.Request.Method,
			e.Request.URL,
			e.Request.Name,
		)
	}
	return tw.Flush()
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.historyStore()
	if err != nil {
		return err
	}
	defer h.Close()

	count, err := h.Count(cmd.Context())
	if err != nil {
		return err
	}
	if err := h.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history entries\n", count)
	return nil
}
