package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/store"
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage saved request collections",
	Long: `Manage collections of requests stored in the data directory.

Collections and requests are referenced by ID or name.

Examples:
  hitcurl collection list
  hitcurl collection add users get-user.yaml create-user.yaml
  hitcurl collection show users
  hitcurl collection send users get_users --env staging
  hitcurl collection delete users get_users`,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  collectionListCommand,
}

var collectionShowCmd = &cobra.Command{
	Use:   "show <collection> [request]",
	Short: "Show the requests of a collection, or one request document",
	Args:  usageArgs(cobra.RangeArgs(1, 2)),
	RunE:  collectionShowCommand,
}

var collectionAddCmd = &cobra.Command{
	Use:   "add <collection> <file>...",
	Short: "Add request documents to a collection, creating it if needed",
	Args:  usageArgs(cobra.MinimumNArgs(2)),
	RunE:  collectionAddCommand,
}

var collectionDeleteCmd = &cobra.Command{
	Use:     "delete <collection> [request]",
	Aliases: []string{"rm"},
	Short:   "Delete a collection, or one request from it",
	Args:    usageArgs(cobra.RangeArgs(1, 2)),
	RunE:    collectionDeleteCommand,
}

var collectionSendCmd = &cobra.Command{
	Use:   "send <collection> [request]...",
	Short: "Send every request of a collection, or the named ones",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE:  collectionSendCommand,
}

var (
	collectionDescriptionFlag string
	collectionShowFormatFlag  string
	collectionSendFlags       requestFlags
)

func init() {
	collectionAddCmd.Flags().StringVar(&collectionDescriptionFlag, "description", "", "Description for a new collection")
	collectionShowCmd.Flags().StringVar(&collectionShowFormatFlag, "format", string(collection.FormatYAML), "Document format when showing a request: yaml or json")
	addRequestFlags(collectionSendCmd, &collectionSendFlags)

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	collectionCmd.AddCommand(collectionSendCmd)
}

func collectionStore(cmd *cobra.Command) (*app, *store.CollectionStore, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	return a, store.NewCollectionStore(a.cfg.DataDir), nil
}

// storeError maps a missing collection, environment or request to a usage error.
func storeError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return withExitCode(ExitUsageError, err)
	}
	return err
}

func collectionListCommand(cmd *cobra.Command, args []string) error {
	a, cs, err := collectionStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := cs.LoadAll()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No collections")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREQUESTS\tUPDATED\tID")
	for _, c := range all {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Name, len(c.Requests), formatMillis(c.UpdatedAt), c.ID)
	}
	return tw.Flush()
}

func collectionShowCommand(cmd *cobra.Command, args []string) error {
	a, cs, err := collectionStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := cs.Get(args[0])
	if err != nil {
		return storeError(err)
	}

	if len(args) == 2 {
		format, err := parseFormat(collectionShowFormatFlag)
		if err != nil {
			return err
		}
		doc, ok := c.Find(args[1])
		if !ok {
			return withExitCode(ExitUsageError, fmt.Errorf("request %q not found in collection %s", args[1], c.Name))
		}
		return printDocuments(cmd.OutOrStdout(), format, []collection.Request{*doc})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
	if c.Description != "" {
		fmt.Fprintln(out, c.Description)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMETHOD\tURL\tID")
	for _, r := range c.Requests {
		method := r.Method
		if method == "" {
			method = string(model.MethodGet)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, method, r.URL, r.ID)
	}
	return tw.Flush()
}

func collectionAddCommand(cmd *cobra.Command, args []string) error {
	docs := make([]collection.Request, 0, len(args)-1)
	for _, path := range args[1:] {
		doc, err := collection.LoadFile(path)
		if err != nil {
			return withExitCode(ExitParseError, err)
		}
		if _, err := doc.ToModel(); err != nil {
			return withExitCode(ExitParseError, fmt.Errorf("%s: %w", path, err))
		}
		docs = append(docs, *doc)
	}

	a, cs, err := collectionStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := addToCollection(cs, args[0], docs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d request(s) to collection %s\n", len(docs), c.Name)
	return nil
}

// addToCollection appends docs to the collection named ref, creating it when
// it does not exist. Requests without an ID or timestamps get them.
func addToCollection(cs *store.CollectionStore, ref string, docs []collection.Request) (*collection.Collection, error) {
	now := time.Now().UnixMilli()

	c, err := cs.Get(ref)
	if errors.Is(err, store.ErrNotFound) {
		c = &collection.Collection{
			ID:          uuid.NewString(),
			Name:        ref,
			Description: collectionDescriptionFlag,
			Requests:    []collection.Request{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	} else if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.CreatedAt == 0 {
			doc.CreatedAt = now
		}
		doc.UpdatedAt = now
		c.Requests = append(c.Requests, doc)
	}

	if err := cs.Save(*c); err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	return c, nil
}

func collectionDeleteCommand(cmd *cobra.Command, args []string) error {
	a, cs, err := collectionStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := cs.Get(args[0])
	if err != nil {
		return storeError(err)
	}

	if len(args) == 1 {
		if err := cs.Delete(c.ID); err != nil {
			return storeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s\n", c.Name)
		return nil
	}

	doc, ok := c.Find(args[1])
	if !ok {
		return withExitCode(ExitUsageError, fmt.Errorf("request %q not found in collection %s", args[1], c.Name))
	}
	name, id := doc.Name, doc.ID

	kept := make([]collection.Request, 0, len(c.Requests)-1)
	for _, r := range c.Requests {
		if r.ID != id || r.Name != name {
			kept = append(kept, r)
		}
	}
	c.Requests = kept
	if err := cs.Save(*c); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted request %s from collection %s\n", name, c.Name)
	return nil
}

func collectionSendCommand(cmd *cobra.Command, args []string) error {
	a, cs, err := collectionStore(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := cs.Get(args[0])
	if err != nil {
		return storeError(err)
	}

	docs := c.Requests
	if len(args) > 1 {
		docs = make([]collection.Request, 0, len(args)-1)
		for _, ref := range args[1:] {
			doc, ok := c.Find(ref)
			if !ok {
				return withExitCode(ExitUsageError, fmt.Errorf("request %q not found in collection %s", ref, c.Name))
			}
			docs = append(docs, *doc)
		}
	}
	if len(docs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Collection %s has no requests\n", c.Name)
		return nil
	}

	reqs := make([]*model.Request, 0, len(docs))
	for _, doc := range docs {
		req, err := doc.ToModel()
		if err != nil {
			return withExitCode(ExitParseError, fmt.Errorf("%s: %w", doc.Name, err))
		}
		reqs = append(reqs, req)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.newSender(cmd, &collectionSendFlags)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.send(ctx, reqs)
	if err != nil {
		return err
	}
	return out.err(collectionSendFlags.fail)
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
