package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/import/curl"
	"github.com/abdul-hamid-achik/hitcurl/packages/store"
)

var (
	importOutputFlag     string
	importFormatFlag     string
	importCollectionFlag string
)

var importCmd = &cobra.Command{
	Use:   "import <format> <source>",
	Short: "Import requests from other formats",
	Long: `Import requests from other formats and convert them to request documents.

Supported formats:
  curl - curl command lines

Examples:
  hitcurl import curl "curl -X POST https://api.example.com/users -d name=John"
  hitcurl import curl @commands.sh -o requests/
  hitcurl import curl @commands.sh --collection users
  pbpaste | hitcurl import curl -`,
}

var importCurlCmd = &cobra.Command{
	Use:   "curl <command|@file|->",
	Short: "Import curl command lines",
	Long: `Import one curl command, every command in a file (@file) or every
command read from standard input (-).

Without --output or --collection the documents are printed to standard output.
With one request --output names the file to write; with several it names a
directory that receives one file per request.

Examples:
  hitcurl import curl "curl https://api.example.com/health"
  hitcurl import curl "curl -u admin:secret https://h/admin" -o admin.json
  hitcurl import curl @commands.sh -o requests/ --format json
  hitcurl import curl @commands.sh --collection users`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: importCurlCommand,
}

func init() {
	importCurlCmd.Flags().StringVarP(&importOutputFlag, "output", "o", "", "Output file or directory (default: stdout)")
	importCurlCmd.Flags().StringVar(&importFormatFlag, "format", string(collection.FormatYAML), "Document format: yaml or json")
	importCurlCmd.Flags().StringVar(&importCollectionFlag, "collection", "", "Add the requests to this collection, creating it if needed")

	importCmd.AddCommand(importCurlCmd)
}

func importCurlCommand(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(importFormatFlag)
	if err != nil {
		return err
	}

	reqs, err := convertCurl(args[0], cmd.InOrStdin())
	if err != nil {
		return withExitCode(ExitParseError, err)
	}
	if len(reqs) == 0 {
		return withExitCode(ExitParseError, fmt.Errorf("no curl commands found"))
	}

	docs := make([]collection.Request, 0, len(reqs))
	for _, req := range reqs {
		docs = append(docs, collection.FromModel(req))
	}

	if importCollectionFlag != "" {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := addToCollection(store.NewCollectionStore(a.cfg.DataDir), importCollectionFlag, docs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d request(s) to collection %s\n", len(docs), c.Name)
	}

	switch {
	case importOutputFlag != "":
		return writeDocuments(cmd, importOutputFlag, format, docs)
	case importCollectionFlag == "":
		return printDocuments(cmd.OutOrStdout(), format, docs)
	}
	return nil
}

func convertCurl(source string, stdin io.Reader) ([]*model.Request, error) {
	converter := curl.NewConverter()
	switch {
	case source == "-":
		return converter.ConvertReader(stdin)
	case strings.HasPrefix(source, "@"):
		return converter.ConvertFile(strings.TrimPrefix(source, "@"))
	}
	req, err := converter.ConvertCommand(source)
	if err != nil {
		return nil, err
	}
	return []*model.Request{req}, nil
}

func parseFormat(s string) (collection.Format, error) {
	switch f := collection.Format(strings.ToLower(s)); f {
	case collection.FormatJSON, collection.FormatYAML:
		return f, nil
	}
	return "", withExitCode(ExitUsageError, fmt.Errorf("unknown format %q (use yaml or json)", s))
}

func printDocuments(w io.Writer, format collection.Format, docs []collection.Request) error {
	for i := range docs {
		data, err := collection.Marshal(&docs[i], format)
		if err != nil {
			return err
		}
		if i > 0 && format == collection.FormatYAML {
			fmt.Fprintln(w, "---")
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// writeDocuments writes a single document to path, or several into the
// directory path, one file per request named after it.
func writeDocuments(cmd *cobra.Command, path string, format collection.Format, docs []collection.Request) error {
	if len(docs) == 1 && !strings.HasSuffix(path, string(os.PathSeparator)) {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return writeDocument(cmd, path, format, &docs[0])
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	used := make(map[string]int, len(docs))
	for i := range docs {
		name := docs[i].Name
		if name == "" {
			name = "request"
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		if err := writeDocument(cmd, filepath.Join(path, name+"."+string(format)), format, &docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeDocument(cmd *cobra.Command, path string, format collection.Format, doc *collection.Request) error {
	data, err := collection.Marshal(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	return nil
}
