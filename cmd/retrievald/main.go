// Package main implements the retrievald CLI for domain lifecycle,
// ingestion, and federated search operations.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/ingest"
)

var (
	// configPath overrides the default config file location.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "retrievald",
	Short: "Domain-isolated retrieval over per-domain vector collections",
	Long: `retrievald manages isolated knowledge domains, routes content into
per-domain vector collections by content type, and runs federated
similarity search across domains with global re-ranking.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/retrievald/config.yaml)")

	sourceCmd.AddCommand(sourceCreateCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceDeleteCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage knowledge domains",
}

var (
	createTitle string
	createTypes []string
)

var sourceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a domain with one collection per enabled content type",
	Long: `Create a domain. One vector collection is provisioned per enabled
content type; on provisioning failure nothing is left behind.

Examples:
  retrievald source create --title "AI Knowledge" --types documents,code
  retrievald source create --title "Support Docs"`,
	RunE: runSourceCreate,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all domains",
	RunE:  runSourceList,
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete <domain-id>",
	Short: "Delete a domain and its collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceDelete,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <domain-id> <file>",
	Short: "Ingest a file into a domain, one chunk per non-empty line",
	Long: `Ingest a file into a domain. Each non-empty line becomes one chunk,
classified by content type and routed to the domain's collection for
that type. The per-type report is printed as JSON.

Examples:
  retrievald ingest 6a1f... notes.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

var (
	searchDomains []string
	searchK       int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Federated similarity search across domains",
	Long: `Search one or more domains and merge the results into a single list
ranked by similarity.

Examples:
  retrievald search "neural networks" --domains 6a1f...,9c2e... --k 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	sourceCreateCmd.Flags().StringVar(&createTitle, "title", "", "human-readable domain title (required)")
	sourceCreateCmd.Flags().StringSliceVar(&createTypes, "types", []string{string(contenttype.Documents)}, "enabled content types")
	_ = sourceCreateCmd.MarkFlagRequired("title")

	searchCmd.Flags().StringSliceVar(&searchDomains, "domains", nil, "domain ids to search (required)")
	searchCmd.Flags().IntVar(&searchK, "k", 10, "number of results")
	_ = searchCmd.MarkFlagRequired("domains")
}

func runSourceCreate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	types := make([]contenttype.ContentType, len(createTypes))
	for i, t := range createTypes {
		types[i] = contenttype.ContentType(strings.TrimSpace(t))
	}

	domain, err := app.coordinator.Create(ctx, createTitle, types)
	if err != nil {
		return err
	}
	return printJSON(domain)
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	domains, err := app.coordinator.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(domains)
}

func runSourceDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.coordinator.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	chunks, err := readChunks(args[1])
	if err != nil {
		return err
	}

	report, err := app.router.Ingest(ctx, args[0], chunks)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	matches, err := app.engine.Search(ctx, args[0], searchDomains, searchK)
	if err != nil {
		return err
	}
	return printJSON(matches)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readChunks(path string) ([]ingest.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var chunks []ingest.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ordinal := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		chunks = append(chunks, ingest.Chunk{Text: line, Ordinal: ordinal})
		ordinal++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return chunks, nil
}
