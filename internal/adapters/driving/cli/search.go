package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchTenant string
	searchParent bool
	searchFilter []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long: `Embeds the query and returns the most similar child chunks by cosine
similarity. Use --parent to include each child's surrounding parent chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVarP(&searchTenant, "tenant", "t", "", "tenant to search")
	searchCmd.Flags().BoolVarP(&searchParent, "parent", "p", false, "include parent context")
	searchCmd.Flags().StringArrayVarP(&searchFilter, "filter", "f", nil, "metadata filter key=value (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return fmt.Errorf("search: %w", errNotConfigured)
	}
	filter, err := parseKeyValues(searchFilter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := searchService.Search(ctx, args[0], domain.SearchOptions{
		Limit:      searchLimit,
		Tenant:     domain.Tenant(searchTenant),
		Filter:     filter,
		WithParent: searchParent,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		source, _ := r.Metadata[domain.MetaSource].(string)
		if source == "" {
			source = r.ID
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, source, r.Similarity)
		cmd.Printf("      %s\n", truncate(r.Content, 200))
		if r.ParentContent != "" {
			cmd.Printf("      context: %s\n", truncate(r.ParentContent, 300))
		}
		cmd.Println()
	}
}
