package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and embedding counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return fmt.Errorf("stats: %w", errNotConfigured)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stats, err := searchService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	search := "sampled exact"
	if stats.NativeSearch {
		search = "native"
	}
	cmd.Println("[Store]")
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Records:   %d\n", stats.Records)
	cmd.Printf("  Search:    %s\n", search)
	cmd.Println()

	m := stats.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Requests:  %d (%d ok, %d failed, %d retries)\n",
		m.TotalRequests, m.SuccessfulRequests, m.FailedRequests, m.Retries)
	cmd.Printf("  Latency:   %.1f ms avg\n", m.AverageLatencyMs)
	cmd.Printf("  Cache:     %d entries, %d hits, %d misses\n",
		stats.Cache.Size, stats.Cache.Hits, stats.Cache.Misses)
	return nil
}
