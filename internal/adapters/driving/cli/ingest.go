package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

var (
	ingestTenant string
	ingestMeta   []string
	ingestExts   []string
	ingestNoPing bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Chunk, embed and index documents",
	Long: `Reads each file (directories are walked) and runs it through chunking,
embedding and indexing. Unchanged files are skipped; changed files replace
their previous version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTenant, "tenant", "t", "", "tenant to ingest into")
	ingestCmd.Flags().StringArrayVarP(&ingestMeta, "meta", "m", nil, "metadata key=value (repeatable)")
	ingestCmd.Flags().StringSliceVar(&ingestExts, "ext", defaultExtensions, "file extensions to pick up in directories")
	ingestCmd.Flags().BoolVar(&ingestNoPing, "no-ping", false, "skip the provider connectivity check")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest: %w", errNotConfigured)
	}
	meta, err := parseKeyValues(ingestMeta)
	if err != nil {
		return err
	}
	files, err := collectFiles(args, ingestExts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No files to ingest.")
		return nil
	}

	if !ingestNoPing && settingsService != nil {
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			return fmt.Errorf("embedding provider check failed: %w", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	failed := 0
	for _, path := range files {
		report, err := ingestFile(ctx, path, domain.Tenant(ingestTenant), meta)
		if err != nil {
			failed++
			cmd.PrintErrf("  %s: %v\n", path, err)
			continue
		}
		printReport(cmd, path, report)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}

func ingestFile(ctx context.Context, path string, tenant domain.Tenant, meta map[string]any) (*domain.IngestReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ingestService.Ingest(ctx, driving.IngestRequest{
		Name:     path,
		Content:  string(content),
		Tenant:   tenant,
		Metadata: meta,
	})
}

func printReport(cmd *cobra.Command, path string, r *domain.IngestReport) {
	if r.Unchanged {
		cmd.Printf("  %s: unchanged (v%d)\n", path, r.Version)
		return
	}
	cmd.Printf("  %s: v%d, %d chunks (%d parents, %d children), %d indexed, %d rejected",
		path, r.Version, r.Produced, r.Parents, r.Children, r.Accepted, r.Rejected)
	if r.Failed > 0 {
		cmd.Printf(", %d embedding failures", r.Failed)
	}
	if r.Fallback {
		cmd.Print(" [flat fallback]")
	}
	cmd.Println()
}
