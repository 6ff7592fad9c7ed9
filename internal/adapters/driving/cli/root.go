// Package cli provides the sercha-rag command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/overlay"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// skipServices marks commands that run without the pipeline.
const skipServices = "skip-services"

var (
	version = "dev"

	configDir string
	verbose   bool

	// Services used by commands. Tests assign mocks directly.
	ingestService   driving.IngestService
	searchService   driving.SearchService
	settingsService driving.SettingsService

	closeApp func() error

	v = overlay.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Hierarchical chunking, embedding and retrieval for RAG",
	Long: `sercha-rag splits documents into parent and child chunks, embeds the
children and stores them for similarity search. Parents are kept for context.

Configuration is read from ~/.sercha-rag/config.toml and overridden by
SERCHA_RAG_* environment variables and flags.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&configDir, "config", "", "config directory (default ~/.sercha-rag)")
	flags.String("backend", "", "vector backend: memory, sqlite or qdrant")
	flags.String("provider", "", "embedding provider: openai or ollama")
	flags.String("model", "", "embedding model")
	flags.String("mode", "", "chunking mode: hierarchical or flat")
	flags.Bool("tenancy", false, "scope inserts and searches by tenant")

	// Flags override config (flags > env > file > defaults).
	_ = v.BindPFlag("vector.backend", flags.Lookup("backend"))
	_ = v.BindPFlag("embedding.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("embedding.model", flags.Lookup("model"))
	_ = v.BindPFlag("chunking.mode", flags.Lookup("mode"))
	_ = v.BindPFlag("tenancy.enabled", flags.Lookup("tenancy"))
	_ = v.BindEnv("embedding.api_key", overlay.EnvPrefix+"_EMBEDDING_API_KEY", "OPENAI_API_KEY")
}

// Execute runs the root command.
func Execute(ver string) error {
	if ver != "" {
		version = ver
	}
	// A missing .env file is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipServices] == "true" || ingestService != nil || searchService != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, configDir, v)
	if err != nil {
		return err
	}
	ingestService = a.ingest
	searchService = a.search
	settingsService = a.settings
	closeApp = a.Close
	return nil
}

func teardown(*cobra.Command, []string) error {
	if closeApp == nil {
		return nil
	}
	err := closeApp()
	closeApp = nil
	ingestService, searchService, settingsService = nil, nil, nil
	return err
}

var errNotConfigured = errors.New("service not configured")
