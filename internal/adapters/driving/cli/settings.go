package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective settings",
	Long: `Shows the settings after merging defaults, config.toml, environment
variables and flags.`,
	RunE: runSettingsShow,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings and ping the embedding provider",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	c := s.Chunking
	cmd.Println("[Chunking]")
	cmd.Printf("  Mode:    %s\n", c.Mode)
	cmd.Printf("  Parent:  %d (overlap %d)\n", c.ParentSize, c.ParentOverlap)
	cmd.Printf("  Child:   %d (overlap %d)\n", c.ChildSize, c.ChildOverlap)
	cmd.Printf("  Flat:    %d (overlap %d)\n", c.FlatSize, c.FlatOverlap)
	cmd.Println()

	e := s.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", e.Provider.Description())
	cmd.Printf("  Model:    %s\n", e.Model)
	if e.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", e.BaseURL)
	}
	if e.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key:  %s\n", maskAPIKey(e.APIKey))
	}
	cmd.Printf("  Retry:    %d attempts, %s initial backoff\n", e.MaxAttempts, e.InitialBackoff)
	cmd.Printf("  Rate:     one call per %s\n", e.RateLimitInterval)
	cmd.Printf("  Batching: %d per batch, %d concurrent, %s pacing\n", e.BatchSize, e.SubBatchSize, e.PacingDelay)
	cmd.Println()

	vs := s.Vector
	cmd.Println("[Vector]")
	cmd.Printf("  Backend:    %s\n", vs.Backend.Description())
	if vs.Backend.HasNativeSearch() {
		cmd.Printf("  Qdrant:     %s:%d/%s\n", vs.QdrantHost, vs.QdrantPort, vs.Collection)
	} else {
		cmd.Printf("  Candidates: %d\n", vs.MaxCandidates)
	}
	cmd.Printf("  Tenancy:    %t\n", s.TenancyEnabled)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("settings invalid: %w", err)
	}
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		return fmt.Errorf("embedding provider unreachable: %w", err)
	}
	cmd.Println("Settings OK.")
	return nil
}

// maskAPIKey shows only the last four characters of a key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
