package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var deleteTenant string

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Remove a document and its chunks",
	Long:  `Deletes every stored version of the named document along with its vector records.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteTenant, "tenant", "t", "", "tenant the document belongs to")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("delete: %w", errNotConfigured)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ingestService.Delete(ctx, domain.Tenant(deleteTenant), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
