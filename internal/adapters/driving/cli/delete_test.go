package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete [name]", deleteCmd.Use)
}

func TestDeleteCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("delete")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDeleteCmd_Deletes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("delete", "notes.md", "-t", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted notes.md")
	assert.Equal(t, []string{"notes.md"}, ts.ingest.deletions())
}

func TestDeleteCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.deleteErr = domain.ErrNotFound

	_, err := execute("delete", "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCmd_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := execute("delete", "notes.md")

	assert.ErrorIs(t, err, errNotConfigured)
}
