package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore over the records table.
// Similarity scoring happens in the index; this store only filters and samples.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Insert stores records, replacing any with the same ID.
func (s *vectorStore) Insert(ctx context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, content, embedding, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling record metadata: %w", err)
		}
		if r.Metadata == nil {
			metadataJSON = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Content,
			encodeVector(r.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get returns the records with the given IDs in request order.
func (s *vectorStore) Get(ctx context.Context, ids []string) ([]domain.IndexRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	found, err := s.query(ctx, "WHERE id IN ("+placeholders(len(ids))+")", args)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.IndexRecord, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	out := make([]domain.IndexRecord, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Delete removes records by ID. Missing IDs are ignored.
func (s *vectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return fmt.Errorf("deleting records: %w", err)
	}
	return nil
}

// Count returns the number of records matching filter.
func (s *vectorStore) Count(ctx context.Context, filter domain.Filter) (int, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// List returns every record matching filter in insertion order.
func (s *vectorStore) List(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, where+" ORDER BY rowid", args)
}

// Sample returns up to n random records matching filter.
func (s *vectorStore) Sample(ctx context.Context, filter domain.Filter, n int) ([]domain.IndexRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, where+" ORDER BY RANDOM() LIMIT ?", append(args, n))
}

// Close closes the underlying database.
func (s *vectorStore) Close() error {
	return s.store.Close()
}

func (s *vectorStore) query(ctx context.Context, tail string, args []any) ([]domain.IndexRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, content, embedding, metadata FROM records "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []domain.IndexRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.IndexRecord
		var blob []byte
		var metadataJSON string
		if err := rows.Scan(&r.ID, &r.Content, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Embedding = decodeVector(blob)
		if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling record metadata: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// whereClause turns an equality filter into json_extract comparisons.
// Keys are sorted so the generated SQL is stable.
func whereClause(filter domain.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		if strings.ContainsRune(k, '"') {
			return "", nil, fmt.Errorf("%w: filter key %q", domain.ErrInvalidInput, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, len(keys))
	args := make([]any, 0, 2*len(keys))
	for i, k := range keys {
		conds[i] = "json_extract(metadata, ?) = ?"
		args = append(args, `$."`+k+`"`, filterValue(filter[k]))
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

// filterValue converts a filter value to what json_extract yields for it.
// JSON booleans come back as 1 and 0.
func filterValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64, float64, string:
		return t
	case float32:
		return float64(t)
	default:
		return fmt.Sprint(t)
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
