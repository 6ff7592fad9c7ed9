package postprocessors

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/annotate"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// DefaultPipeline is the processor order used for ingestion.
var DefaultPipeline = []string{"chunker", "annotate"}

// RegisterDefaults registers the chunker and the metadata annotator.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("annotate", buildAnnotate)
}

// ChunkerConfig converts chunking settings into chunker builder config.
func ChunkerConfig(s domain.ChunkingSettings) map[string]any {
	return map[string]any{
		"mode":           string(s.Mode),
		"parent_size":    s.ParentSize,
		"parent_overlap": s.ParentOverlap,
		"child_size":     s.ChildSize,
		"child_overlap":  s.ChildOverlap,
		"chunk_size":     s.FlatSize,
		"overlap":        s.FlatOverlap,
	}
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - mode (string): "hierarchical" (default) or "flat"
//   - parent_size, parent_overlap (int): Parent window (default: 1024/128)
//   - child_size, child_overlap (int): Child window (default: 256/32)
//   - chunk_size, overlap (int): Flat window (default: 1000/200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if mode, ok := cfg["mode"].(string); ok && mode != "" {
		m := domain.ChunkingMode(mode)
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: chunking mode %q", domain.ErrUnsupportedType, mode)
		}
		opts = append(opts, chunker.WithMode(m))
	}

	parentSize, _ := getIntFromConfig(cfg, "parent_size")
	parentOverlap, ok := getIntFromConfig(cfg, "parent_overlap")
	if !ok {
		parentOverlap = -1
	}
	opts = append(opts, chunker.WithParentWindow(parentSize, parentOverlap))

	childSize, _ := getIntFromConfig(cfg, "child_size")
	childOverlap, ok := getIntFromConfig(cfg, "child_overlap")
	if !ok {
		childOverlap = -1
	}
	opts = append(opts, chunker.WithChildWindow(childSize, childOverlap))

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok && overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// buildAnnotate creates the metadata annotator. It takes no config.
func buildAnnotate(map[string]any) (driven.PostProcessor, error) {
	return annotate.New(), nil
}

// getIntFromConfig reads an integer setting. TOML decodes integers as
// int64 and JSON as float64; numeric strings from flags are accepted too.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}
	if _, isBool := val.(bool); isBool {
		return 0, false
	}
	n, err := cast.ToIntE(val)
	if err != nil {
		return 0, false
	}
	return n, true
}
