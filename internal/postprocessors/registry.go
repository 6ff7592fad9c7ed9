package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// BuilderFunc builds a stage from its config table. A nil table means
// defaults.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry builds pipeline stages by name.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build returns the named stage, or ErrUnsupportedType for unknown names.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %s", domain.ErrUnsupportedType, name)
	}
	return builder(cfg)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered stages alphabetically.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

// BuildPipeline builds the named stages in order, passing each its entry
// from cfg.
func (r *Registry) BuildPipeline(names []string, cfg map[string]map[string]any) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		stage, err := r.Build(name, cfg[name])
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}
