package index

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Verdict is the gate's decision for one entry.
type Verdict struct {
	Accepted bool

	// Kind is the declared kind as read from metadata, "" when unmarked.
	Kind string

	// Reason explains a rejection.
	Reason string
}

// Check decides whether an entry may be stored, from the kind declared in
// its metadata. Child, basic and unmarked entries are accepted. Parent and
// unrecognised kinds are rejected.
func Check(meta map[string]any) Verdict {
	raw, declared := declaredKind(meta)
	if !declared {
		return Verdict{Accepted: true}
	}

	kind, ok := domain.ParseChunkKind(raw)
	if !ok {
		return Verdict{Kind: raw, Reason: fmt.Sprintf("unknown chunk kind %q", raw)}
	}

	switch kind {
	case domain.ChunkKindChild, domain.ChunkKindBasic:
		return Verdict{Accepted: true, Kind: raw}
	case domain.ChunkKindParent:
		return Verdict{Kind: raw, Reason: "parent chunks provide context only and are never indexed"}
	default:
		return Verdict{Kind: raw, Reason: fmt.Sprintf("chunk kind %q is not retrievable", raw)}
	}
}

// declaredKind reads chunkType, falling back to the legacy chunkingStrategy
// field. Missing, nil and empty values count as unmarked.
func declaredKind(meta map[string]any) (string, bool) {
	for _, key := range []string{domain.MetaChunkType, domain.MetaChunkingStrategy} {
		v, ok := meta[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case domain.ChunkKind:
			s = string(t)
		default:
			s = fmt.Sprint(t)
		}
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// Validate partitions entries by the gate. It returns the positions of
// accepted entries and a rejection for every other one.
func Validate(ids []string, metadatas []map[string]any) (accepted []int, rejected []domain.Rejection) {
	for i, meta := range metadatas {
		v := Check(meta)
		if v.Accepted {
			accepted = append(accepted, i)
			continue
		}
		rejected = append(rejected, domain.Rejection{ID: ids[i], Kind: v.Kind, Reason: v.Reason})
	}
	return accepted, rejected
}
