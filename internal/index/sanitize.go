package index

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// passthroughKeys are forwarded to the store unchanged.
var passthroughKeys = map[string]struct{}{
	domain.MetaSource:          {},
	domain.MetaChunkID:         {},
	domain.MetaParentID:        {},
	domain.MetaChunkType:       {},
	domain.MetaDocumentVersion: {},
	domain.MetaTenant:          {},
}

// Sanitize returns a copy of meta that a vector store can persist.
// Passthrough keys keep their values; every other value becomes a string,
// number, bool or nil. Slices, maps and structs are stored as JSON text.
func Sanitize(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if _, ok := passthroughKeys[k]; ok {
			out[k] = v
			continue
		}
		out[k] = coerce(v)
	}
	return out
}

func coerce(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int64:
		return t
	case float64:
		return finite(t)
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint:
		if uint64(t) > math.MaxInt64 {
			return float64(t)
		}
		return int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return float64(t)
		}
		return int64(t)
	case float32:
		return finite(float64(t))
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return coerce(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// finite keeps NaN and infinities out of JSON-backed stores.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}
