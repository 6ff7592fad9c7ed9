package qdrant

import (
	"fmt"
	"math/rand/v2"
	"sort"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// toValue converts a metadata value to a payload value. Unknown types are
// stored by their printed form.
func toValue(v any) *pb.Value {
	switch t := v.(type) {
	case nil:
		return &pb.Value{Kind: &pb.Value_NullValue{NullValue: pb.NullValue_NULL_VALUE}}
	case string:
		return stringValue(t)
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: t}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(t)}}
	case int32:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(t)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: t}}
	case float32:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: float64(t)}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: t}}
	case []any:
		values := make([]*pb.Value, len(t))
		for i, item := range t {
			values[i] = toValue(item)
		}
		return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}
	case map[string]any:
		return &pb.Value{Kind: &pb.Value_StructValue{StructValue: &pb.Struct{Fields: toPayload(t)}}}
	default:
		return stringValue(fmt.Sprint(t))
	}
}

func toPayload(meta map[string]any) map[string]*pb.Value {
	payload := make(map[string]*pb.Value, len(meta)+2)
	for k, v := range meta {
		payload[k] = toValue(v)
	}
	return payload
}

func fromValue(v *pb.Value) any {
	switch k := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return k.StringValue
	case *pb.Value_BoolValue:
		return k.BoolValue
	case *pb.Value_IntegerValue:
		return k.IntegerValue
	case *pb.Value_DoubleValue:
		return k.DoubleValue
	case *pb.Value_ListValue:
		out := make([]any, len(k.ListValue.GetValues()))
		for i, item := range k.ListValue.GetValues() {
			out[i] = fromValue(item)
		}
		return out
	case *pb.Value_StructValue:
		out := make(map[string]any, len(k.StructValue.GetFields()))
		for key, item := range k.StructValue.GetFields() {
			out[key] = fromValue(item)
		}
		return out
	default:
		return nil
	}
}

// fromPayload rebuilds a record, pulling the reserved keys out of the metadata.
func fromPayload(payload map[string]*pb.Value, vector []float32) domain.IndexRecord {
	r := domain.IndexRecord{
		ID:        payload[payloadID].GetStringValue(),
		Content:   payload[payloadContent].GetStringValue(),
		Embedding: vector,
		Metadata:  make(map[string]any, len(payload)),
	}
	for k, v := range payload {
		if k == payloadID || k == payloadContent {
			continue
		}
		r.Metadata[k] = fromValue(v)
	}
	return r
}

// toFilter builds a must-match filter. Keys are sorted so requests are stable.
func toFilter(filter domain.Filter) *pb.Filter {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	must := make([]*pb.Condition, len(keys))
	for i, k := range keys {
		must[i] = &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{Field: fieldCondition(k, filter[k])},
		}
	}
	return &pb.Filter{Must: must}
}

func fieldCondition(key string, v any) *pb.FieldCondition {
	match := func(m *pb.Match) *pb.FieldCondition {
		return &pb.FieldCondition{Key: key, Match: m}
	}
	switch t := v.(type) {
	case bool:
		return match(&pb.Match{MatchValue: &pb.Match_Boolean{Boolean: t}})
	case int:
		return match(&pb.Match{MatchValue: &pb.Match_Integer{Integer: int64(t)}})
	case int32:
		return match(&pb.Match{MatchValue: &pb.Match_Integer{Integer: int64(t)}})
	case int64:
		return match(&pb.Match{MatchValue: &pb.Match_Integer{Integer: t}})
	case float64:
		return &pb.FieldCondition{Key: key, Range: &pb.Range{Gte: &t, Lte: &t}}
	case string:
		return match(&pb.Match{MatchValue: &pb.Match_Keyword{Keyword: t}})
	default:
		return match(&pb.Match{MatchValue: &pb.Match_Keyword{Keyword: fmt.Sprint(t)}})
	}
}

func isMissingCollection(err error) bool {
	return status.Code(err) == codes.NotFound
}

// reservoir keeps a uniform random sample of everything offered to it.
type reservoir struct {
	size  int
	seen  int
	items []domain.IndexRecord
}

func newReservoir(size int) *reservoir {
	return &reservoir{size: size, items: make([]domain.IndexRecord, 0, size)}
}

func (r *reservoir) offer(rec domain.IndexRecord) {
	r.seen++
	if len(r.items) < r.size {
		r.items = append(r.items, rec)
		return
	}
	if j := rand.IntN(r.seen); j < r.size {
		r.items[j] = rec
	}
}
