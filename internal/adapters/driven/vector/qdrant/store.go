package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Payload keys reserved for the record itself.
const (
	payloadID      = "_recordId"
	payloadContent = "_content"
)

// scrollPage is the page size used when walking the collection.
const scrollPage = 256

// Config holds connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// Store implements driven.VectorStore and driven.NativeSearcher.
type Store struct {
	points      pb.PointsClient
	collections pb.CollectionsClient
	conn        *grpc.ClientConn
	collection  string
	apiKey      string

	mu      sync.Mutex
	created bool
}

var (
	_ driven.VectorStore    = (*Store)(nil)
	_ driven.NativeSearcher = (*Store)(nil)
)

// New dials Qdrant's gRPC port. The connection is established lazily.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("%w: qdrant host and port are required", domain.ErrInvalidInput)
	}
	if cfg.Collection == "" {
		cfg.Collection = "chunks"
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant at %s: %v", domain.ErrStoreUnavailable, addr, err)
	}

	s := NewWithClients(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), cfg.Collection, cfg.APIKey)
	s.conn = conn
	return s, nil
}

// NewWithClients builds a store over existing gRPC clients.
func NewWithClients(points pb.PointsClient, collections pb.CollectionsClient, collection, apiKey string) *Store {
	return &Store{
		points:      points,
		collections: collections,
		collection:  collection,
		apiKey:      apiKey,
	}
}

// Insert upserts records as points, creating the collection if needed.
func (s *Store) Insert(ctx context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}
	ctx = s.withAuth(ctx)
	if err := s.ensureCollection(ctx, len(records[0].Embedding)); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		payload := toPayload(r.Metadata)
		payload[payloadID] = stringValue(r.ID)
		payload[payloadContent] = stringValue(r.Content)
		points[i] = &pb.PointStruct{
			Id: pointID(r.ID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Embedding}},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return unavailable("upsert points", err)
	}
	return nil
}

// Get returns the records with the given IDs in request order.
func (s *Store) Get(ctx context.Context, ids []string) ([]domain.IndexRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	resp, err := s.points.Get(s.withAuth(ctx), &pb.GetPoints{
		CollectionName: s.collection,
		Ids:            pointIDs,
		WithPayload:    withPayload(),
		WithVectors:    withVectors(),
	})
	if err != nil {
		if isMissingCollection(err) {
			return nil, nil
		}
		return nil, unavailable("get points", err)
	}

	byID := make(map[string]domain.IndexRecord, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		r := fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData())
		byID[r.ID] = r
	}
	out := make([]domain.IndexRecord, 0, len(byID))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Delete removes points by record ID.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	wait := true
	_, err := s.points.Delete(s.withAuth(ctx), &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{Points: &pb.PointsIdsList{Ids: pointIDs}},
		},
	})
	if err != nil && !isMissingCollection(err) {
		return unavailable("delete points", err)
	}
	return nil
}

// Count returns the exact number of points matching filter.
func (s *Store) Count(ctx context.Context, filter domain.Filter) (int, error) {
	exact := true
	resp, err := s.points.Count(s.withAuth(ctx), &pb.CountPoints{
		CollectionName: s.collection,
		Filter:         toFilter(filter),
		Exact:          &exact,
	})
	if err != nil {
		if isMissingCollection(err) {
			return 0, nil
		}
		return 0, unavailable("count points", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// List scrolls through every point matching filter.
func (s *Store) List(ctx context.Context, filter domain.Filter) ([]domain.IndexRecord, error) {
	var out []domain.IndexRecord
	err := s.scroll(ctx, filter, func(r domain.IndexRecord) {
		out = append(out, r)
	})
	return out, err
}

// Sample draws up to n points uniformly with reservoir sampling over a scroll.
func (s *Store) Sample(ctx context.Context, filter domain.Filter, n int) ([]domain.IndexRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	res := newReservoir(n)
	if err := s.scroll(ctx, filter, res.offer); err != nil {
		return nil, err
	}
	return res.items, nil
}

// Search runs Qdrant's cosine search.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter domain.Filter) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	resp, err := s.points.Search(s.withAuth(ctx), &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		Filter:         toFilter(filter),
		WithPayload:    withPayload(),
		WithVectors:    withVectors(),
	})
	if err != nil {
		if isMissingCollection(err) {
			return nil, nil
		}
		return nil, unavailable("search points", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		hits = append(hits, driven.VectorHit{
			Record:     fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData()),
			Similarity: float64(p.GetScore()),
		})
	}
	return hits, nil
}

// Close closes the gRPC connection when the store owns one.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) scroll(ctx context.Context, filter domain.Filter, visit func(domain.IndexRecord)) error {
	ctx = s.withAuth(ctx)
	limit := uint32(scrollPage)
	var offset *pb.PointId
	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.collection,
			Filter:         toFilter(filter),
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    withPayload(),
			WithVectors:    withVectors(),
		})
		if err != nil {
			if isMissingCollection(err) {
				return nil
			}
			return unavailable("scroll points", err)
		}
		for _, p := range resp.GetResult() {
			visit(fromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return nil
		}
	}
}

// ensureCollection creates the collection with cosine distance on first use.
func (s *Store) ensureCollection(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}

	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return unavailable("list collections", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			s.created = true
			return nil
		}
	}

	if dim <= 0 {
		return fmt.Errorf("%w: cannot create collection without an embedding", domain.ErrInvalidInput)
	}
	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{Size: uint64(dim), Distance: pb.Distance_Cosine},
			},
		},
	})
	if err != nil {
		return unavailable("create collection", err)
	}
	logger.Info("Created qdrant collection %q (%d dimensions)", s.collection, dim)
	s.created = true
	return nil
}

func (s *Store) withAuth(ctx context.Context) context.Context {
	if s.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", s.apiKey)
}

// pointID maps a record ID to a Qdrant point ID. UUIDs pass through;
// anything else gets a stable name-based UUID.
func pointID(id string) *pb.PointId {
	u, err := uuid.Parse(id)
	if err != nil {
		u = uuid.NewSHA1(uuid.NameSpaceURL, []byte(id))
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: u.String()}}
}

func withPayload() *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}}
}

func withVectors() *pb.WithVectorsSelector {
	return &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}}
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
