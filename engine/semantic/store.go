// Package semantic owns all Qdrant operations for the indexed paper corpus.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

// pointsClient is the slice of pb.PointsClient the store needs.
type pointsClient interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
}

// VectorStore performs similarity search and indexing over the paper
// collection.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pointsClient
	collections pb.CollectionsClient
	collection  string
	apiKey      string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
// apiKey may be empty for unauthenticated local instances.
func New(addr, collection, apiKey string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		apiKey:      apiKey,
	}, nil
}

// NewWithClient creates a VectorStore over an existing points client.
// Used by tests.
func NewWithClient(points pointsClient, collection string) *VectorStore {
	return &VectorStore{points: points, collection: collection}
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	if v.conn == nil {
		return nil
	}
	return v.conn.Close()
}

// MatchDocuments performs k-NN similarity search, keeping only hits at or
// above the score threshold. Results arrive in descending score order from
// the store; no local re-ranking is applied.
func (v *VectorStore) MatchDocuments(ctx context.Context, embedding []float32, threshold float64, count int) ([]domain.DocumentMatch, error) {
	scoreThreshold := float32(threshold)
	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(count),
		ScoreThreshold: &scoreThreshold,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}

	resp, err := v.points.Search(v.outgoing(ctx), req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	matches := make([]domain.DocumentMatch, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		m := domain.DocumentMatch{Score: r.GetScore()}
		for k, val := range r.GetPayload() {
			s := val.GetStringValue()
			switch k {
			case "title":
				m.Title = s
			case "abstract":
				m.Abstract = s
			case "group":
				m.Group = s
			}
		}
		matches[i] = m
	}
	return matches, nil
}

// PaperRecord is one indexed paper: a point ID, its embedding, and the
// payload fields the search side reads back.
type PaperRecord struct {
	ID        string
	Embedding []float32
	Title     string
	Abstract  string
	Group     string
}

// EnsureCollection creates the collection when it does not exist yet.
// Idempotent.
func (v *VectorStore) EnsureCollection(ctx context.Context, dims int) error {
	ctx = v.outgoing(ctx)

	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// UpsertPapers indexes paper records into the collection. Payload keys match
// what MatchDocuments reads back.
func (v *VectorStore) UpsertPapers(ctx context.Context, records []PaperRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				"title":    {Kind: &pb.Value_StringValue{StringValue: r.Title}},
				"abstract": {Kind: &pb.Value_StringValue{StringValue: r.Abstract}},
				"group":    {Kind: &pb.Value_StringValue{StringValue: r.Group}},
			},
		}
	}

	wait := true
	_, err := v.points.Upsert(v.outgoing(ctx), &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// outgoing attaches the Qdrant API key when one is configured.
func (v *VectorStore) outgoing(ctx context.Context) context.Context {
	if v.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", v.apiKey)
}
