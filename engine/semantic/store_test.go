package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

type mockPoints struct {
	searchResp *pb.SearchResponse
	searchErr  error
	lastReq    *pb.SearchPoints

	upsertErr error
	lastUp    *pb.UpsertPoints
}

func (m *mockPoints) Search(_ context.Context, req *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.lastReq = req
	return m.searchResp, m.searchErr
}

func (m *mockPoints) Upsert(_ context.Context, req *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.lastUp = req
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func scoredPoint(title, abstract, group string, score float32) *pb.ScoredPoint {
	return &pb.ScoredPoint{
		Score: score,
		Payload: map[string]*pb.Value{
			"title":    {Kind: &pb.Value_StringValue{StringValue: title}},
			"abstract": {Kind: &pb.Value_StringValue{StringValue: abstract}},
			"group":    {Kind: &pb.Value_StringValue{StringValue: group}},
		},
	}
}

func TestMatchDocuments(t *testing.T) {
	points := &mockPoints{
		searchResp: &pb.SearchResponse{
			Result: []*pb.ScoredPoint{
				scoredPoint("ACE inhibitors", "Heart failure trial.", "Cardiovascular", 0.95),
				scoredPoint("Statin outcomes", "Lipid lowering study.", "Cardiovascular", 0.81),
			},
		},
	}
	vs := NewWithClient(points, "papers")

	matches, err := vs.MatchDocuments(context.Background(), []float32{0.1, 0.2}, 0.75, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].Title != "ACE inhibitors" || matches[0].Group != "Cardiovascular" {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches should keep store order (descending score)")
	}

	// Threshold and cap are forwarded to the store.
	if points.lastReq.GetScoreThreshold() != 0.75 {
		t.Errorf("score threshold = %v, want 0.75", points.lastReq.GetScoreThreshold())
	}
	if points.lastReq.GetLimit() != 5 {
		t.Errorf("limit = %d, want 5", points.lastReq.GetLimit())
	}
	if points.lastReq.GetCollectionName() != "papers" {
		t.Errorf("collection = %q", points.lastReq.GetCollectionName())
	}
}

func TestMatchDocuments_Error(t *testing.T) {
	vs := NewWithClient(&mockPoints{searchErr: errors.New("rpc fail")}, "papers")

	if _, err := vs.MatchDocuments(context.Background(), []float32{0.1}, 0.5, 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsertPapers(t *testing.T) {
	points := &mockPoints{}
	vs := NewWithClient(points, "papers")

	records := []PaperRecord{
		{ID: "11111111-1111-1111-1111-111111111111", Embedding: []float32{0.1, 0.2}, Title: "t1", Abstract: "a1", Group: "Oncological"},
		{ID: "22222222-2222-2222-2222-222222222222", Embedding: []float32{0.3, 0.4}, Title: "t2", Abstract: "a2", Group: "Neurological"},
	}
	if err := vs.UpsertPapers(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if points.lastUp.GetCollectionName() != "papers" {
		t.Errorf("collection = %q", points.lastUp.GetCollectionName())
	}
	if n := len(points.lastUp.GetPoints()); n != 2 {
		t.Fatalf("points = %d, want 2", n)
	}
	payload := points.lastUp.GetPoints()[1].GetPayload()
	if payload["group"].GetStringValue() != "Neurological" {
		t.Errorf("group payload = %q", payload["group"].GetStringValue())
	}
}

func TestUpsertPapers_EmptyIsNoop(t *testing.T) {
	points := &mockPoints{}
	vs := NewWithClient(points, "papers")

	if err := vs.UpsertPapers(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points.lastUp != nil {
		t.Fatal("expected no upsert call for empty batch")
	}
}

func TestMatchDocuments_Empty(t *testing.T) {
	vs := NewWithClient(&mockPoints{searchResp: &pb.SearchResponse{}}, "papers")

	matches, err := vs.MatchDocuments(context.Background(), []float32{0.1}, 0.5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}
