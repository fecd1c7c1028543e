//go:build integration

package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/mid"
)

// fullStack runs the routes behind the complete middleware chain, the way
// the binary serves them.
func fullStack(a *app) http.Handler {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	return mid.Chain(a.routes(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(mid.CORSPolicy{Origins: []string{"*"}, Methods: []string{"*"}, Headers: []string{"*"}}),
	)
}

func TestAPI_LivenessThroughMiddleware(t *testing.T) {
	h := fullStack(testApp(&stubClassifier{}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "Ok" {
		t.Fatalf("expected status Ok, got %q", resp["status"])
	}
}

func TestAPI_ClassifyThroughMiddleware(t *testing.T) {
	stub := &stubClassifier{result: domain.Result{
		Category:   domain.CategoryOncological,
		Confidence: 0.81,
		Rationale:  "Tumor biology focus.",
	}}
	h := fullStack(testApp(stub))

	body := `{"title":"Tumor growth models","abstract":"We study tumor growth."}`
	req := httptest.NewRequest(http.MethodPost, "/classify/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected CORS headers on the response")
	}

	var got domain.Result
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Category != domain.CategoryOncological {
		t.Fatalf("expected Oncological, got %s", got.Category)
	}
}
