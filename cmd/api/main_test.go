package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

type stubClassifier struct {
	result domain.Result
	err    error
	gotQ   domain.Query
}

func (s *stubClassifier) Classify(_ context.Context, q domain.Query) (domain.Result, error) {
	s.gotQ = q
	if s.err != nil {
		return domain.Result{}, s.err
	}
	return s.result, nil
}

func testApp(c classifier) *app {
	return newApp(c, nil, "gpt-4o-mini", nil)
}

func TestLivenessEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	handleLiveness(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "Ok" {
		t.Fatalf("expected status Ok, got %s", resp["status"])
	}
}

func TestClassifyEndpoint_Success(t *testing.T) {
	stub := &stubClassifier{result: domain.Result{
		Category:   domain.CategoryCardiovascular,
		Confidence: 0.92,
		Rationale:  "Discusses ACE inhibitors and heart failure outcomes.",
	}}
	a := testApp(stub)

	body := `{"title":"ACE inhibitors in heart failure","abstract":"A randomized trial of ACE inhibitors."}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classify/", bytes.NewBufferString(body))
	a.handleClassify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.gotQ.Title != "ACE inhibitors in heart failure" {
		t.Fatalf("query not forwarded, got %+v", stub.gotQ)
	}

	var got domain.Result
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != stub.result {
		t.Fatalf("expected %+v, got %+v", stub.result, got)
	}
}

func TestClassifyEndpoint_InvalidJSON(t *testing.T) {
	a := testApp(&stubClassifier{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classify/", bytes.NewBufferString("not json"))
	a.handleClassify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestClassifyEndpoint_EmptyFields(t *testing.T) {
	a := testApp(&stubClassifier{err: domain.ErrEmptyAbstract})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classify/", bytes.NewBufferString(`{"title":"x","abstract":""}`))
	a.handleClassify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestClassifyEndpoint_ModelFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"malformed output", &domain.MalformedOutputError{Raw: "oops"}, http.StatusBadGateway},
		{"schema violation", &domain.SchemaValidationError{Field: "category", Reason: "unknown"}, http.StatusBadGateway},
		{"exhausted", domain.ErrAgentExhausted, http.StatusBadGateway},
		{"transport", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testApp(&stubClassifier{err: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/classify/", bytes.NewBufferString(`{"title":"t","abstract":"a"}`))
			a.handleClassify(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp["error"] == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}

func TestRoutes_MetricsExposed(t *testing.T) {
	a := testApp(&stubClassifier{result: domain.Result{
		Category: domain.CategoryNeurological, Confidence: 0.7, Rationale: "r",
	}})
	h := a.routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/classify/", bytes.NewBufferString(`{"title":"t","abstract":"a"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("classify: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "classify_requests_total 1") {
		t.Fatalf("request counter missing:\n%s", rec.Body.String())
	}
}

func TestRoutes_UIServed(t *testing.T) {
	a := testApp(&stubClassifier{})
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, httptest.NewRequest("GET", "/ui/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Scientific Paper Classifier") {
		t.Fatal("expected the classification form page")
	}
}
