package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*natsHeaderCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Errorf("empty carrier Get = %q", got)
	}
	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get after Set = %q", got)
	}
	// NATS headers are case-sensitive; keys are stored verbatim.
	if keys := c.Keys(); len(keys) != 1 || keys[0] != "traceparent" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestClassifiedEventJSON(t *testing.T) {
	ev := ClassifiedEvent{
		Query:    domain.Query{Title: "t", Abstract: "a"},
		Result:   domain.Result{Category: domain.CategoryNeurological, Confidence: 0.8, Rationale: "r"},
		Model:    "gpt-4o-mini",
		Duration: 2 * time.Second,
		At:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ClassifiedEvent
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Result.Category != domain.CategoryNeurological || back.Model != "gpt-4o-mini" {
		t.Errorf("round-trip mismatch: %+v", back)
	}
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	// Must not panic when events are disabled.
	p.Classified(context.Background(), ClassifiedEvent{})
	p.Close()
}
