// Package events publishes classification outcomes to NATS as JSON messages
// with OpenTelemetry trace propagation. The stream is an audit feed: publish
// failures are logged and never fail the originating request.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
)

// SubjectClassified carries one message per completed classification.
const SubjectClassified = "classify.results"

// ClassifiedEvent is the payload published after a successful classification.
type ClassifiedEvent struct {
	Query    domain.Query  `json:"query"`
	Result   domain.Result `json:"result"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration_ns"`
	At       time.Time     `json:"at"`
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publisher publishes classification events over one NATS connection.
// Safe for concurrent use.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// Connect dials NATS at the given URL.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url, nats.Name("paper-classifier"))
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, logger: logger}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}

// Classified publishes the event, injecting trace context from ctx into the
// message headers. Fire and forget.
func (p *Publisher) Classified(ctx context.Context, ev ClassifiedEvent) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event marshal failed", "err", err)
		return
	}
	msg := &nats.Msg{Subject: SubjectClassified, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	if err := p.nc.PublishMsg(msg); err != nil {
		p.logger.Warn("event publish failed", "subject", SubjectClassified, "err", err)
	}
}
