// Package bus publishes search lifecycle events over NATS with
// OpenTelemetry trace propagation, so downstream consumers (analytics,
// notification fan-out) can correlate events with the originating request.
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// SubjectSearchCompleted carries one SearchEvent per finished search.
const SubjectSearchCompleted = "scout.search.completed"

// SearchEvent summarizes a completed search for downstream consumers.
type SearchEvent struct {
	Query        string        `json:"query"`
	TotalScraped int           `json:"total_scraped"`
	TotalMatched int           `json:"total_matched"`
	BestPrice    int64         `json:"best_price,omitempty"`
	Failures     int           `json:"failures"`
	Duration     time.Duration `json:"duration_ns"`
	CompletedAt  time.Time     `json:"completed_at"`
}

// EventFromReport flattens a report into its published form.
func EventFromReport(r domain.Report) SearchEvent {
	ev := SearchEvent{
		Query:        r.Query.RawQuery,
		TotalScraped: r.TotalScraped,
		TotalMatched: r.TotalMatched,
		Failures:     len(r.Failures),
		Duration:     r.Duration,
		CompletedAt:  time.Now().UTC(),
	}
	ev.BestPrice = r.BestPrice()
	return ev
}

// headerCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes it to subject. Trace context
// from ctx is injected into the message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return nc.PublishMsg(msg)
}
