package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

const streamName = "DETOURMAP_LAYERS"

// Publisher implements ports.LayerEventPublisher using NATS JetStream.
// Events go to "<subject>.<op>", e.g. detourmap.layers.add.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NewPublisher connects to NATS and ensures the layer event stream exists.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subject + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, subject: subject}, nil
}

// PublishLayerEvent publishes ev asynchronously; delivery failures surface through the ack future.
func (p *Publisher) PublishLayerEvent(ctx context.Context, ev *domain.LayerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.PublishAsync(EventSubject(p.subject, ev.Op), data)
	return err
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
	}
	_ = p.conn.Drain()
}

// EventSubject returns the subject an event with op is published on.
func EventSubject(prefix string, op domain.LayerOp) string {
	return strings.TrimSuffix(prefix, ".") + "." + string(op)
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("detourmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
