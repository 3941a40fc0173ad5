package natsadapter

import (
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Relay forwards raw layer events from NATS to local consumers such as
// WebSocket clients. It uses core subscriptions, so nothing is acked or replayed.
type Relay struct {
	conn    *nats.Conn
	subject string
}

// NewRelay creates a relay on an existing connection.
func NewRelay(conn *nats.Conn, subject string) *Relay {
	return &Relay{conn: conn, subject: strings.TrimSuffix(subject, ".") + ".>"}
}

// Subscribe calls fn with the payload of every layer event until cancel is called.
func (r *Relay) Subscribe(fn func(data []byte)) (func(), error) {
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", r.subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Connected reports whether the underlying connection is up.
func (r *Relay) Connected() bool {
	return r.conn.IsConnected()
}

// Close drains the connection.
func (r *Relay) Close() {
	_ = r.conn.Drain()
}
