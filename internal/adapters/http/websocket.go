package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/detourmap/internal/adapters/maphost"
	"github.com/samirrijal/detourmap/internal/pkg/metrics"
)

// wsMessage is sent by the client. The only action is "resync".
type wsMessage struct {
	Action string `json:"action"`
}

// wsHead is the part of an encoded layer event the relay inspects.
type wsHead struct {
	Surface string `json:"surface"`
	Seq     uint64 `json:"seq"`
}

const wsBuffer = 256

type feedVerdict int

const (
	feedSkip feedVerdict = iota
	feedForward
	feedGap
)

// feedFilter tracks the last event a client has seen from one surface.
// The feed may carry other surfaces' events when replicas share a broker subject.
type feedFilter struct {
	surface string
	lastSeq uint64
}

func (f *feedFilter) check(data []byte) feedVerdict {
	var head wsHead
	if err := json.Unmarshal(data, &head); err != nil || head.Surface != f.surface {
		return feedSkip
	}
	switch {
	case head.Seq <= f.lastSeq:
		return feedSkip
	case head.Seq > f.lastSeq+1:
		return feedGap
	}
	f.lastSeq = head.Seq
	return feedForward
}

// WebSocketHandler streams one surface's layer events to a browser. On connect
// the client gets a replay that starts with a reset, then every later event in
// order. A lost event (slow client, broker gap) triggers a fresh replay.
// Sending {"action":"resync"} requests one explicitly.
func WebSocketHandler(surface *maphost.Surface, feed EventFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		defer slog.Info("ws client disconnected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeRaw := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return writeRaw(data)
		}

		// Subscribe before taking the snapshot so nothing falls in between.
		incoming := make(chan []byte, wsBuffer)
		overflow := make(chan struct{}, 1)
		cancel, err := feed.Subscribe(func(data []byte) {
			select {
			case incoming <- data:
			default:
				select {
				case overflow <- struct{}{}:
				default:
				}
			}
		})
		if err != nil {
			slog.Error("ws subscribe failed", "error", err)
			_ = writeJSON(map[string]string{"error": "subscribe failed"})
			return
		}
		defer cancel()

		// stateMu orders replays against forwarded events.
		var stateMu sync.Mutex
		filter := feedFilter{surface: surface.ID()}

		replayLocked := func() error {
			events, seq := surface.Replay()
			for i := range events {
				if err := writeJSON(&events[i]); err != nil {
					return err
				}
			}
			filter.lastSeq = seq
			return nil
		}
		replay := func() error {
			stateMu.Lock()
			defer stateMu.Unlock()
			return replayLocked()
		}
		if err := replay(); err != nil {
			return
		}

		done := make(chan struct{})
		defer close(done)

		// Relay and keep-alive ping
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case data := <-incoming:
					stateMu.Lock()
					var err error
					switch filter.check(data) {
					case feedForward:
						err = writeRaw(data)
					case feedGap:
						slog.Warn("ws event gap, resyncing", "remote", remoteAddr, "last_seq", filter.lastSeq)
						err = replayLocked()
					}
					stateMu.Unlock()
					if err != nil {
						return
					}
				case <-overflow:
					slog.Warn("ws client too slow, resyncing", "remote", remoteAddr)
					if err := replay(); err != nil {
						return
					}
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "resync":
				if err := replay(); err != nil {
					return
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}
	}
}
