package http_test

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"

	handler "github.com/samirrijal/detourmap/internal/adapters/http"
	"github.com/samirrijal/detourmap/internal/adapters/maphost"
	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/core/usecases"
)

// manualFeed lets a test push raw encoded events to subscribers.
type manualFeed struct {
	mu  sync.Mutex
	fns []func([]byte)
}

func (f *manualFeed) Subscribe(fn func(data []byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fns = append(f.fns, fn)
	return func() {}, nil
}

func (f *manualFeed) push(t *testing.T, ev domain.LayerEvent) {
	t.Helper()
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fn := range f.fns {
		fn(data)
	}
}

func startServer(t *testing.T, deps *handler.Dependencies) string {
	t.Helper()
	app := setupApp(deps)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws"
}

func dialWS(t *testing.T, url string) *fastws.Conn {
	t.Helper()
	conn, _, err := fastws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *fastws.Conn) domain.LayerEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev domain.LayerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return ev
}

func expectOps(t *testing.T, conn *fastws.Conn, ops ...domain.LayerOp) []domain.LayerEvent {
	t.Helper()
	events := make([]domain.LayerEvent, 0, len(ops))
	for i, op := range ops {
		ev := readEvent(t, conn)
		if ev.Op != op {
			t.Fatalf("event %d: expected op %q, got %q (%+v)", i, op, ev.Op, ev)
		}
		events = append(events, ev)
	}
	return events
}

func TestWebSocket_FollowsOwnSurfaceOnly(t *testing.T) {
	// Two replicas publishing to one shared feed.
	hub := maphost.NewHub()
	own := maphost.NewSurface(hub)
	other := maphost.NewSurface(hub)
	own.CreateMap(domain.Midpoint(testStart, testEnd), 13)
	other.CreateMap(domain.Midpoint(testStart, testEnd), 13)

	deps := makeDeps(&fakeRouteClient{}, func(d *handler.Dependencies) {
		d.Surface = own
		d.Feed = hub
	})
	conn := dialWS(t, startServer(t, deps))

	replay := expectOps(t, conn, domain.OpReset, domain.OpCreateMap)
	for _, ev := range replay {
		if ev.Surface != own.ID() {
			t.Fatalf("replay event from surface %q, want %q", ev.Surface, own.ID())
		}
	}

	for i := 0; i < 5; i++ {
		other.DrawGeoJSON(usecases.ObstructionLayer(testObstruction(fmt.Sprintf("other-%d", i), true, "")))
	}
	route := own.DrawGeoJSON(usecases.RouteLayer(testRoute()))

	ev := readEvent(t, conn)
	if ev.Op != domain.OpAddLayer || ev.LayerID != route.ID {
		t.Fatalf("expected own route add %s, got %+v", route.ID, ev)
	}
	if ev.Surface != own.ID() {
		t.Errorf("expected surface %q, got %q", own.ID(), ev.Surface)
	}
}

func TestWebSocket_ResyncsOnSequenceGap(t *testing.T) {
	feed := &manualFeed{}
	surface := maphost.NewSurface()
	surface.CreateMap(domain.Midpoint(testStart, testEnd), 13)
	route := surface.DrawGeoJSON(usecases.RouteLayer(testRoute()))

	deps := makeDeps(&fakeRouteClient{}, func(d *handler.Dependencies) {
		d.Surface = surface
		d.Feed = feed
	})
	conn := dialWS(t, startServer(t, deps))

	// Surface is at seq 2 after the map and the route.
	expectOps(t, conn, domain.OpReset, domain.OpCreateMap, domain.OpAddLayer)

	feed.push(t, domain.LayerEvent{Surface: "elsewhere", Seq: 3, Op: domain.OpAddLayer, LayerID: "foreign"})
	feed.push(t, domain.LayerEvent{Surface: surface.ID(), Seq: 2, Op: domain.OpAddLayer, LayerID: "duplicate"})
	feed.push(t, domain.LayerEvent{Surface: surface.ID(), Seq: 3, Op: domain.OpRemoveLayer, LayerID: "next"})

	ev := readEvent(t, conn)
	if ev.Op != domain.OpRemoveLayer || ev.LayerID != "next" {
		t.Fatalf("expected the contiguous event, got %+v", ev)
	}

	// Seq 4 and 5 never arrive.
	feed.push(t, domain.LayerEvent{Surface: surface.ID(), Seq: 6, Op: domain.OpRemoveLayer, LayerID: "late"})

	events := expectOps(t, conn, domain.OpReset, domain.OpCreateMap, domain.OpAddLayer)
	if events[2].LayerID != route.ID {
		t.Errorf("expected replayed route %s, got %s", route.ID, events[2].LayerID)
	}
}

func TestWebSocket_ResyncAction(t *testing.T) {
	surface := maphost.NewSurface()
	surface.CreateMap(domain.Midpoint(testStart, testEnd), 13)

	deps := makeDeps(&fakeRouteClient{}, func(d *handler.Dependencies) {
		d.Surface = surface
		d.Feed = &manualFeed{}
	})
	conn := dialWS(t, startServer(t, deps))
	expectOps(t, conn, domain.OpReset, domain.OpCreateMap)

	if err := conn.WriteJSON(map[string]string{"action": "resync"}); err != nil {
		t.Fatal(err)
	}
	expectOps(t, conn, domain.OpReset, domain.OpCreateMap)

	if err := conn.WriteJSON(map[string]string{"action": "subscribe"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var reply map[string]string
	if err := json.Unmarshal(data, &reply); err != nil || reply["error"] == "" {
		t.Errorf("expected an error reply, got %s", data)
	}
}
