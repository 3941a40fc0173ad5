package http

import (
	"github.com/samirrijal/detourmap/internal/adapters/maphost"
	"github.com/samirrijal/detourmap/internal/core/ports"
	"github.com/samirrijal/detourmap/internal/core/usecases"
)

// EventFeed delivers encoded layer events to WebSocket clients.
type EventFeed interface {
	Subscribe(fn func(data []byte)) (cancel func(), err error)
}

// BrokerStatus reports message broker connectivity.
type BrokerStatus interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Session *usecases.SyncController
	Surface *maphost.Surface
	Backend ports.BackendHealth
	Feed    EventFeed
	Broker  BrokerStatus // nil when events stay in-process
}
