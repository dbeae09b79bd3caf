// Package events re-exports the platform event bus so domain modules import a
// single package for both the bus and the event types.
package events

import (
	platformevents "vitelis_backend/platform/events"
	"vitelis_backend/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
