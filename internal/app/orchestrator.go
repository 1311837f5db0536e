// Package app holds the state-transition logic: participant lifecycle,
// moderation, presence, the idle sweeper. Every operation mutates room state
// under the store's per-room lock and returns a result describing what to
// fan out; serializing and sending is the signal adapter's job, which keeps
// these transitions unit-testable without a live transport.
package app

import (
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// Orchestrator coordinates the registry and the room store.
type Orchestrator struct {
	Registry *Registry
	Rooms    *core.RoomStore
}

func NewOrchestrator(reg *Registry, rooms *core.RoomStore) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms}
}

// roomMeta builds the member-visible metadata for a room.
func roomMeta(r *domain.Room) core.RoomMeta {
	return core.RoomMeta{
		Name:        r.Name,
		Description: r.Description,
		HasPassword: r.HasPassword(),
	}
}
