package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

type connEntry struct {
	RoomID   domain.RoomID
	Username string
	Conn     core.SignalConnection
	Cancel   context.CancelFunc
}

// Registry tracks every live connection: its transport endpoint, the room it
// is currently bound to, and the cancel func tearing down its pumps. It is
// the addressing layer every broadcast resolves through.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnectionID]*connEntry)}
}

func (r *Registry) Bind(cid domain.ConnectionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection bound")
}

func (r *Registry) Unbind(cid domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection unbound")
}

func (r *Registry) Conn(cid domain.ConnectionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// BindRoom records which room a connection belongs to and under what name.
func (r *Registry) BindRoom(cid domain.ConnectionID, roomID domain.RoomID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[cid]; ok {
		e.RoomID = roomID
		e.Username = username
	}
}

// ClearRoom drops the room association but keeps the connection alive, e.g.
// after a kick the client stays connected while it navigates away.
func (r *Registry) ClearRoom(cid domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[cid]; ok {
		e.RoomID = ""
		e.Username = ""
	}
}

// RoomOf reports the room binding; ok is false for connections that never
// completed a join, so disconnect handling stays a no-op for them.
func (r *Registry) RoomOf(cid domain.ConnectionID) (domain.RoomID, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	return e.RoomID, e.Username, true
}

// MemberSnap pairs a connection id with its transport for fan-out.
type MemberSnap struct {
	CID  domain.ConnectionID
	Conn core.SignalConnection
}

func (r *Registry) MembersOfRoom(roomID domain.RoomID) []MemberSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberSnap, 0, len(r.conns))
	for cid, e := range r.conns {
		if e.RoomID == roomID {
			out = append(out, MemberSnap{CID: cid, Conn: e.Conn})
		}
	}
	return out
}

// Cancel tears down a connection: the cancel func stops its write pump, and
// closing the transport unblocks a read loop parked on the socket so the
// disconnect path actually runs.
func (r *Registry) Cancel(cid domain.ConnectionID) bool {
	r.mu.RLock()
	e, ok := r.conns[cid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	if e.Conn != nil {
		e.Conn.Close()
	}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection canceled")
	return true
}
