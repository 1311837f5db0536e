// Package core owns the authoritative room state and the transport-facing
// interfaces. It never touches adapter resources.
package core

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/domain"
	"github.com/mogakco/signal/internal/metrics"
)

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 6
)

// RoomMeta is the public shape of room metadata: the password itself never
// leaves the process, only its presence.
type RoomMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HasPassword bool   `json:"hasPassword"`
}

// RoomInfo extends RoomMeta with the fields shown to outsiders checking a code.
type RoomInfo struct {
	RoomMeta
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type roomEntry struct {
	mu   sync.Mutex
	room *domain.Room
}

// RoomStore maps live room codes to room state. The store mutex guards the
// map; each room carries its own mutex so unrelated rooms never serialize
// each other. All reads and writes of room state go through WithRoom.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*roomEntry)}
}

func generateCode() domain.RoomID {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeCharset[rand.IntN(len(codeCharset))]
	}
	return domain.RoomID(b)
}

// CreateRoom registers a fresh room under a collision-checked code and
// returns the code with the creation timestamp. The creator is not a
// participant yet; joining is a separate step.
func (s *RoomStore) CreateRoom(name, description, password, creator string) (domain.RoomID, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var id domain.RoomID
	for {
		id = generateCode()
		if _, exists := s.rooms[id]; !exists {
			break
		}
	}
	room := domain.NewRoom(id, name, description, password, creator)
	s.rooms[id] = &roomEntry{room: room}
	metrics.RoomsActive.Inc()
	log.Info().Str("module", "core.store").Str("room", string(id)).Str("name", name).Str("creator", creator).Msg("room created")
	return id, room.CreatedAt
}

// WithRoom runs fn while holding the room's lock. Dropped sends and other
// transport concerns must stay out of fn; it should mutate and snapshot only.
func (s *RoomStore) WithRoom(id domain.RoomID, fn func(*domain.Room) error) error {
	s.mu.RLock()
	e, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.room)
}

// Info reports the outsider-visible summary for a room code.
func (s *RoomStore) Info(id domain.RoomID) (RoomInfo, error) {
	var info RoomInfo
	err := s.WithRoom(id, func(r *domain.Room) error {
		info = RoomInfo{
			RoomMeta: RoomMeta{
				Name:        r.Name,
				Description: r.Description,
				HasPassword: r.HasPassword(),
			},
			Participants: len(r.Participants),
			CreatedAt:    r.CreatedAt,
		}
		return nil
	})
	return info, err
}

// DeleteRoom drops the room from the live set. Callers are responsible for
// evicting connections before or alongside this call.
func (s *RoomStore) DeleteRoom(id domain.RoomID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	metrics.RoomsActive.Dec()
	log.Info().Str("module", "core.store").Str("room", string(id)).Msg("room deleted")
	return true
}

// IDs snapshots the live room codes, for the sweeper.
func (s *RoomStore) IDs() []domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		out = append(out, id)
	}
	return out
}

func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
