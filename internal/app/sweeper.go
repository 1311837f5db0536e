package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// Sweeper periodically zeroes stale speaking indicators. A client that stops
// reporting levels (network stall, silent tab) would otherwise leave a
// "speaking" badge frozen on everyone's screen.
type Sweeper struct {
	Rooms      *core.RoomStore
	Interval   time.Duration
	StaleAfter time.Duration
	// Notify receives each reset for fan-out; wired to the signal adapter.
	Notify func(AudioLevelUpdate)
}

func NewSweeper(rooms *core.RoomStore, interval, staleAfter time.Duration, notify func(AudioLevelUpdate)) *Sweeper {
	return &Sweeper{Rooms: rooms, Interval: interval, StaleAfter: staleAfter, Notify: notify}
}

// Run ticks until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.sweeper").Dur("interval", s.Interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return
		case <-ticker.C:
			for _, reset := range s.sweepOnce(time.Now()) {
				if s.Notify != nil {
					s.Notify(reset)
				}
			}
		}
	}
}

// sweepOnce resets every participant whose activity report is older than the
// staleness threshold while still marked active, and returns the resets.
func (s *Sweeper) sweepOnce(now time.Time) []AudioLevelUpdate {
	var resets []AudioLevelUpdate
	for _, id := range s.Rooms.IDs() {
		_ = s.Rooms.WithRoom(id, func(r *domain.Room) error {
			for _, p := range r.Participants {
				if !p.IsSpeaking && p.AudioLevel == 0 {
					continue
				}
				if now.Sub(p.LastAudioUpdate) <= s.StaleAfter {
					continue
				}
				p.AudioLevel = 0
				p.IsSpeaking = false
				resets = append(resets, AudioLevelUpdate{
					RoomID:   r.ID,
					CID:      p.ConnectionID,
					Username: p.Username,
				})
			}
			return nil
		})
	}
	if len(resets) > 0 {
		log.Debug().Str("module", "app.sweeper").Int("resets", len(resets)).Msg("cleared stale audio levels")
	}
	return resets
}
