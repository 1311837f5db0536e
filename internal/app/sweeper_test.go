package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogakco/signal/internal/domain"
)

func TestSweeper_ResetsStaleIndicators(t *testing.T) {
	o, roomID := joined(t, "c1", "c2")
	_, err := o.ReportAudioLevel("c1", 80, true)
	require.NoError(t, err)
	_, err = o.ReportAudioLevel("c2", 60, true)
	require.NoError(t, err)

	// Age c1's report past the staleness threshold; c2 stays fresh.
	require.NoError(t, o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, _ := r.Participant("c1")
		p.LastAudioUpdate = time.Now().Add(-6 * time.Second)
		return nil
	}))

	s := NewSweeper(o.Rooms, 5*time.Second, 5*time.Second, nil)
	resets := s.sweepOnce(time.Now())
	require.Len(t, resets, 1)
	assert.Equal(t, domain.ConnectionID("c1"), resets[0].CID)
	assert.Equal(t, roomID, resets[0].RoomID)
	assert.Equal(t, 0, resets[0].Level)
	assert.False(t, resets[0].IsSpeaking)

	require.NoError(t, o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, _ := r.Participant("c1")
		assert.Equal(t, 0, p.AudioLevel)
		assert.False(t, p.IsSpeaking)
		fresh, _ := r.Participant("c2")
		assert.Equal(t, 60, fresh.AudioLevel)
		assert.True(t, fresh.IsSpeaking)
		return nil
	}))

	// Already-quiet participants produce no further resets.
	assert.Empty(t, s.sweepOnce(time.Now()))
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	o, roomID := joined(t, "c1")
	_, err := o.ReportAudioLevel("c1", 50, true)
	require.NoError(t, err)
	require.NoError(t, o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, _ := r.Participant("c1")
		p.LastAudioUpdate = time.Now().Add(-time.Minute)
		return nil
	}))

	notified := make(chan AudioLevelUpdate, 1)
	s := NewSweeper(o.Rooms, 10*time.Millisecond, 5*time.Second, func(u AudioLevelUpdate) {
		select {
		case notified <- u:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case u := <-notified:
		assert.Equal(t, domain.ConnectionID("c1"), u.CID)
	case <-time.After(time.Second):
		t.Fatal("sweeper never notified")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
