package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// CreateRoom registers a new room and returns its code. The creator joins
// explicitly afterwards like everyone else.
func (o *Orchestrator) CreateRoom(name, description, password, creator string) (domain.RoomID, time.Time) {
	return o.Rooms.CreateRoom(name, description, password, creator)
}

// RoomInfo is the check-room lookup.
func (o *Orchestrator) RoomInfo(roomID domain.RoomID) (core.RoomInfo, error) {
	return o.Rooms.Info(roomID)
}

// JoinResult is the full room snapshot handed to the joiner, plus the pieces
// broadcast to members already present. PriorLeave is set when the connection
// held a membership elsewhere that this join evicted.
type JoinResult struct {
	RoomID       domain.RoomID
	Meta         core.RoomMeta
	Joined       domain.Participant
	Participants []domain.Participant
	Messages     []domain.Message
	JoinMessage  domain.Message
	PriorLeave   *LeaveResult
}

// Join admits a connection into a room. The first participant becomes owner.
// A room with an empty password admits any supplied password.
//
// A connection holds at most one membership. Joining while bound to another
// room runs the leave path there first (PriorLeave carries what to announce);
// rejoining the current room replaces the stale roster entry in place, keeping
// ownership, so a connection id never appears twice.
func (o *Orchestrator) Join(cid domain.ConnectionID, username, roomID, password string) (*JoinResult, error) {
	res := &JoinResult{RoomID: domain.RoomID(roomID)}
	if prevRoom, prevName, ok := o.Registry.RoomOf(cid); ok && prevRoom != res.RoomID {
		res.PriorLeave = o.leaveRoom(cid, prevRoom, prevName)
		o.Registry.ClearRoom(cid)
	}
	joinErr := o.Rooms.WithRoom(res.RoomID, func(r *domain.Room) error {
		if r.Password != "" && r.Password != password {
			return domain.ErrInvalidPassword
		}
		owner := len(r.Participants) == 0
		if stale, found := r.Participant(cid); found {
			owner = stale.IsOwner
			r.RemoveParticipant(cid)
		}
		color := domain.PickColor(r.UsedColors())
		p := domain.NewParticipant(cid, username, color, owner)
		r.Participants = append(r.Participants, p)
		res.JoinMessage = r.AppendSystemMessage(fmt.Sprintf("%s joined the room.", username))
		res.Meta = roomMeta(r)
		res.Joined = *p
		res.Participants = r.ParticipantsSnapshot()
		res.Messages = r.MessagesSnapshot()
		return nil
	})
	if joinErr != nil {
		// The prior membership is already gone; surface it so callers can
		// still announce that departure alongside the join failure.
		return res, joinErr
	}
	o.Registry.BindRoom(cid, res.RoomID, username)
	log.Info().Str("module", "app.lifecycle").Str("cid", string(cid)).Str("room", roomID).
		Str("username", username).Bool("owner", res.Joined.IsOwner).Msg("joined")
	return res, nil
}

// LeaveResult describes a departure: the remaining roster and the system
// messages to broadcast (left message, plus an ownership transfer when the
// owner departed).
type LeaveResult struct {
	RoomID       domain.RoomID
	Left         domain.ConnectionID
	Participants []domain.Participant
	Messages     []domain.Message
	RoomDeleted  bool
}

// Disconnect handles a closed connection. Idempotent: a connection that never
// joined a room, or whose room is already gone, unbinds silently.
func (o *Orchestrator) Disconnect(cid domain.ConnectionID) *LeaveResult {
	defer o.Registry.Unbind(cid)
	roomID, username, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil
	}
	return o.leaveRoom(cid, roomID, username)
}

// leaveRoom removes cid from roomID, appending the departure message,
// transferring ownership when needed and deleting the room when it empties.
// The registry binding is the caller's to tear down.
func (o *Orchestrator) leaveRoom(cid domain.ConnectionID, roomID domain.RoomID, username string) *LeaveResult {
	res := &LeaveResult{RoomID: roomID, Left: cid}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		leaving, found := r.Participant(cid)
		if !found {
			return domain.ErrTargetNotFound
		}
		wasOwner := leaving.IsOwner
		r.RemoveParticipant(cid)
		res.Messages = append(res.Messages, r.AppendSystemMessage(fmt.Sprintf("%s left the room.", username)))
		if wasOwner && len(r.Participants) > 0 {
			if msg, transferred := transferOwnership(r); transferred {
				res.Messages = append(res.Messages, msg)
			}
		}
		res.Participants = r.ParticipantsSnapshot()
		return nil
	})
	if err != nil {
		return nil
	}
	if len(res.Participants) == 0 {
		res.RoomDeleted = o.Rooms.DeleteRoom(roomID)
	}
	log.Info().Str("module", "app.lifecycle").Str("cid", string(cid)).Str("room", string(roomID)).
		Int("remaining", len(res.Participants)).Bool("room_deleted", res.RoomDeleted).Msg("left")
	return res
}

// transferOwnership promotes the remaining participant with the earliest
// JoinedAt, list order breaking ties. No-op when someone still owns the room.
func transferOwnership(r *domain.Room) (domain.Message, bool) {
	if _, stillOwned := r.Owner(); stillOwned {
		return domain.Message{}, false
	}
	var next *domain.Participant
	for _, p := range r.Participants {
		if next == nil || p.JoinedAt.Before(next.JoinedAt) {
			next = p
		}
	}
	if next == nil {
		return domain.Message{}, false
	}
	for _, p := range r.Participants {
		p.IsOwner = false
	}
	next.IsOwner = true
	msg := r.AppendSystemMessage(fmt.Sprintf("👑 %s is now the room owner.", next.Username))
	log.Info().Str("module", "app.lifecycle").Str("room", string(r.ID)).
		Str("new_owner", string(next.ConnectionID)).Msg("ownership transferred")
	return msg, true
}

// KickResult describes an owner-initiated eviction.
type KickResult struct {
	RoomID         domain.RoomID
	Kicked         domain.ConnectionID
	KickedUsername string
	ControllerName string
	Participants   []domain.Participant
	Message        domain.Message
}

// Kick evicts target from requester's room. The caller sends the direct
// eviction notice and tears down the target's membership binding; removal
// happens server-side regardless of whether the target acknowledges.
func (o *Orchestrator) Kick(requester, target domain.ConnectionID) (*KickResult, error) {
	roomID, requesterName, ok := o.Registry.RoomOf(requester)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if requester == target {
		return nil, domain.ErrSelfTargetForbidden
	}
	res := &KickResult{RoomID: roomID, Kicked: target, ControllerName: requesterName}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		self, found := r.Participant(requester)
		if !found || !self.IsOwner {
			return domain.ErrNotOwner
		}
		victim, found := r.Participant(target)
		if !found {
			return domain.ErrTargetNotFound
		}
		res.KickedUsername = victim.Username
		r.RemoveParticipant(target)
		res.Message = r.AppendSystemMessage(fmt.Sprintf("🚪 %s kicked %s from the room.", requesterName, victim.Username))
		res.Participants = r.ParticipantsSnapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.Registry.ClearRoom(target)
	log.Info().Str("module", "app.lifecycle").Str("room", string(roomID)).
		Str("kicked", string(target)).Str("by", string(requester)).Msg("kicked")
	return res, nil
}
