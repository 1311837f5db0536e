// Package domain contains the session entities. Synchronization lives in the
// store, transport in the adapters; entities here carry state and the few
// helpers that keep construction and lookups out of adapter code.
package domain

import "time"

type RoomID string

// Room is one isolated call session. Participants are kept in join order;
// that order is the tiebreak for ownership succession. Messages is an
// append-only log, unbounded on purpose.
type Room struct {
	ID           RoomID
	Name         string
	Description  string
	Password     string
	Creator      string
	Participants []*Participant
	Messages     []Message
	CreatedAt    time.Time

	lastMessageID int64
}

func NewRoom(id RoomID, name, description, password, creator string) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		Description: description,
		Password:    password,
		Creator:     creator,
		CreatedAt:   time.Now(),
	}
}

func (r *Room) HasPassword() bool { return r.Password != "" }

func (r *Room) Participant(cid ConnectionID) (*Participant, bool) {
	for _, p := range r.Participants {
		if p.ConnectionID == cid {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) RemoveParticipant(cid ConnectionID) bool {
	for i, p := range r.Participants {
		if p.ConnectionID == cid {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) Owner() (*Participant, bool) {
	for _, p := range r.Participants {
		if p.IsOwner {
			return p, true
		}
	}
	return nil, false
}

// UsedColors collects the gradients currently assigned in the room.
func (r *Room) UsedColors() []Gradient {
	out := make([]Gradient, 0, len(r.Participants))
	for _, p := range r.Participants {
		out = append(out, p.UserColor)
	}
	return out
}

// AppendMessage stamps an id and wall-clock time and appends to the log.
// Ids are millisecond-based with a monotonic floor so two messages appended
// within the same handler never collide.
func (r *Room) AppendMessage(user string, cid ConnectionID, text string) Message {
	now := time.Now()
	id := now.UnixMilli()
	if id <= r.lastMessageID {
		id = r.lastMessageID + 1
	}
	r.lastMessageID = id
	msg := Message{
		ID:           id,
		User:         user,
		ConnectionID: cid,
		Message:      text,
		Time:         now.Format("15:04"),
	}
	r.Messages = append(r.Messages, msg)
	return msg
}

// AppendSystemMessage records an event under the System sentinel user.
func (r *Room) AppendSystemMessage(text string) Message {
	return r.AppendMessage(SystemUser, "", text)
}

// ParticipantsSnapshot returns value copies safe to marshal after the room
// lock is released.
func (r *Room) ParticipantsSnapshot() []Participant {
	out := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		out = append(out, *p)
	}
	return out
}

func (r *Room) MessagesSnapshot() []Message {
	out := make([]Message, len(r.Messages))
	copy(out, r.Messages)
	return out
}
