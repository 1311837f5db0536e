package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
	"github.com/mogakco/signal/internal/metrics"
)

// MediaField names a self-service media toggle.
type MediaField string

const (
	FieldVideo   MediaField = "video"
	FieldAudio   MediaField = "audio"
	FieldHeadset MediaField = "headset"
)

// MediaChange is the user-media-changed broadcast payload source.
type MediaChange struct {
	RoomID       domain.RoomID
	CID          domain.ConnectionID
	Username     string
	IsVideoOn    bool
	IsAudioOn    bool
	IsHeadsetOn  bool
	Participants []domain.Participant
}

// ToggleMedia applies a participant's own media flag change. The reported
// value is authoritative once written, with one carve-out: audio never runs
// without the headset, so headset-off drags audio off and audio-on is
// ignored while the headset is off.
func (o *Orchestrator) ToggleMedia(cid domain.ConnectionID, field MediaField, value bool) (*MediaChange, error) {
	roomID, username, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	res := &MediaChange{RoomID: roomID, CID: cid, Username: username}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, found := r.Participant(cid)
		if !found {
			return domain.ErrTargetNotFound
		}
		switch field {
		case FieldVideo:
			p.IsVideoOn = value
		case FieldAudio:
			if value && !p.IsHeadsetOn {
				value = false
			}
			p.IsAudioOn = value
		case FieldHeadset:
			p.IsHeadsetOn = value
			if !value {
				p.IsAudioOn = false
			}
		}
		res.IsVideoOn = p.IsVideoOn
		res.IsAudioOn = p.IsAudioOn
		res.IsHeadsetOn = p.IsHeadsetOn
		res.Participants = r.ParticipantsSnapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// StatusChange is the user-status-changed broadcast payload source.
type StatusChange struct {
	RoomID       domain.RoomID
	Participants []domain.Participant
}

func (o *Orchestrator) UpdateStatus(cid domain.ConnectionID, status, emoji, customText string) (*StatusChange, error) {
	roomID, _, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	res := &StatusChange{RoomID: roomID}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, found := r.Participant(cid)
		if !found {
			return domain.ErrTargetNotFound
		}
		p.Status = status
		p.StatusEmoji = emoji
		p.StatusText = customText
		res.Participants = r.ParticipantsSnapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AudioLevelUpdate is the delta broadcast for speaking indicators; it carries
// no roster on purpose, level updates are frequent.
type AudioLevelUpdate struct {
	RoomID     domain.RoomID       `json:"-"`
	CID        domain.ConnectionID `json:"connectionId"`
	Username   string              `json:"username"`
	Level      int                 `json:"level"`
	IsSpeaking bool                `json:"isSpeaking"`
}

// ReportAudioLevel records a client's self-reported speaking level, clamped
// to [0,100], and stamps LastAudioUpdate for the sweeper.
func (o *Orchestrator) ReportAudioLevel(cid domain.ConnectionID, level int, speaking bool) (*AudioLevelUpdate, error) {
	roomID, username, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, found := r.Participant(cid)
		if !found {
			return domain.ErrTargetNotFound
		}
		p.AudioLevel = level
		p.IsSpeaking = speaking
		p.LastAudioUpdate = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AudioLevelUpdate{RoomID: roomID, CID: cid, Username: username, Level: level, IsSpeaking: speaking}, nil
}

// ChatResult is the new-message broadcast payload source.
type ChatResult struct {
	RoomID  domain.RoomID
	Message domain.Message
}

func (o *Orchestrator) SendChat(cid domain.ConnectionID, text string) (*ChatResult, error) {
	roomID, username, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	res := &ChatResult{RoomID: roomID}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		res.Message = r.AppendMessage(username, cid, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ChatMessagesTotal.Inc()
	return res, nil
}

// SettingsResult carries the new public metadata after an owner edit. The
// raw password never rides along.
type SettingsResult struct {
	RoomID  domain.RoomID
	Meta    core.RoomMeta
	Message domain.Message
}

// UpdateSettings mutates room metadata, owner-only. hasPassword false clears
// the password regardless of the supplied string.
func (o *Orchestrator) UpdateSettings(cid domain.ConnectionID, name, description, password string, hasPassword bool) (*SettingsResult, error) {
	roomID, username, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	res := &SettingsResult{RoomID: roomID}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, found := r.Participant(cid)
		if !found || !p.IsOwner {
			return domain.ErrNotOwner
		}
		r.Name = strings.TrimSpace(name)
		r.Description = strings.TrimSpace(description)
		if hasPassword {
			r.Password = strings.TrimSpace(password)
		} else {
			r.Password = ""
		}
		res.Message = r.AppendSystemMessage(fmt.Sprintf("🔧 %s updated the room settings.", username))
		res.Meta = roomMeta(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.presence").Str("room", string(roomID)).Str("by", string(cid)).Msg("room settings updated")
	return res, nil
}

// DeleteResult lists who must be told the room was force-closed.
type DeleteResult struct {
	RoomID   domain.RoomID
	Members  []MemberSnap
	Farewell string
}

// DeleteRoom tears a room down on the owner's request. Members' room
// bindings are cleared so their later disconnects are no-ops.
func (o *Orchestrator) DeleteRoom(cid domain.ConnectionID) (*DeleteResult, error) {
	roomID, _, ok := o.Registry.RoomOf(cid)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		p, found := r.Participant(cid)
		if !found || !p.IsOwner {
			return domain.ErrNotOwner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := &DeleteResult{
		RoomID:   roomID,
		Members:  o.Registry.MembersOfRoom(roomID),
		Farewell: "😢 The owner closed the room.",
	}
	o.Rooms.DeleteRoom(roomID)
	for _, m := range res.Members {
		o.Registry.ClearRoom(m.CID)
	}
	log.Info().Str("module", "app.presence").Str("room", string(roomID)).Str("by", string(cid)).Msg("room force-closed")
	return res, nil
}
