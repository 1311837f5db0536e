package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/domain"
)

// ForceAction names a moderation target surface.
type ForceAction string

const (
	ForceVideo   ForceAction = "video"
	ForceAudio   ForceAction = "audio"
	ForceHeadset ForceAction = "headset"
	ForceKick    ForceAction = "kick"
)

func (a ForceAction) valid() bool {
	switch a {
	case ForceVideo, ForceAudio, ForceHeadset, ForceKick:
		return true
	}
	return false
}

// forceOp is the explicit form of the wire boolean: on the wire value=false
// applies the lockout and value=true releases it. Keeping the two-valued op
// internal stops the "boolean whose meaning depends on current state"
// ambiguity from leaking past the decode boundary.
type forceOp int

const (
	opLock forceOp = iota
	opRelease
)

// ForceControlResult carries everything the adapter fans out: the direct
// command with resolved flags for the target, the system message and roster
// for the room, or the kick result when the action was an eviction.
type ForceControlResult struct {
	RoomID         domain.RoomID
	Target         domain.ConnectionID
	Action         ForceAction
	Value          bool
	ControllerName string
	FinalStates    domain.MediaStates
	Participants   []domain.Participant
	Message        domain.Message
	Kick           *KickResult
}

// ForceControl applies an owner's forced-control action against another
// participant. The server resolves the final flag tuple itself because the
// headset gate composes with the audio flag in a way each client would
// otherwise have to re-derive.
func (o *Orchestrator) ForceControl(requester, target domain.ConnectionID, action ForceAction, value bool) (*ForceControlResult, error) {
	if !action.valid() {
		return nil, fmt.Errorf("unknown force action %q", action)
	}
	roomID, requesterName, ok := o.Registry.RoomOf(requester)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if requester == target {
		return nil, domain.ErrSelfTargetForbidden
	}

	if action == ForceKick {
		kick, err := o.Kick(requester, target)
		if err != nil {
			return nil, err
		}
		return &ForceControlResult{
			RoomID:         kick.RoomID,
			Target:         target,
			Action:         action,
			Value:          value,
			ControllerName: kick.ControllerName,
			Participants:   kick.Participants,
			Message:        kick.Message,
			Kick:           kick,
		}, nil
	}

	op := opLock
	if value {
		op = opRelease
	}
	res := &ForceControlResult{
		RoomID:         roomID,
		Target:         target,
		Action:         action,
		Value:          value,
		ControllerName: requesterName,
	}
	err := o.Rooms.WithRoom(roomID, func(r *domain.Room) error {
		self, found := r.Participant(requester)
		if !found || !self.IsOwner {
			return domain.ErrNotOwner
		}
		p, found := r.Participant(target)
		if !found {
			return domain.ErrTargetNotFound
		}
		text := applyForce(p, action, op, requesterName)
		res.FinalStates = p.MediaStates()
		res.Message = r.AppendSystemMessage(text)
		res.Participants = r.ParticipantsSnapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.moderation").Str("room", string(roomID)).
		Str("target", string(target)).Str("action", string(action)).Bool("value", value).
		Interface("final", res.FinalStates).Msg("force control applied")
	return res, nil
}

// applyForce mutates the target's flags and returns the system message text.
//
// Lock snapshots the overridden flag only when not already forced, so a
// repeated lock never stomps the original snapshot. Release restores from the
// snapshot and clears it; defaults when no snapshot exists are video=false,
// audio=false, headset=true.
func applyForce(p *domain.Participant, action ForceAction, op forceOp, controller string) string {
	switch action {
	case ForceVideo:
		if op == opLock {
			if !p.IsVideoForcedOff {
				cur := p.IsVideoOn
				p.PreviousVideoState = &cur
			}
			p.IsVideoOn = false
			p.IsVideoForcedOff = true
			return fmt.Sprintf("🔒 %s disabled %s's video.", controller, p.Username)
		}
		p.IsVideoOn = restore(p.PreviousVideoState, false)
		p.IsVideoForcedOff = false
		p.PreviousVideoState = nil
		return fmt.Sprintf("🔓 %s released the video lock on %s.", controller, p.Username)

	case ForceAudio:
		if op == opLock {
			if !p.IsAudioForcedOff {
				cur := p.IsAudioOn
				p.PreviousAudioState = &cur
			}
			p.IsAudioOn = false
			p.IsAudioForcedOff = true
			return fmt.Sprintf("🔇 %s muted %s's microphone.", controller, p.Username)
		}
		// The mic only comes back when the headset can carry it.
		if p.IsHeadsetOn && !p.IsHeadsetForcedOff {
			p.IsAudioOn = restore(p.PreviousAudioState, false)
		} else {
			p.IsAudioOn = false
		}
		p.IsAudioForcedOff = false
		p.PreviousAudioState = nil
		return fmt.Sprintf("🔓 %s released the microphone lock on %s.", controller, p.Username)

	case ForceHeadset:
		if op == opLock {
			if !p.IsHeadsetForcedOff {
				curHeadset := p.IsHeadsetOn
				curAudio := p.IsAudioOn
				p.PreviousHeadsetState = &curHeadset
				p.PreviousAudioState = &curAudio
			}
			// Muting the headset mutes the mic with it.
			p.IsHeadsetOn = false
			p.IsAudioOn = false
			p.IsHeadsetForcedOff = true
			p.IsAudioForcedOff = true
			return fmt.Sprintf("🎧 %s disabled %s's headset and microphone.", controller, p.Username)
		}
		prevHeadset := restore(p.PreviousHeadsetState, true)
		prevAudio := restore(p.PreviousAudioState, false)
		p.IsHeadsetOn = prevHeadset
		p.IsHeadsetForcedOff = false
		// Audio follows only when the headset actually comes back; with the
		// headset off the mic stays locked since it is unusable anyway.
		if prevHeadset {
			p.IsAudioOn = prevAudio
			p.IsAudioForcedOff = false
		}
		p.PreviousHeadsetState = nil
		p.PreviousAudioState = nil
		return fmt.Sprintf("🔓 %s released the headset lock on %s.", controller, p.Username)
	}
	return ""
}

func restore(snapshot *bool, def bool) bool {
	if snapshot == nil {
		return def
	}
	return *snapshot
}
