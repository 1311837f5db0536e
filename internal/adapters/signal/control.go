package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/app"
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// handleForceControl runs an owner's moderation action. All precondition
// failures come back on force-control-error to the requester only.
func (ctl *Controller) handleForceControl(cid domain.ConnectionID, c core.SignalConnection, data []byte) {
	var p struct {
		TargetConnectionID string `json:"targetConnectionId"`
		Action             string `json:"action"`
		Value              bool   `json:"value"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad force-control payload")
		ctl.sendError(c, "force-control-error", errBadPayload)
		return
	}
	target := domain.ConnectionID(p.TargetConnectionID)
	res, err := ctl.Orch.ForceControl(cid, target, app.ForceAction(p.Action), p.Value)
	if err != nil {
		ctl.sendError(c, "force-control-error", err)
		return
	}

	if res.Kick != nil {
		ctl.sendTo(target, struct {
			Type           string `json:"type"`
			Message        string `json:"message"`
			ControllerName string `json:"controllerName"`
		}{"force-kicked", "You were removed from the room by the owner.", res.ControllerName})

		ctl.BroadcastRoom(res.RoomID, struct {
			Type         string               `json:"type"`
			Participants []domain.Participant `json:"participants"`
			Message      domain.Message       `json:"message"`
			KickedCID    domain.ConnectionID  `json:"kickedConnectionId"`
		}{"user-kicked", res.Participants, res.Message, target})
		return
	}

	// The target gets the resolved flags directly so it never re-derives the
	// headset/audio composition locally.
	ctl.sendTo(target, struct {
		Type           string             `json:"type"`
		Action         app.ForceAction    `json:"action"`
		Value          bool               `json:"value"`
		ControllerName string             `json:"controllerName"`
		FinalStates    domain.MediaStates `json:"finalStates"`
	}{"force-control-command", res.Action, res.Value, res.ControllerName, res.FinalStates})

	ctl.BroadcastRoom(res.RoomID, struct {
		Type         string               `json:"type"`
		Participants []domain.Participant `json:"participants"`
		Message      domain.Message       `json:"message"`
		TargetCID    domain.ConnectionID  `json:"targetConnectionId"`
		Action       app.ForceAction      `json:"action"`
		Value        bool                 `json:"value"`
	}{"force-control-applied", res.Participants, res.Message, target, res.Action, res.Value})
}
