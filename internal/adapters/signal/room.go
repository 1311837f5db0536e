package signal

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
)

// normalizeCode uppercases a human-typed room code once, at the boundary.
func normalizeCode(raw string) domain.RoomID {
	return domain.RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}

func (ctl *Controller) handleCheckRoom(c core.SignalConnection, data []byte) {
	var p struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad check-room payload")
		return
	}
	info, err := ctl.Orch.RoomInfo(normalizeCode(p.RoomCode))
	if err != nil {
		ctl.sendJSON(c, struct {
			Type string `json:"type"`
		}{"room-not-found"})
		return
	}
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
		core.RoomInfo
	}{"room-info", info})
}

func (ctl *Controller) handleCreateRoom(c core.SignalConnection, data []byte) {
	var p struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Password    string `json:"password"`
		Creator     string `json:"creator"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		ctl.sendError(c, "create-error", errBadPayload)
		return
	}
	roomID, createdAt := ctl.Orch.CreateRoom(p.Name, p.Description, p.Password, p.Creator)
	ctl.sendJSON(c, struct {
		Type     string        `json:"type"`
		RoomID   domain.RoomID `json:"roomId"`
		RoomInfo core.RoomInfo `json:"roomInfo"`
	}{
		Type:   "room-created",
		RoomID: roomID,
		RoomInfo: core.RoomInfo{
			RoomMeta: core.RoomMeta{
				Name:        p.Name,
				Description: p.Description,
				HasPassword: p.Password != "",
			},
			Participants: 0,
			CreatedAt:    createdAt,
		},
	})
}

func (ctl *Controller) handleJoin(cid domain.ConnectionID, c core.SignalConnection, data []byte) {
	var p struct {
		Username string `json:"username"`
		RoomCode string `json:"roomCode"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "join-error", errBadPayload)
		return
	}
	roomID := normalizeCode(p.RoomCode)
	res, err := ctl.Orch.Join(cid, p.Username, string(roomID), p.Password)
	if res != nil && res.PriorLeave != nil {
		// Joining evicts any membership this connection already held; the
		// old room hears about it even when the new join fails.
		ctl.broadcastLeave(res.PriorLeave)
	}
	if err != nil {
		ctl.sendError(c, "join-error", err)
		return
	}
	ctl.sendJSON(c, struct {
		Type         string               `json:"type"`
		RoomCode     domain.RoomID        `json:"roomCode"`
		Participants []domain.Participant `json:"participants"`
		Messages     []domain.Message     `json:"messages"`
		RoomInfo     core.RoomMeta        `json:"roomInfo"`
	}{"room-joined", res.RoomID, res.Participants, res.Messages, res.Meta})

	ctl.BroadcastExcept(res.RoomID, cid, struct {
		Type         string               `json:"type"`
		Participants []domain.Participant `json:"participants"`
		Message      domain.Message       `json:"message"`
	}{"user-joined", res.Participants, res.JoinMessage})
}

func (ctl *Controller) handleSettings(cid domain.ConnectionID, c core.SignalConnection, data []byte) {
	var p struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Password    string `json:"password"`
		HasPassword bool   `json:"hasPassword"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad settings payload")
		ctl.sendError(c, "update-room-error", errBadPayload)
		return
	}
	res, err := ctl.Orch.UpdateSettings(cid, p.Name, p.Description, p.Password, p.HasPassword)
	if err != nil {
		ctl.sendError(c, "update-room-error", err)
		return
	}
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
		core.RoomMeta
	}{"room-settings-updated", res.Meta})

	ctl.BroadcastExcept(res.RoomID, cid, struct {
		Type     string         `json:"type"`
		RoomInfo core.RoomMeta  `json:"roomInfo"`
		Message  domain.Message `json:"message"`
	}{"room-settings-changed", res.Meta, res.Message})
}

func (ctl *Controller) handleDeleteRoom(cid domain.ConnectionID, c core.SignalConnection) {
	res, err := ctl.Orch.DeleteRoom(cid)
	if err != nil {
		ctl.sendError(c, "delete-room-error", err)
		return
	}
	closed := struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{"room-force-closed", res.Farewell}
	if b, err := json.Marshal(closed); err == nil {
		for _, m := range res.Members {
			_ = m.Conn.TrySend(b)
		}
	}
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{"room-deleted"})
}
