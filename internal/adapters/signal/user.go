package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/app"
	"github.com/mogakco/signal/internal/domain"
)

func (ctl *Controller) handleStatus(cid domain.ConnectionID, data []byte) {
	var p struct {
		Status     string `json:"status"`
		Emoji      string `json:"emoji"`
		CustomText string `json:"customText"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad status payload")
		return
	}
	res, err := ctl.Orch.UpdateStatus(cid, p.Status, p.Emoji, p.CustomText)
	if err != nil {
		return
	}
	ctl.BroadcastRoom(res.RoomID, struct {
		Type         string               `json:"type"`
		Participants []domain.Participant `json:"participants"`
	}{"user-status-changed", res.Participants})
}

func (ctl *Controller) handleToggle(cid domain.ConnectionID, event string, data []byte) {
	var p struct {
		IsVideoOn   *bool `json:"isVideoOn"`
		IsAudioOn   *bool `json:"isAudioOn"`
		IsHeadsetOn *bool `json:"isHeadsetOn"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle payload")
		return
	}
	var (
		field app.MediaField
		value *bool
	)
	switch event {
	case "toggle-video":
		field, value = app.FieldVideo, p.IsVideoOn
	case "toggle-audio":
		field, value = app.FieldAudio, p.IsAudioOn
	case "toggle-headset":
		field, value = app.FieldHeadset, p.IsHeadsetOn
	}
	if value == nil {
		return
	}
	res, err := ctl.Orch.ToggleMedia(cid, field, *value)
	if err != nil {
		return
	}
	ctl.BroadcastRoom(res.RoomID, struct {
		Type         string               `json:"type"`
		CID          domain.ConnectionID  `json:"connectionId"`
		Username     string               `json:"username"`
		IsVideoOn    bool                 `json:"isVideoOn"`
		IsAudioOn    bool                 `json:"isAudioOn"`
		IsHeadsetOn  bool                 `json:"isHeadsetOn"`
		Participants []domain.Participant `json:"participants"`
	}{"user-media-changed", res.CID, res.Username, res.IsVideoOn, res.IsAudioOn, res.IsHeadsetOn, res.Participants})
}

// audioLevelEvent shapes the delta broadcast shared by the report path and
// the sweeper resets.
func audioLevelEvent(u app.AudioLevelUpdate) any {
	return struct {
		Type string `json:"type"`
		app.AudioLevelUpdate
	}{"audio-level-update", u}
}

func (ctl *Controller) handleAudioLevel(cid domain.ConnectionID, data []byte) {
	var p struct {
		Level      int  `json:"level"`
		IsSpeaking bool `json:"isSpeaking"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audio-level payload")
		return
	}
	res, err := ctl.Orch.ReportAudioLevel(cid, p.Level, p.IsSpeaking)
	if err != nil {
		return
	}
	ctl.BroadcastRoom(res.RoomID, audioLevelEvent(*res))
}

func (ctl *Controller) handleChat(cid domain.ConnectionID, c *wsConn, data []byte) {
	var p struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Message == "" {
		return
	}
	if !c.chatLimiter.Allow() {
		log.Warn().Str("module", "signal").Str("cid", string(cid)).Msg("chat rate limited")
		return
	}
	res, err := ctl.Orch.SendChat(cid, p.Message)
	if err != nil {
		return
	}
	ctl.BroadcastRoom(res.RoomID, struct {
		Type string `json:"type"`
		domain.Message
	}{"new-message", res.Message})
}
