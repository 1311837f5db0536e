package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/domain"
)

// Connection-negotiation relay. Payloads are typed envelopes
// (webrtc.SessionDescription / webrtc.ICECandidateInit) whose contents pass
// through untouched; SDP and candidate semantics belong to the peers.

type offerPayload struct {
	TargetConnectionID string                    `json:"targetConnectionId"`
	Offer              webrtc.SessionDescription `json:"offer"`
}

type answerPayload struct {
	TargetConnectionID string                    `json:"targetConnectionId"`
	Answer             webrtc.SessionDescription `json:"answer"`
}

type candidatePayload struct {
	TargetConnectionID string                  `json:"targetConnectionId"`
	Candidate          webrtc.ICECandidateInit `json:"candidate"`
}

// handleRelay forwards a negotiation payload to its target, tagged with the
// sender's identity (and username for offers, so the recipient can label the
// incoming peer session).
func (ctl *Controller) handleRelay(cid domain.ConnectionID, kind string, data []byte) {
	_, username, ok := ctl.Orch.Registry.RoomOf(cid)
	if !ok {
		return
	}

	switch kind {
	case "offer":
		var p offerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
			return
		}
		ctl.sendTo(domain.ConnectionID(p.TargetConnectionID), struct {
			Type           string                    `json:"type"`
			Offer          webrtc.SessionDescription `json:"offer"`
			SenderCID      domain.ConnectionID       `json:"senderConnectionId"`
			SenderUsername string                    `json:"senderUsername"`
		}{"offer", p.Offer, cid, username})

	case "answer":
		var p answerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
			return
		}
		ctl.sendTo(domain.ConnectionID(p.TargetConnectionID), struct {
			Type      string                    `json:"type"`
			Answer    webrtc.SessionDescription `json:"answer"`
			SenderCID domain.ConnectionID       `json:"senderConnectionId"`
		}{"answer", p.Answer, cid})

	case "ice-candidate":
		var p candidatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
			return
		}
		ctl.sendTo(domain.ConnectionID(p.TargetConnectionID), struct {
			Type      string                  `json:"type"`
			Candidate webrtc.ICECandidateInit `json:"candidate"`
			SenderCID domain.ConnectionID     `json:"senderConnectionId"`
		}{"ice-candidate", p.Candidate, cid})
	}
}
