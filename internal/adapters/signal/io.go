package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mogakco/signal/internal/app"
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
	"github.com/mogakco/signal/internal/metrics"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cid domain.ConnectionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		ctl.handleDisconnect(cid)
		c.Close()
		metrics.WsConnections.Dec()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(cid, c, data)
		}
	}
}

var knownEvents = map[string]struct{}{
	"ping": {}, "check-room": {}, "create-room": {}, "join-room": {},
	"update-user-status": {}, "force-control": {},
	"offer": {}, "answer": {}, "ice-candidate": {},
	"toggle-video": {}, "toggle-audio": {}, "toggle-headset": {},
	"audio-level": {}, "send-message": {}, "update-room-settings": {},
	"delete-room": {},
}

// eventLabel keeps the metric label set bounded: clients choose event names,
// so anything unrecognized is counted under a single bucket.
func eventLabel(t string) string {
	if _, ok := knownEvents[t]; ok {
		return t
	}
	return "unknown"
}

// dispatch routes an inbound event by its type field. Unknown or malformed
// events are logged and dropped; nothing a client sends is fatal.
func (ctl *Controller) dispatch(cid domain.ConnectionID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}
	metrics.EventsTotal.WithLabelValues(eventLabel(env.Type)).Inc()

	switch env.Type {
	case "ping":
		ctl.handlePing(c)
	case "check-room":
		ctl.handleCheckRoom(c, data)
	case "create-room":
		ctl.handleCreateRoom(c, data)
	case "join-room":
		ctl.handleJoin(cid, c, data)
	case "update-user-status":
		ctl.handleStatus(cid, data)
	case "force-control":
		ctl.handleForceControl(cid, c, data)
	case "offer", "answer", "ice-candidate":
		ctl.handleRelay(cid, env.Type, data)
	case "toggle-video", "toggle-audio", "toggle-headset":
		ctl.handleToggle(cid, env.Type, data)
	case "audio-level":
		ctl.handleAudioLevel(cid, data)
	case "send-message":
		ctl.handleChat(cid, c, data)
	case "update-room-settings":
		ctl.handleSettings(cid, c, data)
	case "delete-room":
		ctl.handleDeleteRoom(cid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

// handleDisconnect runs once per connection when its read loop ends. Safe
// for connections that never joined a room.
func (ctl *Controller) handleDisconnect(cid domain.ConnectionID) {
	ctl.broadcastLeave(ctl.Orch.Disconnect(cid))
}

// broadcastLeave announces a departure to whoever is still in the room.
// The leaver is excluded explicitly rather than relying on their binding
// already pointing elsewhere.
func (ctl *Controller) broadcastLeave(res *app.LeaveResult) {
	if res == nil || res.RoomDeleted {
		return
	}
	ctl.BroadcastExcept(res.RoomID, res.Left, struct {
		Type            string               `json:"type"`
		Participants    []domain.Participant `json:"participants"`
		Messages        []domain.Message     `json:"messages"`
		DisconnectedCID domain.ConnectionID  `json:"disconnectedConnectionId"`
	}{"user-left", res.Participants, res.Messages, res.Left})
}

func (ctl *Controller) handlePing(c core.SignalConnection) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{"pong"})
}
