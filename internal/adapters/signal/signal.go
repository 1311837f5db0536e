// Package signal is the WebSocket adapter: it decodes inbound events, calls
// the app-layer transitions, and fans the results out through the registry.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mogakco/signal/internal/app"
	"github.com/mogakco/signal/internal/config"
	"github.com/mogakco/signal/internal/core"
	"github.com/mogakco/signal/internal/domain"
	"github.com/mogakco/signal/internal/metrics"
)

var (
	ErrBackpressure = errors.New("backpressure")
	errBadPayload   = errors.New("bad payload")
)

type Controller struct {
	Orch   *app.Orchestrator
	Cfg    *config.Config
	Policy app.Policy
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{Orch: orch, Cfg: cfg, Policy: app.SimplePolicy{}}
}

// wsConn wraps one gorilla connection with a buffered send channel.
// Implements core.SignalConnection.
var _ core.SignalConnection = (*wsConn)(nil)

type wsConn struct {
	conn        *websocket.Conn
	send        chan core.Frame
	chatLimiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until either
// side closes. The connection identity comes from the client-token cookie
// minted by the router middleware.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	cid := domain.ConnectionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &wsConn{
		conn:        ws,
		send:        make(chan core.Frame, 32),
		chatLimiter: rate.NewLimiter(rate.Limit(ctl.Cfg.ChatRate), ctl.Cfg.ChatBurst),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(cid, conn, cancel)
	metrics.WsConnections.Inc()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn)
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendTo(cid domain.ConnectionID, v any) {
	if conn, ok := ctl.Orch.Registry.Conn(cid); ok {
		ctl.sendJSON(conn, v)
	}
}

// BroadcastRoom fans v out to every connection bound to the room, applying
// the backpressure policy to members whose buffers are full.
func (ctl *Controller) BroadcastRoom(roomID domain.RoomID, v any) {
	ctl.broadcast(roomID, "", v)
}

// BroadcastExcept skips one connection, e.g. the joiner who already received
// the full snapshot.
func (ctl *Controller) BroadcastExcept(roomID domain.RoomID, except domain.ConnectionID, v any) {
	ctl.broadcast(roomID, except, v)
}

func (ctl *Controller) broadcast(roomID domain.RoomID, except domain.ConnectionID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	for _, m := range ctl.Orch.Registry.MembersOfRoom(roomID) {
		if m.CID == except {
			continue
		}
		if err := m.Conn.TrySend(b); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("cid", string(m.CID)).Msg("broadcast dropped")
			if ctl.Policy != nil && ctl.Policy.OnBackpressure(string(m.CID)) == app.CloseConn {
				ctl.Orch.Registry.Cancel(m.CID)
			}
		}
	}
}

// NotifyAudioReset is the sweeper's fan-out hook.
func (ctl *Controller) NotifyAudioReset(u app.AudioLevelUpdate) {
	ctl.BroadcastRoom(u.RoomID, audioLevelEvent(u))
}

// sendError reports a request-scoped failure back to the requester only.
func (ctl *Controller) sendError(c core.SignalConnection, event string, err error) {
	ctl.sendJSON(c, struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{event, err.Error()})
}
