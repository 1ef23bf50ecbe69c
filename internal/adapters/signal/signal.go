package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/VoipWeb/internal/app/orch"
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrNotConnected = errors.New("not connected")
)

type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	// RateLimit is inbound events per second per connection; 0 disables it.
	RateLimit int
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 64 * 1024
	}
	return o
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// Hub is the core.Sender backed by the live websocket connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.SignalConnection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[domain.ConnID]core.SignalConnection)}
}

func (h *Hub) attach(id domain.ConnID, c core.SignalConnection) {
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
}

func (h *Hub) detach(id domain.ConnID) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

func (h *Hub) get(id domain.ConnID) (core.SignalConnection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

// Send encodes the envelope and queues it without blocking.
func (h *Hub) Send(id domain.ConnID, event string, payload any) error {
	c, ok := h.get(id)
	if !ok {
		return ErrNotConnected
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(core.Envelope{Type: event, Payload: body})
	if err != nil {
		return err
	}
	return c.TrySend(frame)
}

func (h *Hub) Close(id domain.ConnID) {
	if c, ok := h.get(id); ok {
		c.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Hub      *Hub
	Identity core.IdentitySupplier

	opts     Options
	limiter  *RateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, hub *Hub, identity core.IdentitySupplier, opts Options) *SignalWSController {
	if identity == nil {
		identity = core.ContextIdentity{}
	}
	opts = opts.withDefaults()
	return &SignalWSController{
		Orch:     o,
		Hub:      hub,
		Identity: identity,
		opts:     opts,
		limiter:  NewRateLimiter(opts.RateLimit),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleSignal upgrades the request and runs the connection until either
// side closes it or ctx is cancelled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.opts.MaxMessageSize)

	id := domain.NewConnID()
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	ctl.Hub.attach(id, conn)

	if _, err := ctl.Orch.Connect(id, ctl.Identity.DisplayName(c)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(id)).Msg("register connection")
		ctl.Hub.detach(id)
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(id)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, id, conn)
	}()
}
