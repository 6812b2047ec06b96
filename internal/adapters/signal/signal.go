package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SessionTokenKey is where the HTTP login stores the bearer token.
const SessionTokenKey = "token"

type Config struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func (c Config) withDefaults() Config {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	return c
}

type SignalWSController struct {
	Relay   *app.Relay
	Auth    core.IdentityResolver
	Limiter *JoinLimiter
	cfg     Config
}

func NewSignalWSController(relay *app.Relay, auth core.IdentityResolver, limiter *JoinLimiter, cfg Config) *SignalWSController {
	return &SignalWSController{
		Relay:   relay,
		Auth:    auth,
		Limiter: limiter,
		cfg:     cfg.withDefaults(),
	}
}

// WsSignalConn is one client channel. identity is owned by the read pump.
type WsSignalConn struct {
	id   domain.ConnectionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool

	identity  *domain.Identity
	leaveOnce sync.Once
}

var _ core.Endpoint = (*WsSignalConn)(nil)

func (c *WsSignalConn) ID() domain.ConnectionID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TokenFromRequest finds a bearer credential in the query, the
// Authorization header or the cookie session, in that order.
func TokenFromRequest(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		if t, ok := sessions.Default(c).Get(SessionTokenKey).(string); ok {
			return t
		}
	}
	return ""
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := TokenFromRequest(c)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:   domain.ConnectionID(uuid.NewString()),
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Msg("new WS connection")

	if token != "" {
		ctl.authenticate(ctx, conn, token)
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
