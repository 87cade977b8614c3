package feed

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/paystream/paystream/internal/config"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Gateway accepts feed subscription requests and runs one Session per
// accepted websocket connection.
type Gateway struct {
	fetcher  Fetcher
	cfg      config.FeedConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewGateway creates the feed gateway. Poll cadence and fetch cap come from
// config, never from ambient state.
func NewGateway(fetcher Fetcher, cfg config.FeedConfig, logger *zap.Logger) *Gateway {
	return &Gateway{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades an authenticated subscription request to a websocket and
// streams transfer updates until the client disconnects. Authorization and
// validation failures terminate the request before any session exists.
func (g *Gateway) Handle(c *gin.Context) {
	userID, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	accountIDs := splitAccountIDs(c.Query("accountIds"))
	if len(accountIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountIds query parameter is required"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sink := newConnSink(conn)
	go g.readPump(conn, cancel)
	go sink.keepAlive(ctx)

	g.logger.Info("feed session started",
		zap.Any("user_id", userID),
		zap.Strings("accounts", accountIDs))

	session := NewSession(g.fetcher, sink, accountIDs, g.cfg.PollInterval, g.logger)
	if err := session.Run(ctx); err != nil {
		g.logger.Debug("feed session ended with send error", zap.Error(err))
	}
	g.logger.Info("feed session closed", zap.Any("user_id", userID))
}

// readPump drains inbound frames so pongs are processed, and cancels the
// session the moment the client goes away.
func (g *Gateway) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func splitAccountIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// connSink serializes writes to a websocket connection. The session and the
// keep-alive ticker both write, so a mutex guards the conn.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newConnSink(conn *websocket.Conn) *connSink {
	return &connSink{conn: conn}
}

// Send writes one event as a single text frame.
func (s *connSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// keepAlive pings the client until the session context ends.
func (s *connSink) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
