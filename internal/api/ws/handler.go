package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/monitoring"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// clientMessage is the only shape clients send
type clientMessage struct {
	Type string `json:"type"`
}

// Handler manages WebSocket connections
type Handler struct {
	sessions *session.Manager
	metrics  *monitoring.Metrics
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Origins lists the allowed
// browser origins; empty or "*" allows all. metrics may be nil.
func NewHandler(sessions *session.Manager, metrics *monitoring.Metrics, logger *zap.Logger, origins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		metrics:  metrics,
		log:      logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// HandleConnection upgrades the request and streams the session's events
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := id.SessionID(c.Param("id"))
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("session_id", sessionID.String()))
	log.Debug("stream opened")
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	events, cancel := s.Subscribe()
	defer cancel()

	replies := make(chan map[string]interface{}, 8)
	readDone := make(chan struct{})
	go h.readLoop(conn, replies, readDone, log)

	if err := h.send(conn, "connected", map[string]interface{}{
		"type":    "connected",
		"session": s.Snapshot(),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				h.closeNormally(conn)
				return
			}
			if err := h.send(conn, string(ev.Type), ev); err != nil {
				log.Debug("stream write failed", zap.Error(err))
				return
			}
			if ev.Type == session.EventClosed {
				h.closeNormally(conn)
				return
			}
		case msg := <-replies:
			if err := h.send(conn, msg["type"].(string), msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			log.Debug("stream closed by client")
			return
		}
	}
}

// readLoop handles client messages. Replies go through the writer so only
// one goroutine writes to conn.
func (h *Handler) readLoop(conn *websocket.Conn, replies chan<- map[string]interface{}, done chan<- struct{}, log *zap.Logger) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", "client")
		}

		var msg clientMessage
		reply := map[string]interface{}{"type": "pong", "timestamp": time.Now().Unix()}
		if err := sonic.Unmarshal(data, &msg); err != nil || msg.Type != "ping" {
			reply = map[string]interface{}{
				"type":      "error",
				"message":   "unknown message type",
				"timestamp": time.Now().Unix(),
			}
		}

		select {
		case replies <- reply:
		default:
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msgType string, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msgType)
	}
	return nil
}

func (h *Handler) closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
