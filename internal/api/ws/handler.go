// Package ws streams bus events to connected dashboards over WebSocket.
// Each connection may narrow its subscription to a topic list; everything
// else mirrors the in-process bus one-to-one.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/infrastructure/logging"
	"github.com/cloudpane/backend/internal/infrastructure/monitoring"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin enforcement happens at the CORS layer
	},
}

// Handler manages WebSocket connections.
type Handler struct {
	bus     *events.Bus
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a WebSocket handler.
func NewHandler(bus *events.Bus, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		bus:     bus,
		logger:  logger,
		metrics: metrics,
	}
}

// conn serializes writes; the event loop and the pong path share it.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(payload)
}

// clientMessage is what a connected dashboard may send: a ping, or a
// subscription narrowing.
type clientMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}

// HandleConnection upgrades the request and forwards bus events until the
// client goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	var topics []events.Topic
	for _, raw := range c.QueryArray("topic") {
		topics = append(topics, events.Topic(raw))
	}

	ch, cancel := h.bus.Subscribe(topics...)
	defer cancel()

	client := &conn{ws: ws}
	client.send(map[string]interface{}{
		"type":    "system",
		"message": "connected",
	})

	done := make(chan struct{})
	go h.readLoop(client, done)

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := client.send(evt); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
			if h.metrics != nil {
				h.metrics.RecordWSMessage("out", string(evt.Topic))
			}
		case <-done:
			return
		}
	}
}

// readLoop consumes client messages so pings are answered and closes are
// noticed.
func (h *Handler) readLoop(client *conn, done chan<- struct{}) {
	defer close(done)

	for {
		var msg clientMessage
		if err := client.ws.ReadJSON(&msg); err != nil {
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}
		if msg.Type == "ping" {
			client.send(map[string]interface{}{"type": "pong"})
		}
	}
}
