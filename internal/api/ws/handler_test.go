package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpane/backend/internal/events"
)

func newTestStream(t *testing.T, bus *events.Bus) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", NewHandler(bus, nil, nil).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamGreetsAndForwardsEvents(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	srv := newTestStream(t, bus)

	conn := dial(t, srv, "")

	greeting := readFrame(t, conn)
	assert.Equal(t, "connected", greeting["message"])

	// The subscription is live once the greeting arrived.
	bus.Publish(events.TopicFolderCreated, map[string]string{"name": "Archive"})

	frame := readFrame(t, conn)
	assert.Equal(t, string(events.TopicFolderCreated), frame["topic"])
	payload := frame["payload"].(map[string]interface{})
	assert.Equal(t, "Archive", payload["name"])
}

func TestStreamTopicNarrowing(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	srv := newTestStream(t, bus)

	conn := dial(t, srv, "?topic=notification")
	readFrame(t, conn) // greeting

	bus.Publish(events.TopicDragStarted, nil)
	bus.Publish(events.TopicNotification, map[string]string{"title": "Upload complete"})

	frame := readFrame(t, conn)
	assert.Equal(t, string(events.TopicNotification), frame["topic"])
}

func TestStreamAnswersPing(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	srv := newTestStream(t, bus)

	conn := dial(t, srv, "")
	readFrame(t, conn) // greeting

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "pong", frame["type"])
}
