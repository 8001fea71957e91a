package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"runoj/internal/run/service"
	"runoj/pkg/utils/logger"
	"runoj/pkg/utils/response"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamController pushes run snapshots over a websocket so clients do
// not have to poll the status endpoint.
type StreamController struct {
	runService *service.RunService
}

// NewStreamController creates a new StreamController.
func NewStreamController(runService *service.RunService) *StreamController {
	return &StreamController{runService: runService}
}

// Stream upgrades the connection and forwards every snapshot of the run
// as a JSON message. The socket is closed after the terminal snapshot.
func (h *StreamController) Stream(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		response.BadRequest(c, "Invalid run id")
		return
	}

	snapshots, unsubscribe, err := h.runService.Subscribe(c.Request.Context(), runID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(c.Request.Context(), "websocket upgrade failed",
			zap.String("run_id", runID), zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	// Reader only drains control frames and detects disconnects.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshotResponse(snap)); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientGone:
			return
		}
	}
}
