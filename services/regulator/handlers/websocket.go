package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/observability"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/stream"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024 * 1024,
	WriteBufferSize: 1024 * 1024,
}

// wsSink adapts a websocket connection to the stream.Sink contract.
type wsSink struct {
	ws *websocket.Conn
}

func (s wsSink) Send(v any) error {
	err := s.ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleChatWebSocket upgrades the connection and pumps client payloads
// through the streaming controller until the client disconnects.
//
// The session id comes from the URL path. It is used as-is: recording
// against an id the store does not know is a no-op, so fabricated ids get
// streamed answers but never resurrect server state.
func HandleChatWebSocket(ctrl *stream.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("Websocket client connected", "sessionID", sessionID)

		if m := observability.DefaultMetrics; m != nil {
			m.SocketOpened()
			defer m.SocketClosed()
		}

		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				slog.Info("Websocket client disconnected", "sessionID", sessionID, "error", err.Error())
				break
			}

			if err := ctrl.HandleMessage(c.Request.Context(), sessionID, raw, wsSink{ws: ws}); err != nil {
				slog.Info("Websocket stream terminated", "sessionID", sessionID, "error", err.Error())
				break
			}
		}
	}
}
