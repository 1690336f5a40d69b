// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// Tests for the chat websocket handler

package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/stream"
)

func dialWebsocket(t *testing.T, store *session.Store, registry *pipeline.Registry) (*websocket.Conn, string) {
	t.Helper()

	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	ctrl := stream.NewController(dispatcher, store, stream.Config{
		StepDelay:     time.Millisecond,
		ResponseDelay: time.Millisecond,
	})

	router := gin.New()
	router.GET("/ws/:sessionId", HandleChatWebSocket(ctrl))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	sessionID := store.Resolve("")
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + sessionID

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws, sessionID
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestWebsocketChatFlow(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("acaps", &cannedCapability{
		name: "acaps",
		out: &pipeline.Output{
			Content:          "La garantie est **obligatoire**.",
			ReasoningContent: "Reasoning step 1: Analyse: lecture du code:\n\nReasoning step 2: Synthèse: conclusion:",
		},
	})
	store := session.NewStore()

	ws, sessionID := dialWebsocket(t, store, registry)

	payload, _ := json.Marshal(map[string]string{"message": "Quelle garantie ?", "team": "acaps"})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, payload))

	start := readEvent(t, ws)
	assert.Equal(t, "reasoning_start", start["type"])
	assert.Contains(t, start["message"], "Équipe ACAPS")

	first := readEvent(t, ws)
	assert.Equal(t, "reasoning_step", first["type"])
	assert.Contains(t, first["step"], "Reasoning step 1")
	assert.Equal(t, float64(1), first["step_number"])
	assert.Equal(t, float64(2), first["total_steps"])

	second := readEvent(t, ws)
	assert.Equal(t, "reasoning_step", second["type"])
	assert.Equal(t, float64(2), second["step_number"])

	response := readEvent(t, ws)
	assert.Equal(t, "response", response["type"])
	assert.Contains(t, response["response"], "<strong")
	assert.Equal(t, "acaps", response["team_used"])
	assert.Equal(t, "", response["reasoning"])

	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "Quelle garantie ?", sess.Messages[0].UserMessage)
}

func TestWebsocketMalformedPayloadKeepsConnection(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("global", &cannedCapability{name: "global", out: &pipeline.Output{Content: "ok"}})
	store := session.NewStore()

	ws, _ := dialWebsocket(t, store, registry)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))

	event := readEvent(t, ws)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, "Format de message invalide", event["message"])

	// Connection survives the protocol error: a valid message still works.
	payload, _ := json.Marshal(map[string]string{"message": "bonjour"})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, payload))

	start := readEvent(t, ws)
	assert.Equal(t, "reasoning_start", start["type"])
}

func TestWebsocketUnavailableAgent(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("global", pipeline.NewUnavailable("global"))
	store := session.NewStore()

	ws, sessionID := dialWebsocket(t, store, registry)

	payload, _ := json.Marshal(map[string]string{"message": "test"})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, payload))

	start := readEvent(t, ws)
	assert.Equal(t, "reasoning_start", start["type"])

	event := readEvent(t, ws)
	assert.Equal(t, "error", event["type"])
	assert.Equal(t, "Agent non disponible", event["message"])

	sess, err := store.Get(sessionID)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages)
}

func TestWebsocketUnknownSessionStreamsWithoutRecording(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("global", &cannedCapability{name: "global", out: &pipeline.Output{Content: "ok"}})
	store := session.NewStore()

	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	ctrl := stream.NewController(dispatcher, store, stream.Config{
		StepDelay:     time.Millisecond,
		ResponseDelay: time.Millisecond,
	})

	router := gin.New()
	router.GET("/ws/:sessionId", HandleChatWebSocket(ctrl))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/fabricated-id"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	payload, _ := json.Marshal(map[string]string{"message": "bonjour"})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, payload))

	for {
		event := readEvent(t, ws)
		if event["type"] == "response" {
			break
		}
	}

	// The fabricated id never became server state.
	assert.Equal(t, 0, store.Count())
}
