// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// Tests for the synchronous chat handler

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/datatypes"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

func chatRouter(store *session.Store, dispatcher *pipeline.Dispatcher) *gin.Engine {
	router := gin.New()
	router.POST("/chat", HandleChat(store, dispatcher))
	return router
}

func postChat(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChat(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("acaps", &cannedCapability{
		name: "acaps",
		out: &pipeline.Output{
			Content:          "## Assurance automobile\n\nLa garantie est obligatoire.",
			ReasoningContent: "Reasoning step 1: Analyse: lecture du code des assurances:",
		},
	})
	store := session.NewStore()
	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	router := chatRouter(store, dispatcher)

	w := postChat(t, router, datatypes.ChatRequest{Message: "Quelle garantie ?", Team: "acaps"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.SessionID)
	assert.Contains(t, response.Response, "<h2")
	assert.Contains(t, response.Response, "Assurance automobile")
	assert.Equal(t, "acaps", response.TeamUsed)
	assert.NotEmpty(t, response.Timestamp)

	sess, err := store.Get(response.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "Quelle garantie ?", sess.Messages[0].UserMessage)
}

func TestHandleChatReusesSession(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("global", &cannedCapability{name: "global", out: &pipeline.Output{Content: "ok"}})
	store := session.NewStore()
	id := store.Resolve("")
	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	router := chatRouter(store, dispatcher)

	w := postChat(t, router, datatypes.ChatRequest{Message: "bonjour", Team: "global", SessionID: id})

	var response datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, id, response.SessionID)
	assert.Equal(t, 1, store.Count())
}

func TestHandleChatUnavailable(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("acaps", pipeline.NewUnavailable("acaps"))
	store := session.NewStore()
	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	router := chatRouter(store, dispatcher)

	w := postChat(t, router, datatypes.ChatRequest{Message: "test", Team: "acaps"})

	// Agent failures are chat turns, not transport errors.
	assert.Equal(t, http.StatusOK, w.Code)

	var response datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Erreur: Agent non initialisé", response.Response)
	assert.Equal(t, "Agent non disponible", response.Reasoning)
	assert.Equal(t, 1, store.Count())

	sess, err := store.Get(response.SessionID)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages, "failed runs must not be recorded")
}

func TestHandleChatPipelineError(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("global", &cannedCapability{name: "global", err: assert.AnError})
	store := session.NewStore()
	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	router := chatRouter(store, dispatcher)

	w := postChat(t, router, datatypes.ChatRequest{Message: "test", Team: "global"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Response, "Erreur: ")
	assert.Equal(t, "Erreur lors du traitement", response.Reasoning)
}

func TestHandleChatInvalidBody(t *testing.T) {
	store := session.NewStore()
	dispatcher := &pipeline.Dispatcher{Registry: pipeline.NewRegistry(), Runner: pipeline.NewRunner()}
	router := chatRouter(store, dispatcher)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/chat", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.Count())
}

func TestHandleChatChainedRewrite(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.Register("ammc", &cannedCapability{
		name: "ammc",
		out:  &pipeline.Output{Content: "analyse technique OPCVM"},
	})
	rewriter := &cannedCapability{
		name: "senior_trade_manager",
		out:  &pipeline.Output{Content: "version métier de l'analyse"},
	}
	store := session.NewStore()
	dispatcher := &pipeline.Dispatcher{
		Registry:       registry,
		Runner:         pipeline.NewRunner(),
		Rewriter:       rewriter,
		RewriteEnabled: true,
	}
	router := chatRouter(store, dispatcher)

	w := postChat(t, router, datatypes.ChatRequest{Message: "OPCVM ?", Team: "ammc"})

	var response datatypes.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Response, "version métier")
	assert.NotContains(t, response.Response, "analyse technique")
}
