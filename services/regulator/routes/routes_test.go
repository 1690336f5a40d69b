// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// Route table smoke tests

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/stream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testDeps() Deps {
	store := session.NewStore()
	registry := pipeline.NewRegistry()
	dispatcher := &pipeline.Dispatcher{Registry: registry, Runner: pipeline.NewRunner()}
	controller := stream.NewController(dispatcher, store, stream.Config{
		StepDelay:     time.Millisecond,
		ResponseDelay: time.Millisecond,
	})
	return Deps{
		Store:      store,
		Registry:   registry,
		Dispatcher: dispatcher,
		Controller: controller,
	}
}

func TestSetupRoutes(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, testDeps())

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/teams", http.StatusOK},
		{"GET", "/api/test-agents", http.StatusOK},
		{"POST", "/sessions", http.StatusOK},
		{"GET", "/sessions", http.StatusOK},
		{"GET", "/sessions/ghost", http.StatusNotFound},
		{"DELETE", "/sessions/ghost", http.StatusNotFound},
		{"GET", "/sessions/ghost/export", http.StatusNotFound},
		{"POST", "/documents", http.StatusServiceUnavailable},
		{"GET", "/metrics", http.StatusNotFound},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(tc.method, tc.path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSetupRoutesWithMetrics(t *testing.T) {
	deps := testDeps()
	deps.EnableMetrics = true

	router := gin.New()
	SetupRoutes(router, deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
