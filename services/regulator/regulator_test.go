// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// Tests for regulator service construction

package regulator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) Service {
	t.Helper()
	t.Setenv("XAI_API_KEY", "test-key")

	svc, err := New(Config{GinMode: gin.TestMode})
	require.NoError(t, err)
	return svc
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")

	svc, err := New(Config{GinMode: gin.TestMode})
	require.NoError(t, err)

	impl, ok := svc.(*service)
	require.True(t, ok)
	assert.Equal(t, 8000, impl.config.Port)
	assert.Equal(t, "xai", impl.config.LLMBackend)
	assert.True(t, impl.config.EnableMetrics)
	assert.NotNil(t, impl.store)
	assert.NotNil(t, impl.dispatcher)
	assert.NotNil(t, impl.controller)
	assert.Nil(t, impl.weaviateClient, "lightweight mode without a Weaviate URL")
}

func TestNewRegistersAllTeams(t *testing.T) {
	svc := newTestService(t)

	impl := svc.(*service)
	selectors := impl.registry.Selectors()
	assert.Contains(t, selectors, "acaps")
	assert.Contains(t, selectors, "ammc")
	assert.Contains(t, selectors, "global")
	assert.Contains(t, selectors, "senior_trade_manager")
}

func TestRouterServesHealth(t *testing.T) {
	svc := newTestService(t)
	require.NotNil(t, svc.Router())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestNewUnknownBackendFallsBack(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")

	svc, err := New(Config{GinMode: gin.TestMode, LLMBackend: "martian"})
	require.NoError(t, err)
	assert.NotNil(t, svc.Router())
}
