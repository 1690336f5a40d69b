// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/handlers"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/stream"
)

// Deps carries everything the route handlers need.
type Deps struct {
	Store          *session.Store
	Registry       *pipeline.Registry
	Dispatcher     *pipeline.Dispatcher
	Controller     *stream.Controller
	WeaviateClient *weaviate.Client
	EnableMetrics  bool
}

// SetupRoutes registers the full HTTP surface. The route shape is the
// frontend's contract; paths live at the root, not under a version group.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.HealthCheck(deps.Store))
	router.GET("/teams", handlers.GetTeams)
	router.GET("/api/test-agents", handlers.TestAgents(deps.Registry))

	router.POST("/chat", handlers.HandleChat(deps.Store, deps.Dispatcher))
	router.GET("/ws/:sessionId", handlers.HandleChatWebSocket(deps.Controller))

	router.POST("/sessions", handlers.CreateSession(deps.Store))
	router.GET("/sessions", handlers.ListSessions(deps.Store))
	router.GET("/sessions/:sessionId", handlers.GetSession(deps.Store))
	router.DELETE("/sessions/:sessionId", handlers.DeleteSession(deps.Store))
	router.GET("/sessions/:sessionId/export", handlers.ExportSession(deps.Store))

	router.POST("/documents", handlers.CreateDocument(deps.WeaviateClient))

	if deps.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
