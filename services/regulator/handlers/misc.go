// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the gin handlers of the regulator HTTP
// surface.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/datatypes"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

// Root returns the service banner.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Régulation Marocaine API",
		"status":  "running",
	})
}

// HealthCheck reports liveness and the number of live sessions.
func HealthCheck(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"timestamp":      time.Now().Format(time.RFC3339),
			"sessions_count": store.Count(),
		})
	}
}

// GetTeams enumerates the selectable teams for the frontend picker.
func GetTeams(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.TeamsResponse{
		Teams:  []string{"global", "acaps", "ammc"},
		Agents: []string{"coordinateur-global", "acaps-specialiste", "ammc-specialiste"},
	})
}

// TestAgents reports the initialization status of every registered
// capability.
func TestAgents(registry *pipeline.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"agents":  registry.StatusReport(),
		})
	}
}
