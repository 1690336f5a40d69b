// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

func CreateSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := store.Resolve("")
		slog.Info("Created new session", "sessionID", id)
		c.JSON(http.StatusOK, gin.H{"session_id": id})
	}
}

func ListSessions(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.List())
	}
}

func GetSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		sess, err := store.Get(id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session non trouvée"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": sess.ID,
			"session_data": gin.H{
				"messages":      sess.Messages,
				"created_at":    sess.CreatedAt,
				"last_activity": sess.LastActivity,
				"team_used":     sess.TeamUsed,
			},
		})
	}
}

func DeleteSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		if err := store.Delete(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session non trouvée"})
			return
		}
		slog.Info("Deleted session", "sessionID", id)
		c.JSON(http.StatusOK, gin.H{"message": "Session supprimée avec succès"})
	}
}
