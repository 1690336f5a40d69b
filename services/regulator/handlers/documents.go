// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/AtlasRegAI/AtlasReg/services/knowledge"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/observability"
)

// CreateDocument ingests a regulatory document into the knowledge base.
// In lightweight mode (no Weaviate configured) ingestion is unavailable.
func CreateDocument(client *weaviate.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Knowledge base not configured"})
			return
		}

		var req knowledge.IngestRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		chunksCreated, err := knowledge.RunIngestion(c.Request.Context(), client, req)
		if err != nil {
			slog.Error("Ingestion failed", "source", req.Source, "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointDocuments, observability.ErrorCodeIngest)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Successfully processed document via API", "source", req.Source, "chunks_processed", chunksCreated)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointDocuments, true)
		}
		c.JSON(http.StatusCreated, gin.H{
			"status":           "success",
			"source":           req.Source,
			"chunks_processed": chunksCreated,
		})
	}
}
