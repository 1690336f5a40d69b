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
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/datatypes"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/observability"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/render"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

var tracer = otel.Tracer("atlasreg.regulator.handlers")

// HandleChat is the synchronous request/response façade over the pipeline.
//
// Capability failures are reported with HTTP 200 and a French error message
// in the body: from the frontend's point of view a failed agent is a chat
// turn like any other, not a transport error. Failed runs never update the
// session.
func HandleChat(store *session.Store, dispatcher *pipeline.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.Team == "" {
			req.Team = "global"
		}
		span.SetAttributes(attribute.String("chat.team", req.Team))

		sessionID := store.Resolve(req.SessionID)
		slog.Info("Chat request received", "sessionID", sessionID, "team", req.Team)

		result := dispatcher.Dispatch(ctx, req.Team, req.Message)
		if result.Err != nil {
			span.RecordError(result.Err)
			slog.Error("Chat pipeline failed", "sessionID", sessionID, "team", req.Team, "error", result.Err)

			response := "Erreur: " + result.Err.Error()
			reasoning := "Erreur lors du traitement"
			code := observability.ErrorCodeLLMError
			if errors.Is(result.Err, pipeline.ErrUnavailable) {
				response = "Erreur: Agent non initialisé"
				reasoning = "Agent non disponible"
				code = observability.ErrorCodeUnavailable
			}
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, code)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusOK, datatypes.ChatResponse{
				SessionID: sessionID,
				Response:  response,
				Reasoning: reasoning,
				Timestamp: time.Now().Format(time.RFC3339),
				TeamUsed:  req.Team,
			})
			return
		}

		cleanedResponse := render.Clean(result.Content)
		cleanedReasoning := result.Reasoning
		if cleanedReasoning != pipeline.ReasoningUnavailable {
			cleanedReasoning = render.Clean(cleanedReasoning)
		}

		store.Record(sessionID, req.Message, cleanedResponse, cleanedReasoning, req.Team)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointChat, true)
		}

		c.JSON(http.StatusOK, datatypes.ChatResponse{
			SessionID: sessionID,
			Response:  cleanedResponse,
			Reasoning: cleanedReasoning,
			Timestamp: time.Now().Format(time.RFC3339),
			TeamUsed:  req.Team,
		})
	}
}
