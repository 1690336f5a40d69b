// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire types shared by the regulator handlers.
package datatypes

// ChatRequest is the payload for POST /chat.
//
// Team selects the expert capability: "global", "acaps", "ammc" or
// "senior_trade_manager". An empty or unknown SessionID starts a new session.
type ChatRequest struct {
	Message   string `json:"message"`
	Team      string `json:"team"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the synchronous answer returned by POST /chat.
// Agent failures are reported inside the body with a 200 status so the
// frontend can render them like any other turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Reasoning string `json:"reasoning"`
	Timestamp string `json:"timestamp"`
	TeamUsed  string `json:"team_used"`
}

// TeamsResponse enumerates the selectable teams for the frontend picker.
type TeamsResponse struct {
	Teams  []string `json:"teams"`
	Agents []string `json:"agents"`
}
