// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const xaiBaseURL = "https://api.x.ai/v1"

// XAIClient talks to the xAI (Grok) API. The API is OpenAI-compatible, so
// it reuses the go-openai client with a custom base URL.
type XAIClient struct {
	client *openai.Client
	model  string
}

func NewXAIClient() (*XAIClient, error) {
	apiKey := os.Getenv("XAI_API_KEY")
	model := os.Getenv("XAI_MODEL")
	if apiKey == "" {
		secretPath := "/run/secrets/xai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the xAI API Key from Podman Secrets")
		} else {
			slog.Error("XAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("XAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "grok-3-mini"
		slog.Warn("XAI_MODEL not set, defaulting to grok-3-mini")
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = xaiBaseURL

	slog.Info("Initializing xAI client", "model", model)
	return &XAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate implements the LLMClient interface
func (x *XAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via xAI", "model", x.model)

	system := params.System
	if system == "" {
		system = "You are a helpful assistant."
	}
	req := openai.ChatCompletionRequest{
		Model: x.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := x.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("xAI API call failed", "error", err)
		return "", fmt.Errorf("xAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("xAI returned no choices or empty content")
		return "", fmt.Errorf("xAI returned no choices")
	}

	choice := resp.Choices[0]
	slog.Debug("Received response from xAI", "finish_reason", choice.FinishReason)

	// Grok reasoning models return their chain of thought in a separate
	// field; prepend it so downstream step extraction can see it.
	if choice.Message.ReasoningContent != "" {
		return choice.Message.ReasoningContent + "\n\n=== RÉPONSE ===\n\n" + choice.Message.Content, nil
	}
	return choice.Message.Content, nil
}
