// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command regulator starts the AtlasReg regulator HTTP server.
//
// This is the main entry point for the containerized regulator service.
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - REGULATOR_PORT: HTTP server port (default: 8000)
//   - LLM_BACKEND_TYPE: LLM provider - xai, openai, ollama (default: xai)
//   - WEAVIATE_SERVICE_URL: Weaviate knowledge base URL (optional)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: atlasreg-otel-collector:4317)
//   - REWRITE_STAGE_ENABLED: chain specialist answers into the business rewrite (default: true)
//   - STEP_DELAY_SECONDS: pause between streamed reasoning steps (default: 10)
//   - RESPONSE_DELAY_SECONDS: pause before the final streamed answer (default: 15)
//
// # Usage
//
//	# Build
//	go build -o regulator ./cmd/regulator
//
//	# Run
//	./regulator
//
//	# Or via container
//	podman-compose up regulator
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/AtlasRegAI/AtlasReg/services/regulator"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Build configuration from environment variables
	cfg := regulator.Config{
		Port:           getEnvInt("REGULATOR_PORT", 8000),
		LLMBackend:     getEnvString("LLM_BACKEND_TYPE", "xai"),
		WeaviateURL:    os.Getenv("WEAVIATE_SERVICE_URL"),
		OTelEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "atlasreg-otel-collector:4317"),
		RewriteEnabled: getEnvBool("REWRITE_STAGE_ENABLED", true),
		StepDelay:      time.Duration(getEnvInt("STEP_DELAY_SECONDS", 10)) * time.Second,
		ResponseDelay:  time.Duration(getEnvInt("RESPONSE_DELAY_SECONDS", 15)) * time.Second,
	}

	slog.Info("Starting regulator",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"weaviate_url", cfg.WeaviateURL,
		"rewrite_enabled", cfg.RewriteEnabled,
	)

	svc, err := regulator.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create regulator: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Regulator error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
