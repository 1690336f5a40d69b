// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package regulator provides the core conversational service for AtlasReg.
//
// This package contains the main service type that coordinates all
// components: HTTP routing, the expert agent pipeline, session state, the
// knowledge base, and observability infrastructure.
//
// # Usage
//
//	cfg := regulator.Config{Port: 8000, LLMBackend: "xai"}
//	svc, err := regulator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package regulator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AtlasRegAI/AtlasReg/services/agents"
	"github.com/AtlasRegAI/AtlasReg/services/knowledge"
	"github.com/AtlasRegAI/AtlasReg/services/llm"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/observability"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/routes"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/stream"
)

// Service defines the contract for the regulator service.
//
// Run() blocks and should only be called once per instance. Router()
// exposes the configured Gin engine for integration tests.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// Config holds regulator configuration options. All fields have defaults
// applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 8000
	Port int

	// LLMBackend specifies the LLM provider.
	// Valid values: "xai", "openai", "ollama"
	// Default: "xai"
	LLMBackend string

	// WeaviateURL is the Weaviate knowledge base URL.
	// If empty, retrieval is disabled and agents answer from model
	// knowledge alone.
	// Example: "http://localhost:8080"
	WeaviateURL string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "atlasreg-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics enables the Prometheus metrics endpoint.
	// Default: true
	EnableMetrics bool

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// RewriteEnabled chains every specialist answer into the Senior Trade
	// Manager business rewrite stage.
	RewriteEnabled bool

	// StepDelay is the pause between streamed reasoning steps.
	// Default: 10s
	StepDelay time.Duration

	// ResponseDelay is the pause before the final streamed answer.
	// Default: 15s
	ResponseDelay time.Duration
}

// service implements Service for production use.
//
// Thread-safe after construction: all fields are read-only after New()
// returns.
type service struct {
	config         Config
	router         *gin.Engine
	llmClient      llm.LLMClient
	weaviateClient *weaviate.Client
	store          *session.Store
	registry       *pipeline.Registry
	dispatcher     *pipeline.Dispatcher
	controller     *stream.Controller
	tracerCleanup  func(context.Context)
}

// New creates a regulator Service with the given configuration.
//
// Initialization order:
//  1. Apply default configuration for missing values
//  2. Initialize OpenTelemetry tracing
//  3. Initialize Prometheus metrics
//  4. Create the Weaviate client if a URL is provided
//  5. Create the LLM client for the configured backend
//  6. Build the expert agents and the capability registry
//  7. Set up HTTP routes
//
// Weaviate is optional: without it the service runs in lightweight mode.
// An agent that fails to initialize is registered as an unavailable
// placeholder rather than failing startup, so the remaining teams keep
// answering.
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	if err := s.initWeaviate(); err != nil {
		slog.Warn("Weaviate initialization failed, running in lightweight mode",
			"error", err)
		// Not fatal - continue without retrieval
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	s.initPipeline()
	s.initRouter()

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting regulator server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "xai"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "atlasreg-otel-collector:4317"
	}
	// EnableMetrics defaults to true (zero value is false, so we need explicit check)
	// We'll handle this by always enabling unless explicitly disabled via a setter
	cfg.EnableMetrics = true

	if cfg.StepDelay == 0 {
		cfg.StepDelay = 10 * time.Second
	}
	if cfg.ResponseDelay == 0 {
		cfg.ResponseDelay = 15 * time.Second
	}

	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// The gRPC connection is lazy: the collector does not have to be reachable
// at startup, spans are dropped until it is.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("regulator-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initWeaviate initializes the Weaviate knowledge base client. Returns nil
// without a client when no URL is configured.
func (s *service) initWeaviate() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not configured, running in lightweight mode")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	s.weaviateClient, err = weaviate.NewClient(clientConf)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	if err := knowledge.EnsureSchema(s.weaviateClient); err != nil {
		s.weaviateClient = nil
		return err
	}
	slog.Info("Weaviate client initialized", "url", weaviateURL)

	return nil
}

// initLLMClient initializes the LLM provider client.
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "xai":
		s.llmClient, err = llm.NewXAIClient()
		slog.Info("Using xAI (Grok) LLM backend")
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to xai", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewXAIClient()
	}

	return err
}

// initPipeline builds the expert agents, the capability registry and the
// surfaces over them (dispatcher, session store, streaming controller).
func (s *service) initPipeline() {
	var retriever knowledge.Retriever = knowledge.NopRetriever{}
	if s.weaviateClient != nil {
		retriever = knowledge.NewWeaviateRetriever(s.weaviateClient)
	}

	acaps := agents.NewACAPSSpecialist(s.llmClient, retriever)
	ammc := agents.NewAMMCSpecialist(s.llmClient, retriever)
	global := agents.NewGlobalTeam(s.llmClient, acaps, ammc)
	rewriter := agents.NewRewriter(s.llmClient)

	s.registry = pipeline.NewRegistry()
	s.registry.Register("acaps", acaps)
	s.registry.Register("ammc", ammc)
	s.registry.Register("global", global)
	s.registry.Register(pipeline.RewriterSelector, rewriter)

	s.store = session.NewStore()
	s.dispatcher = &pipeline.Dispatcher{
		Registry:       s.registry,
		Runner:         pipeline.NewRunner(),
		Rewriter:       rewriter,
		RewriteEnabled: s.config.RewriteEnabled,
	}
	s.controller = stream.NewController(s.dispatcher, s.store, stream.Config{
		StepDelay:     s.config.StepDelay,
		ResponseDelay: s.config.ResponseDelay,
	})
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("regulator-service"))

	routes.SetupRoutes(s.router, routes.Deps{
		Store:          s.store,
		Registry:       s.registry,
		Dispatcher:     s.dispatcher,
		Controller:     s.controller,
		WeaviateClient: s.weaviateClient,
		EnableMetrics:  s.config.EnableMetrics,
	})
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

var _ Service = (*service)(nil)
