// Package stream implements the interactive streaming controller behind the
// chat websocket.
//
// The controller is transport-agnostic: it consumes one raw client payload
// and emits ordered events into a Sink. The websocket handler owns the
// connection loop; the controller owns the per-message state machine:
//
//	reasoning_start -> reasoning_step* -> (response | error)
//
// Pacing between events is deliberate. The frontend renders each reasoning
// step as a terminal line the user is expected to read, so the controller
// sleeps between steps and before the final answer. The delays are
// configurable and context-cancellable so tests and shutdown never wait.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AtlasRegAI/AtlasReg/services/regulator/observability"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/reasoning"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/render"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/session"
)

// Sink receives ordered events for one connection. Send errors mean the
// transport is gone and terminate the connection loop.
type Sink interface {
	Send(v any) error
}

// Event payloads. Field names are the frontend's wire contract.

type startEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type stepEvent struct {
	Type       string `json:"type"`
	Step       string `json:"step"`
	StepNumber int    `json:"step_number,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type responseEvent struct {
	Type      string `json:"type"`
	Response  string `json:"response"`
	Reasoning string `json:"reasoning"`
	TeamUsed  string `json:"team_used"`
	Timestamp string `json:"timestamp"`
}

type errorEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type inboundMessage struct {
	Message string `json:"message"`
	Team    string `json:"team"`
}

// fallbackSteps are streamed when a capability exposes no reasoning
// transcript, so the terminal animation still tells a coherent story.
var fallbackSteps = []string{
	"Analyse de la question utilisateur",
	"Recherche d'informations pertinentes",
	"Formulation de la réponse",
	"Vérification de la cohérence",
}

var teamNames = map[string]string{
	"global": "Équipe Global",
	"acaps":  "Équipe ACAPS",
	"ammc":   "Équipe AMMC",
}

// Config carries the pacing knobs.
type Config struct {
	// StepDelay is the pause after each streamed reasoning step.
	// Default: 10s.
	StepDelay time.Duration

	// ResponseDelay is the pause before the final response event.
	// Default: 15s.
	ResponseDelay time.Duration
}

// Controller drives the reasoning-then-answer streaming flow.
type Controller struct {
	dispatcher *pipeline.Dispatcher
	store      *session.Store
	cfg        Config
}

func NewController(dispatcher *pipeline.Dispatcher, store *session.Store, cfg Config) *Controller {
	if cfg.StepDelay == 0 {
		cfg.StepDelay = 10 * time.Second
	}
	if cfg.ResponseDelay == 0 {
		cfg.ResponseDelay = 15 * time.Second
	}
	return &Controller{dispatcher: dispatcher, store: store, cfg: cfg}
}

// HandleMessage processes one client payload end to end. It returns a
// non-nil error only when the transport is gone (sink failure or cancelled
// context); protocol-level problems are reported to the client as error
// events and keep the connection open.
func (c *Controller) HandleMessage(ctx context.Context, sessionID string, raw []byte, sink Sink) error {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("Malformed websocket payload", "sessionID", sessionID, "error", err)
		return sink.Send(errorEvent{
			Type:      "error",
			Message:   "Format de message invalide",
			Timestamp: now(),
		})
	}

	team := msg.Team
	if team == "" {
		team = "global"
	}

	teamName, ok := teamNames[team]
	if !ok {
		teamName = "Équipe"
	}
	if err := sink.Send(startEvent{
		Type:      "reasoning_start",
		Message:   "L'" + teamName + " commence l'analyse de votre demande...",
		Timestamp: now(),
	}); err != nil {
		return err
	}

	started := time.Now()
	result := c.dispatcher.Dispatch(ctx, team, msg.Message)
	c.recordPipeline(time.Since(started), result.Completed)

	if result.Err != nil {
		return c.sendFailure(sessionID, team, result.Err, sink)
	}

	reasoningContent, err := c.streamReasoning(ctx, result.Reasoning, sink)
	if err != nil {
		return err
	}

	if err := sleepCtx(ctx, c.cfg.ResponseDelay); err != nil {
		return err
	}

	cleanedResponse := render.Clean(result.Content)
	cleanedReasoning := pipeline.ReasoningUnavailable
	if reasoningContent != "" {
		cleanedReasoning = render.Clean(reasoningContent)
	}

	// The final event carries no reasoning: the steps were already
	// streamed and duplicating them would replay the terminal animation.
	if err := sink.Send(responseEvent{
		Type:      "response",
		Response:  cleanedResponse,
		Reasoning: "",
		TeamUsed:  team,
		Timestamp: now(),
	}); err != nil {
		return err
	}

	c.store.Record(sessionID, msg.Message, cleanedResponse, cleanedReasoning, team)
	if m := observability.DefaultMetrics; m != nil {
		m.RecordRequest(observability.EndpointWebsocket, true)
	}
	return nil
}

// streamReasoning emits the step events and returns the reasoning content
// to record in the session.
func (c *Controller) streamReasoning(ctx context.Context, rawReasoning string, sink Sink) (string, error) {
	if rawReasoning == pipeline.ReasoningUnavailable {
		// No transcript: stream the generic steps and record them as the
		// session's reasoning.
		if err := c.sendSteps(ctx, fallbackSteps, sink); err != nil {
			return "", err
		}
		if m := observability.DefaultMetrics; m != nil {
			m.RecordSteps("fallback", len(fallbackSteps))
		}
		var joined strings.Builder
		for i, step := range fallbackSteps {
			if i > 0 {
				joined.WriteString("\n\n")
			}
			fmt.Fprintf(&joined, "Étape %d: %s", i+1, step)
		}
		return joined.String(), nil
	}

	steps := reasoning.Extract(rawReasoning)
	if len(steps) == 0 {
		// A transcript with no recognizable steps is sent as one truncated
		// step so the user still sees something before the answer.
		if err := sink.Send(stepEvent{
			Type:      "reasoning_step",
			Step:      "Raisonnement: " + truncate(rawReasoning, 500),
			Timestamp: now(),
		}); err != nil {
			return "", err
		}
		return rawReasoning, nil
	}

	if err := c.sendSteps(ctx, steps, sink); err != nil {
		return "", err
	}
	if m := observability.DefaultMetrics; m != nil {
		m.RecordSteps("extracted", len(steps))
	}
	return rawReasoning, nil
}

func (c *Controller) sendSteps(ctx context.Context, steps []string, sink Sink) error {
	for i, step := range steps {
		if err := sink.Send(stepEvent{
			Type:       "reasoning_step",
			Step:       step,
			StepNumber: i + 1,
			TotalSteps: len(steps),
			Timestamp:  now(),
		}); err != nil {
			return err
		}
		if err := sleepCtx(ctx, c.cfg.StepDelay); err != nil {
			return err
		}
	}
	return nil
}

// sendFailure reports a pipeline failure to the client. No session update
// happens on failure.
func (c *Controller) sendFailure(sessionID, team string, cause error, sink Sink) error {
	message := "Erreur: " + cause.Error()
	code := observability.ErrorCodeLLMError
	if errors.Is(cause, pipeline.ErrUnavailable) {
		message = "Agent non disponible"
		code = observability.ErrorCodeUnavailable
	}
	slog.Error("Pipeline run failed", "sessionID", sessionID, "team", team, "error", cause)
	if m := observability.DefaultMetrics; m != nil {
		m.RecordError(observability.EndpointWebsocket, code)
		m.RecordRequest(observability.EndpointWebsocket, false)
	}
	return sink.Send(errorEvent{
		Type:      "error",
		Message:   message,
		Timestamp: now(),
	})
}

func (c *Controller) recordPipeline(elapsed time.Duration, success bool) {
	m := observability.DefaultMetrics
	if m == nil {
		return
	}
	mode := "single"
	if c.dispatcher.RewriteEnabled {
		mode = "chained"
	}
	m.RecordPipeline(mode, elapsed.Seconds(), success)
}

// sleepCtx pauses for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
