// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AtlasRegAI/AtlasReg/services/llm"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
)

// Team is the global coordinator: it fans the question out to all member
// specialists concurrently, tolerates individual member failures, and
// synthesizes the surviving answers into one coordinated response.
type Team struct {
	name    string
	members []pipeline.Capability
	client  llm.LLMClient
}

// NewGlobalTeam builds the coordinator over the given specialists.
func NewGlobalTeam(client llm.LLMClient, members ...pipeline.Capability) *Team {
	return &Team{
		name:    "Coordinateur Global",
		members: members,
		client:  client,
	}
}

func (t *Team) Name() string { return t.name }

// Run implements pipeline.Capability.
func (t *Team) Run(ctx context.Context, input string) (*pipeline.Output, error) {
	type memberResult struct {
		name   string
		output *pipeline.Output
	}

	var mu sync.Mutex
	results := make([]memberResult, 0, len(t.members))

	g, gctx := errgroup.WithContext(ctx)
	for _, member := range t.members {
		g.Go(func() error {
			out, err := member.Run(gctx, input)
			if err != nil {
				// One unavailable specialist must not sink a transversal
				// question; the coordinator works with what answered.
				slog.Warn("Team member failed", "member", member.Name(), "error", err)
				return nil
			}
			mu.Lock()
			results = append(results, memberResult{name: member.Name(), output: out})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: no team member produced an answer", t.name)
	}

	var prompt strings.Builder
	prompt.WriteString("Question :\n")
	prompt.WriteString(input)
	prompt.WriteString("\n\nRéponses des spécialistes :\n")
	for _, r := range results {
		fmt.Fprintf(&prompt, "\n--- %s ---\n%s\n", r.name, r.output.Content)
	}

	completion, err := t.client.Generate(ctx, prompt.String(), llm.GenerationParams{
		System: coordinatorInstructions + reasoningDirective,
	})
	if err != nil {
		return nil, fmt.Errorf("%s synthesis failed: %w", t.name, err)
	}

	synthesisReasoning, content := splitReasoning(completion)

	var reasoning strings.Builder
	for _, r := range results {
		if r.output.ReasoningContent == "" {
			continue
		}
		fmt.Fprintf(&reasoning, "%s :\n%s\n\n", r.name, r.output.ReasoningContent)
	}
	reasoning.WriteString(synthesisReasoning)

	return &pipeline.Output{
		Content:          content,
		ReasoningContent: strings.TrimSpace(reasoning.String()),
	}, nil
}
