// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agents implements the expert capabilities of the regulator
// service: one specialist per authority (ACAPS, AMMC), a global coordinator
// fanning out to both, and the Senior Trade Manager rewrite stage.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AtlasRegAI/AtlasReg/services/knowledge"
	"github.com/AtlasRegAI/AtlasReg/services/llm"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
)

const passageLimit = 4

var responseDelimiter = regexp.MustCompile(`(?i)===\s*R[ÉE]PONSE\s*===`)

// Specialist answers questions about one authority domain, grounding its
// answers in passages retrieved from the regulatory corpus.
type Specialist struct {
	name         string
	domain       string
	instructions string
	client       llm.LLMClient
	retriever    knowledge.Retriever
}

// NewACAPSSpecialist builds the insurance and social welfare expert.
func NewACAPSSpecialist(client llm.LLMClient, retriever knowledge.Retriever) *Specialist {
	return &Specialist{
		name:         "ACAPS Spécialiste",
		domain:       "acaps",
		instructions: acapsInstructions,
		client:       client,
		retriever:    retriever,
	}
}

// NewAMMCSpecialist builds the capital markets expert.
func NewAMMCSpecialist(client llm.LLMClient, retriever knowledge.Retriever) *Specialist {
	return &Specialist{
		name:         "AMMC Spécialiste",
		domain:       "ammc",
		instructions: ammcInstructions,
		client:       client,
		retriever:    retriever,
	}
}

func (s *Specialist) Name() string { return s.name }

// Run implements pipeline.Capability.
func (s *Specialist) Run(ctx context.Context, input string) (*pipeline.Output, error) {
	prompt := input
	passages, err := s.retriever.Search(ctx, s.domain, input, passageLimit)
	if err != nil {
		// Retrieval failure degrades to an ungrounded answer rather than
		// failing the whole turn.
		slog.Warn("Knowledge retrieval failed, answering without excerpts",
			"agent", s.name, "error", err)
	}
	if len(passages) > 0 {
		prompt = buildGroundedPrompt(input, passages)
	}

	completion, err := s.client.Generate(ctx, prompt, llm.GenerationParams{
		System: s.instructions + reasoningDirective,
	})
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", s.name, err)
	}

	reasoning, content := splitReasoning(completion)
	return &pipeline.Output{Content: content, ReasoningContent: reasoning}, nil
}

func buildGroundedPrompt(question string, passages []knowledge.Passage) string {
	var b strings.Builder
	b.WriteString("Extraits réglementaires pertinents :\n")
	for _, p := range passages {
		fmt.Fprintf(&b, "- [%s] %s\n", p.Source, p.Excerpt)
	}
	b.WriteString("\nQuestion :\n")
	b.WriteString(question)
	return b.String()
}

// splitReasoning separates the reasoning transcript from the answer on the
// "=== RÉPONSE ===" delimiter. Without a delimiter the whole completion is
// the answer and the reasoning is empty.
func splitReasoning(completion string) (reasoning, content string) {
	loc := responseDelimiter.FindStringIndex(completion)
	if loc == nil {
		return "", strings.TrimSpace(completion)
	}
	return strings.TrimSpace(completion[:loc[0]]), strings.TrimSpace(completion[loc[1]:])
}
