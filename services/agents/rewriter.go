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

	"github.com/AtlasRegAI/AtlasReg/services/llm"
	"github.com/AtlasRegAI/AtlasReg/services/regulator/pipeline"
)

// Rewriter is the Senior Trade Manager persona. It carries no knowledge
// base of its own: its instructions forbid answering independently, it only
// rewrites analysis it is handed.
type Rewriter struct {
	name   string
	client llm.LLMClient
}

func NewRewriter(client llm.LLMClient) *Rewriter {
	return &Rewriter{
		name:   "Senior Trade Manager – Banque Marocaine",
		client: client,
	}
}

func (r *Rewriter) Name() string { return r.name }

// Run implements pipeline.Capability.
func (r *Rewriter) Run(ctx context.Context, input string) (*pipeline.Output, error) {
	completion, err := r.client.Generate(ctx, input, llm.GenerationParams{
		System: rewriterInstructions + reasoningDirective,
	})
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", r.name, err)
	}

	reasoning, content := splitReasoning(completion)
	return &pipeline.Output{Content: content, ReasoningContent: reasoning}, nil
}
