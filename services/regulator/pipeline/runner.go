// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("atlasreg.regulator.pipeline")

// ReasoningUnavailable is the sentinel shown when a capability exposes no
// reasoning transcript. It is user-facing and therefore French.
const ReasoningUnavailable = "Raisonnement non disponible"

// Result is the outcome of a pipeline run. A failed run never carries
// partial content: Completed is false, Content and Reasoning are empty and
// Err holds the cause.
type Result struct {
	Content   string
	Reasoning string
	Completed bool
	Err       error
}

// Runner executes single or chained capability runs.
type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// RunSingle executes one capability and normalizes its output.
func (r *Runner) RunSingle(ctx context.Context, cap Capability, input string) Result {
	ctx, span := tracer.Start(ctx, "Runner.RunSingle")
	defer span.End()
	span.SetAttributes(attribute.String("pipeline.capability", cap.Name()))

	out, err := cap.Run(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{Err: fmt.Errorf("%s failed: %w", cap.Name(), err)}
	}

	reasoning := out.ReasoningContent
	if reasoning == "" {
		reasoning = ReasoningUnavailable
	}
	return Result{
		Content:   out.Content,
		Reasoning: reasoning,
		Completed: true,
	}
}

// RunChained executes first, feeds its answer into a rewrite prompt for
// second, and merges both reasoning transcripts. A failure of either stage
// short-circuits: the second stage is never invoked after a first-stage
// failure, and no partial content is returned.
func (r *Runner) RunChained(ctx context.Context, first, second Capability, input string) Result {
	ctx, span := tracer.Start(ctx, "Runner.RunChained")
	defer span.End()
	span.SetAttributes(
		attribute.String("pipeline.first", first.Name()),
		attribute.String("pipeline.second", second.Name()),
	)

	analysis, err := first.Run(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{Err: fmt.Errorf("%s failed: %w", first.Name(), err)}
	}

	rewritten, err := second.Run(ctx, buildRewritePrompt(input, analysis.Content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{Err: fmt.Errorf("%s failed: %w", second.Name(), err)}
	}

	return Result{
		Content:   rewritten.Content,
		Reasoning: mergeReasoning(analysis.ReasoningContent, rewritten.ReasoningContent),
		Completed: true,
	}
}

// buildRewritePrompt embeds the original question and the specialist
// analysis verbatim. The rewrite directives repeat the hard constraints of
// the second stage: rewrite only, keep citations intact, add nothing.
func buildRewritePrompt(question, analysis string) string {
	return fmt.Sprintf(`Question du client :
%s

Analyse réglementaire fournie par l'équipe ACAPS & AMMC :
%s

Réécrivez cette analyse en langage métier pour un Senior Trade Manager de banque marocaine.
Règles impératives :
- Ne répondez pas à la question vous-même : réécrivez uniquement l'analyse fournie.
- N'introduisez aucune nouvelle affirmation réglementaire.
- Conservez exactement les références réglementaires au format :
  - **Document :** [Nom exact du document]
  - **Article :** [Numéro d'article/paragraphe]
  - **Extrait cité :** "[Texte exact entre guillemets]"
  - **Date :** [Date de publication]`, question, analysis)
}

func mergeReasoning(first, second string) string {
	if first == "" {
		first = ReasoningUnavailable
	}
	if second == "" {
		second = ReasoningUnavailable
	}
	return fmt.Sprintf("Analyse réglementaire :\n%s\n\nRéécriture métier :\n%s", first, second)
}
