// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reasoning extracts displayable reasoning steps from raw agent
// transcripts.
//
// Agent output is not guaranteed to follow a single format, so extraction
// runs an ordered chain of strategies and keeps the first non-empty result:
//
//  1. Explicitly labeled "Reasoning step N: Title: body" blocks
//  2. Action / Reasoning / Confidence field triples zipped by position
//  3. Paragraphs of meaningful length (capped at 6)
//
// Extract is total: any input, including empty, yields a valid (possibly
// empty) slice and never an error.
package reasoning

import (
	"fmt"
	"regexp"
	"strings"
)

const maxParagraphSteps = 6

// minParagraphLen is the threshold below which a paragraph is considered
// noise rather than a reasoning step.
const minParagraphLen = 50

var (
	stepMarker  = regexp.MustCompile(`(?is)reasoning step \d+:\s*([^:]+):`)
	fieldMarker = regexp.MustCompile(`(?i)\b(action|reasoning|confidence)\s*:`)
)

// strategies are tried in priority order; the first one producing at least
// one step wins.
var strategies = []func(string) []string{
	labeledSteps,
	fieldTriples,
	longParagraphs,
}

// Extract returns ordered, renumbered reasoning steps found in raw.
func Extract(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	for _, strategy := range strategies {
		if steps := strategy(raw); len(steps) > 0 {
			return steps
		}
	}
	return []string{}
}

// labeledSteps finds "Reasoning step N: Title:" markers and slices the text
// between consecutive markers as step bodies. Steps are renumbered from 1
// regardless of the numbers in the source, so duplicated or out-of-order
// numbering upstream cannot leak to the client.
func labeledSteps(raw string) []string {
	locs := stepMarker.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	steps := make([]string, 0, len(locs))
	for i, loc := range locs {
		title := strings.TrimSpace(raw[loc[2]:loc[3]])
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		if body == "" {
			continue
		}
		steps = append(steps, fmt.Sprintf("Reasoning step %d: %s\n\n%s", len(steps)+1, title, body))
	}
	return steps
}

// fieldTriples collects Action:/Reasoning:/Confidence: fields in document
// order and zips them by position into composite steps. Fields missing from
// a position are simply omitted from that step.
func fieldTriples(raw string) []string {
	locs := fieldMarker.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	var actions, reasonings, confidences []string
	for i, loc := range locs {
		label := strings.ToLower(raw[loc[2]:loc[3]])
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(raw[loc[1]:end])
		switch label {
		case "action":
			actions = append(actions, value)
		case "reasoning":
			reasonings = append(reasonings, value)
		case "confidence":
			confidences = append(confidences, value)
		}
	}

	max := len(actions)
	if len(reasonings) > max {
		max = len(reasonings)
	}
	if len(confidences) > max {
		max = len(confidences)
	}

	steps := make([]string, 0, max)
	for i := 0; i < max; i++ {
		var parts []string
		if i < len(actions) {
			parts = append(parts, "Action: "+actions[i])
		}
		if i < len(reasonings) {
			parts = append(parts, "Reasoning: "+reasonings[i])
		}
		if i < len(confidences) {
			parts = append(parts, "Confidence: "+confidences[i])
		}
		if len(parts) > 0 {
			steps = append(steps, strings.Join(parts, "\n"))
		}
	}
	return steps
}

// longParagraphs is the last-resort strategy: blank-line separated
// paragraphs long enough to carry meaning, capped at maxParagraphSteps.
func longParagraphs(raw string) []string {
	var steps []string
	for _, p := range strings.Split(raw, "\n\n") {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || len(p) <= minParagraphLen {
			continue
		}
		steps = append(steps, trimmed)
		if len(steps) == maxParagraphSteps {
			break
		}
	}
	return steps
}
