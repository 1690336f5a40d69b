// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline orchestrates expert capability runs.
//
// A Capability is a black box: it takes a question and returns displayable
// content plus an optional raw reasoning transcript. The pipeline never
// inspects how a capability produces its output, it only sequences runs,
// merges reasoning and converts failures into typed results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnavailable is returned by capabilities that were registered as
// placeholders for agents that failed to initialize.
var ErrUnavailable = errors.New("capability not available")

// Output is what a capability produces for one question.
type Output struct {
	// Content is the displayable answer.
	Content string

	// ReasoningContent is the raw reasoning transcript, empty when the
	// capability exposes none.
	ReasoningContent string
}

// Capability is the contract every expert agent implements.
type Capability interface {
	Name() string
	Run(ctx context.Context, input string) (*Output, error)
}

// Unavailable stands in for a capability that could not be initialized.
// Run fails with ErrUnavailable without invoking anything, so missing
// agents are detected before any model call.
type Unavailable struct {
	name string
}

func NewUnavailable(name string) *Unavailable {
	return &Unavailable{name: name}
}

func (u *Unavailable) Name() string { return u.name }

func (u *Unavailable) Run(ctx context.Context, input string) (*Output, error) {
	return nil, fmt.Errorf("%s: %w", u.name, ErrUnavailable)
}

// Status describes one registered capability for the diagnostics endpoint.
type Status struct {
	Initialized bool   `json:"initialized"`
	Type        string `json:"type"`
}

// Registry maps team selectors to capabilities. Resolution is total:
// unknown selectors fall back to the global coordinator, and a missing
// fallback resolves to an Unavailable placeholder.
type Registry struct {
	caps     map[string]Capability
	fallback string
}

func NewRegistry() *Registry {
	return &Registry{
		caps:     make(map[string]Capability),
		fallback: "global",
	}
}

func (r *Registry) Register(selector string, cap Capability) {
	r.caps[selector] = cap
}

// Resolve returns the capability for selector, never nil.
func (r *Registry) Resolve(selector string) Capability {
	if cap, ok := r.caps[selector]; ok {
		return cap
	}
	if cap, ok := r.caps[r.fallback]; ok {
		return cap
	}
	return NewUnavailable(selector)
}

// Selectors lists the registered team selectors in stable order.
func (r *Registry) Selectors() []string {
	out := make([]string, 0, len(r.caps))
	for selector := range r.caps {
		out = append(out, selector)
	}
	sort.Strings(out)
	return out
}

// StatusReport returns the initialization state of every registered
// capability, keyed by selector.
func (r *Registry) StatusReport() map[string]Status {
	report := make(map[string]Status, len(r.caps))
	for selector, cap := range r.caps {
		if _, placeholder := cap.(*Unavailable); placeholder {
			report[selector] = Status{Initialized: false, Type: "None"}
			continue
		}
		report[selector] = Status{Initialized: true, Type: fmt.Sprintf("%T", cap)}
	}
	return report
}
