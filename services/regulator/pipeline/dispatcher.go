// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import "context"

// Dispatcher routes a team selector to a pipeline run. It is the single
// entry point shared by the synchronous chat handler and the websocket
// streaming controller.
//
// When rewriting is enabled, every specialist run is chained into the
// Senior Trade Manager rewrite stage. Selecting the rewriter directly
// always runs it alone.
type Dispatcher struct {
	Registry       *Registry
	Runner         *Runner
	Rewriter       Capability
	RewriteEnabled bool
}

// RewriterSelector is the team selector addressing the rewrite stage
// directly.
const RewriterSelector = "senior_trade_manager"

// Dispatch resolves team and executes the appropriate run.
func (d *Dispatcher) Dispatch(ctx context.Context, team, input string) Result {
	cap := d.Registry.Resolve(team)

	if d.RewriteEnabled && d.Rewriter != nil && team != RewriterSelector {
		return d.Runner.RunChained(ctx, cap, d.Rewriter, input)
	}
	return d.Runner.RunSingle(ctx, cap, input)
}
