// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package knowledge gives the expert agents access to the ingested
// regulatory corpus (ACAPS and AMMC circulars, decrees, laws).
package knowledge

import "context"

// Passage is one retrieved excerpt of a regulatory document.
type Passage struct {
	Source     string `json:"source"`
	Excerpt    string `json:"excerpt"`
	ChunkIndex int    `json:"chunk_index"`
}

// Retriever searches the regulatory corpus of one authority domain
// ("acaps" or "ammc"; empty searches all domains).
type Retriever interface {
	Search(ctx context.Context, domain, query string, limit int) ([]Passage, error)
}

// NopRetriever is used in lightweight mode, when no knowledge base is
// configured. Agents then answer from model knowledge alone.
type NopRetriever struct{}

func (NopRetriever) Search(ctx context.Context, domain, query string, limit int) ([]Passage, error) {
	return nil, nil
}
