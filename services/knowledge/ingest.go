// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

var (
	chunkSize    = 1000
	chunkOverlap = chunkSize / 10 // 10% of the chunk size

	// Regulatory documents arrive as markdown extracted from official PDFs,
	// so split on markdown structure before falling back to whitespace.
	separators = []string{
		"\n# ", "\n## ", "\n### ", "\n#### ",
		"\n\n", "\n", " ", "",
	}
)

// IngestRequest is a document to add to the regulatory corpus.
type IngestRequest struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Domain  string `json:"domain"`
}

// RunIngestion splits the document into chunks and batch-imports them into
// Weaviate. It returns the number of chunks successfully stored.
func RunIngestion(ctx context.Context, client *weaviate.Client, req IngestRequest) (int, error) {
	slog.Info("Ingestion request received", "source", req.Source, "domain", req.Domain)

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(separators),
	)

	chunks, err := splitter.SplitText(req.Content)
	if err != nil {
		slog.Error("Failed to split text", "source", req.Source, "error", err)
		return 0, fmt.Errorf("failed to split content: %w", err)
	}
	if len(chunks) == 0 {
		slog.Warn("No chunks produced after splitting", "source", req.Source)
		return 0, nil
	}
	slog.Info("Split document into chunks", "source", req.Source, "chunk_count", len(chunks))

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		objects[i] = &models.Object{
			Class: ChunkClass,
			ID:    strfmt.UUID(chunkID(req.Source, chunk)),
			Properties: map[string]interface{}{
				"chunk":       chunk,
				"source":      req.Source,
				"domain":      req.Domain,
				"chunk_index": i,
				"ingested_at": time.Now().UnixMilli(),
			},
		}
	}

	resp, err := client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		slog.Error("Failed to perform batch import to Weaviate", "error", err)
		return 0, fmt.Errorf("failed to save objects to Weaviate: %w", err)
	}

	chunksCreated := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			chunksCreated++
			continue
		}
		if item.Result != nil && item.Result.Errors != nil {
			for _, errItem := range item.Result.Errors.Error {
				slog.Warn("Error in Weaviate batch item", "source", req.Source, "error", errItem.Message)
			}
		}
	}

	slog.Info("Successfully processed document", "source", req.Source, "chunks_processed", chunksCreated)
	return chunksCreated, nil
}

// chunkID derives a deterministic uuid from the source and chunk text so
// re-ingesting the same document upserts instead of duplicating.
func chunkID(source, chunk string) string {
	hash := sha256.Sum256([]byte(source + "\x00" + chunk))
	id, _ := uuid.FromBytes(hash[:16])
	return id.String()
}
