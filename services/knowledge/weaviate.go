// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// ChunkClass is the Weaviate class holding regulatory document chunks.
const ChunkClass = "RegulationChunk"

// GetRegulationChunkSchema returns the class definition for the regulatory
// corpus. The class carries no vectors: retrieval is keyword (BM25) based,
// which works well on citation-heavy legal text.
func GetRegulationChunkSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ChunkClass,
		Description: "A chunk of an official ACAPS or AMMC regulatory document.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "chunk",
				DataType:     []string{"text"},
				Description:  "The chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "The source document name.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "domain",
				DataType:        []string{"text"},
				Description:     "The authority domain: acaps or ammc.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "chunk_index",
				DataType:    []string{"int"},
				Description: "Position of the chunk within its source document.",
			},
			{
				Name:        "ingested_at",
				DataType:    []string{"int"},
				Description: "Ingestion time in unix milliseconds.",
			},
		},
	}
}

// EnsureSchema creates the RegulationChunk class if it does not exist yet.
func EnsureSchema(client *weaviate.Client) error {
	class := GetRegulationChunkSchema()
	slog.Info("Checking schema", "class", class.Class)

	_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
	if err == nil {
		slog.Info("Schema already exists", "class", class.Class)
		return nil
	}

	slog.Info("Schema not found, creating it...", "class", class.Class)
	if err := client.Schema().ClassCreator().WithClass(class).Do(context.Background()); err != nil {
		return fmt.Errorf("failed to create schema for class %s: %w", class.Class, err)
	}
	slog.Info("Successfully created schema", "class", class.Class)
	return nil
}

// WeaviateRetriever implements Retriever with a BM25 query against the
// RegulationChunk class.
type WeaviateRetriever struct {
	client *weaviate.Client
}

func NewWeaviateRetriever(client *weaviate.Client) *WeaviateRetriever {
	return &WeaviateRetriever{client: client}
}

func (r *WeaviateRetriever) Search(ctx context.Context, domain, query string, limit int) ([]Passage, error) {
	if limit <= 0 {
		limit = 4
	}

	fields := []graphql.Field{
		{Name: "chunk"},
		{Name: "source"},
		{Name: "chunk_index"},
	}
	bm25 := r.client.GraphQL().Bm25ArgBuilder().
		WithQuery(query).
		WithProperties("chunk")

	builder := r.client.GraphQL().Get().
		WithClassName(ChunkClass).
		WithFields(fields...).
		WithBM25(bm25).
		WithLimit(limit)

	if domain != "" {
		builder = builder.WithWhere(filters.Where().
			WithPath([]string{"domain"}).
			WithOperator(filters.Equal).
			WithValueString(domain))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		slog.Error("failed to query Weaviate for regulation chunks", "domain", domain, "error", err)
		return nil, fmt.Errorf("failed to query regulation chunks: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query error: %s", result.Errors[0].Message)
	}

	return parsePassages(result.Data), nil
}

// parsePassages walks the nested GraphQL response shape
// {Get: {RegulationChunk: [{chunk, source, chunk_index}]}}.
func parsePassages(data map[string]models.JSONObject) []Passage {
	var passages []Passage

	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return passages
	}
	items, ok := get[ChunkClass].([]interface{})
	if !ok {
		return passages
	}
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		p := Passage{}
		if chunk, ok := obj["chunk"].(string); ok {
			p.Excerpt = chunk
		}
		if source, ok := obj["source"].(string); ok {
			p.Source = source
		}
		if idx, ok := obj["chunk_index"].(float64); ok {
			p.ChunkIndex = int(idx)
		}
		if p.Excerpt != "" {
			passages = append(passages, p)
		}
	}
	return passages
}
