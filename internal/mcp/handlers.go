package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/faq-semantic-index/internal/storage"
)

const maxSampleSize = 20

// makeEmbedHandler creates the embed_texts tool handler.
func makeEmbedHandler(embedder Embedder) func(
	context.Context, *mcp.CallToolRequest, EmbedTextsInput,
) (*mcp.CallToolResult, EmbedTextsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EmbedTextsInput) (
		*mcp.CallToolResult, EmbedTextsOutput, error,
	) {
		vectors, err := embedder.EmbedQueries(ctx, input.Texts)
		if err != nil {
			return nil, EmbedTextsOutput{}, fmt.Errorf("failed to embed texts: %w", err)
		}

		return nil, EmbedTextsOutput{
			Model:     embedder.Model(),
			Dimension: len(vectors[0]),
			Vectors:   vectors,
		}, nil
	}
}

// makeCollectionInfoHandler creates the collection_info tool handler.
// A missing collection is reported as Found=false rather than an error.
func makeCollectionInfoHandler(store CollectionReader, defaultCollection string) func(
	context.Context, *mcp.CallToolRequest, CollectionInfoInput,
) (*mcp.CallToolResult, CollectionInfoOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CollectionInfoInput) (
		*mcp.CallToolResult, CollectionInfoOutput, error,
	) {
		name := input.Collection
		if name == "" {
			name = defaultCollection
		}

		info, err := store.GetCollectionInfo(ctx, name)
		if err != nil {
			if errors.Is(err, storage.ErrCollectionNotFound) {
				return nil, CollectionInfoOutput{Name: name, Found: false}, nil
			}
			return nil, CollectionInfoOutput{}, fmt.Errorf("qdrant_error: failed to get collection info: %w", err)
		}

		output := CollectionInfoOutput{
			Name:        info.Name,
			Found:       true,
			Status:      info.Status,
			PointsCount: info.PointsCount,
			Dimension:   info.Dimension,
			Distance:    info.Distance,
		}

		sampleSize := min(input.SampleSize, maxSampleSize)
		if sampleSize > 0 {
			points, err := store.Scroll(ctx, name, sampleSize)
			if err != nil {
				return nil, CollectionInfoOutput{}, fmt.Errorf("qdrant_error: failed to scroll collection: %w", err)
			}
			output.Samples = make([]SamplePoint, len(points))
			for i, p := range points {
				output.Samples[i] = SamplePoint{
					ID:       p.ID,
					Category: p.Payload.Category,
					Question: p.Payload.Question,
					Answer:   p.Payload.Answer,
				}
			}
		}

		return nil, output, nil
	}
}
