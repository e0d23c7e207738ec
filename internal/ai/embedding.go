package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type embedRequest struct {
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for the given text. The vector length
// is fixed by the embedding model; every segment in the corpus must carry
// the same length or ranking becomes meaningless.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	raw, err := c.post(ctx, c.cfg.EmbeddingModel, "embedContent", embedRequest{
		Content: content{Parts: []part{{Text: text}}},
	})
	if err != nil {
		return nil, err
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrUnavailable)
	}
	return parsed.Embedding.Values, nil
}
