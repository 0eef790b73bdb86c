package genai

import (
	"context"
	"fmt"
)

type countTokensRequest struct {
	Contents []embedContent `json:"contents"`
}

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// CountTokens counts model tokens for the given text via the countTokens
// endpoint. Callers that can tolerate an estimate should fall back to
// EstimateTokens when this returns an error.
func (c *Client) CountTokens(ctx context.Context, text string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	req := countTokensRequest{
		Contents: []embedContent{{Parts: []embedPart{{Text: text}}}},
	}

	var out countTokensResponse
	err := c.withRetries(ctx, func() error {
		return c.doJSON(ctx, fmt.Sprintf("%s/v1beta/models/%s:countTokens", c.config.BaseURL, c.config.Model), req, &out)
	})
	if err != nil {
		return 0, fmt.Errorf("counting tokens: %w", err)
	}

	return out.TotalTokens, nil
}
