package generative

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// NewGeminiModel creates a Gemini client and returns the model handle together
// with the client so the caller can Close it on shutdown.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*genai.GenerativeModel, *genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	return client.GenerativeModel(model), client, nil
}
