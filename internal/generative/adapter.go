package generative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-describer/internal/vision"
)

// ErrGenerationUnavailable is returned when the model answers with no usable response.
var ErrGenerationUnavailable = errors.New("generative AI response is null or undefined")

// ContentGenerator is satisfied by *genai.GenerativeModel.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Adapter generates product descriptions from image analyses.
type Adapter struct {
	model ContentGenerator
}

// NewAdapter returns an Adapter calling model.
func NewAdapter(model ContentGenerator) *Adapter {
	return &Adapter{model: model}
}

// Generate builds the prompt for analysis and returns the model text as is.
func (a *Adapter) Generate(ctx context.Context, analysis vision.ImageAnalysis) (string, error) {
	logger := zerolog.Ctx(ctx)

	prompt, err := BuildPrompt(analysis)
	if err != nil {
		return "", err
	}

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Error().Err(err).Msg("description generation failed")
		return "", err
	}
	if resp == nil {
		return "", ErrGenerationUnavailable
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	logger.Info().Int("length", len(text)).Msg("description generated")
	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrGenerationUnavailable, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrGenerationUnavailable)
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return "", fmt.Errorf("%w: empty candidate", ErrGenerationUnavailable)
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
