package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	visionapi "google.golang.org/api/vision/v1"
)

// ErrAnalysisUnavailable is returned when the vision service gives back no result.
var ErrAnalysisUnavailable = errors.New("vision AI analysis failed")

// Features requested in the single annotate call.
var Features = []string{
	"LABEL_DETECTION",
	"OBJECT_LOCALIZATION",
	"IMAGE_PROPERTIES",
	"TEXT_DETECTION",
	"WEB_DETECTION",
}

// Annotator runs one annotate request for an image URL. A nil response with
// a nil error means the service had no result for the image.
type Annotator interface {
	Annotate(ctx context.Context, imageURL string, features []string) (*visionapi.AnnotateImageResponse, error)
}

// Adapter turns annotate responses into ImageAnalysis values.
type Adapter struct {
	annotator Annotator
}

// NewAdapter returns an Adapter using the given annotator.
func NewAdapter(annotator Annotator) *Adapter {
	return &Adapter{annotator: annotator}
}

// Analyze annotates imageURL and normalizes the result.
func (a *Adapter) Analyze(ctx context.Context, imageURL string) (ImageAnalysis, error) {
	logger := zerolog.Ctx(ctx)

	res, err := a.annotator.Annotate(ctx, imageURL, Features)
	if err != nil {
		logger.Error().Err(err).Str("image_url", imageURL).Msg("vision annotate failed")
		return ImageAnalysis{}, err
	}
	if res == nil {
		logger.Error().Str("image_url", imageURL).Msg("vision returned no result")
		return ImageAnalysis{}, ErrAnalysisUnavailable
	}
	if res.Error != nil && res.Error.Code != 0 {
		return ImageAnalysis{}, fmt.Errorf("vision annotate %s: %s", imageURL, res.Error.Message)
	}

	analysis := Normalize(res)
	logger.Info().
		Str("labels", analysis.Labels).
		Int("colors", len(analysis.Colors)).
		Msg("vision analysis completed")
	return analysis, nil
}
