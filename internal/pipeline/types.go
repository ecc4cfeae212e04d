package pipeline

import (
	"context"

	"github.com/imrishuroy/go-product-describer/internal/drafts"
	"github.com/imrishuroy/go-product-describer/internal/notification"
	"github.com/imrishuroy/go-product-describer/internal/validation"
	"github.com/imrishuroy/go-product-describer/internal/vision"
)

// Stage names a step of one pipeline run.
type Stage string

const (
	StageReceived       Stage = "Received"
	StageDecoded        Stage = "Decoded"
	StageValidated      Stage = "Validated"
	StageDraftCreated   Stage = "DraftCreated"
	StageAnalyzed       Stage = "Analyzed"
	StageGenerated      Stage = "Generated"
	StageDraftFinalized Stage = "DraftFinalized"
	StageResponded      Stage = "Responded"
)

// StageError is a terminal failure of the stage that was being entered.
// Its message is the message of the wrapped error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Result is what a pipeline run produced.
type Result struct {
	Outcome      validation.Outcome
	Event        notification.Event
	Description  string
	Analysis     vision.ImageAnalysis
	DraftVersion int64
}

// Analyzer runs image analysis for a product image.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (vision.ImageAnalysis, error)
}

// Describer writes a product description from an analysis.
type Describer interface {
	Generate(ctx context.Context, analysis vision.ImageAnalysis) (string, error)
}

// DraftManager is the two-phase draft lifecycle.
type DraftManager interface {
	CreateDraft(ctx context.Context, productID, imageURL, productName string) (*drafts.Record, error)
	FinalizeDraft(ctx context.Context, productID, productName, imageURL, description string) (*drafts.Record, error)
}

// Notifier announces finalized drafts to downstream consumers.
type Notifier interface {
	DescriptionReady(ctx context.Context, msg DescriptionReady) error
}

// DescriptionReady is the message body sent once a draft is finalized.
type DescriptionReady struct {
	ProductID     string `json:"product_id"`
	DraftVersion  int64  `json:"draft_version"`
	CorrelationID string `json:"correlation_id"`
}
