package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-describer/internal/notification"
	"github.com/imrishuroy/go-product-describer/internal/validation"
)

// Config groups the collaborators of an Orchestrator. Notifier may be nil.
type Config struct {
	Eligibility *validation.Eligibility
	Analyzer    Analyzer
	Describer   Describer
	Drafts      DraftManager
	Notifier    Notifier
}

// Orchestrator runs one enrichment pipeline per notification.
type Orchestrator struct {
	eligibility *validation.Eligibility
	analyzer    Analyzer
	describer   Describer
	drafts      DraftManager
	notifier    Notifier
}

// New returns an Orchestrator. A nil Eligibility gets the default one.
func New(cfg Config) *Orchestrator {
	el := cfg.Eligibility
	if el == nil {
		el = validation.NewEligibility()
	}
	return &Orchestrator{
		eligibility: el,
		analyzer:    cfg.Analyzer,
		describer:   cfg.Describer,
		drafts:      cfg.Drafts,
		notifier:    cfg.Notifier,
	}
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Process takes an envelope through every stage in order. The first failure
// ends the run and is returned as a *StageError. A disabled product ends the
// run after validation with OutcomeDisabled and no collaborator calls.
func (o *Orchestrator) Process(ctx context.Context, env notification.Envelope) (*Result, error) {
	ev, err := notification.Decode(env)
	if err != nil {
		return nil, fail(StageDecoded, err)
	}
	logger := zerolog.Ctx(ctx).With().Str("product_id", ev.ProductID).Logger()
	ctx = logger.WithContext(ctx)

	decision, err := o.eligibility.Validate(ev)
	if err != nil {
		return nil, fail(StageValidated, err)
	}
	if decision.Outcome == validation.OutcomeDisabled {
		logger.Info().Msg("description generation disabled for product")
		return &Result{Outcome: validation.OutcomeDisabled, Event: ev}, nil
	}

	if _, err := o.drafts.CreateDraft(ctx, ev.ProductID, ev.ImageURL, ev.ProductName); err != nil {
		return nil, fail(StageDraftCreated, err)
	}

	analysis, err := o.analyzer.Analyze(ctx, ev.ImageURL)
	if err != nil {
		return nil, fail(StageAnalyzed, err)
	}

	description, err := o.describer.Generate(ctx, analysis)
	if err != nil {
		return nil, fail(StageGenerated, err)
	}

	rec, err := o.drafts.FinalizeDraft(ctx, ev.ProductID, ev.ProductName, ev.ImageURL, description)
	if err != nil {
		return nil, fail(StageDraftFinalized, err)
	}

	o.notify(ctx, ev.ProductID, rec.Version)

	return &Result{
		Outcome:      validation.OutcomeProceed,
		Event:        ev,
		Description:  description,
		Analysis:     analysis,
		DraftVersion: rec.Version,
	}, nil
}

// notify is best effort; the finalized draft is already durable.
func (o *Orchestrator) notify(ctx context.Context, productID string, version int64) {
	if o.notifier == nil {
		return
	}
	msg := DescriptionReady{
		ProductID:     productID,
		DraftVersion:  version,
		CorrelationID: CorrelationID(ctx),
	}
	if err := o.notifier.DescriptionReady(ctx, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("draft_version", version).Msg("failed to publish description-ready message")
	}
}
