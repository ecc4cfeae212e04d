package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-product-describer/internal/idempotency"
	"github.com/imrishuroy/go-product-describer/internal/pipeline"
	"github.com/imrishuroy/go-product-describer/internal/products"
)

// errPermanent marks failures a redelivery cannot fix.
var errPermanent = errors.New("permanent failure")

// Processor commits finalized draft descriptions to their products.
type Processor struct {
	commits  CommitGuard
	drafts   DraftReader
	products ProductWriter
}

// NewProcessor creates a new worker processor.
func NewProcessor(commits CommitGuard, drafts DraftReader, products ProductWriter) *Processor {
	return &Processor{commits: commits, drafts: drafts, products: products}
}

// Handle processes an SQS batch and reports the messages that should be
// redelivered. Permanent failures are logged and dropped.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		logger := log.With().Str("message_id", rec.MessageId).Logger()
		msgCtx := logger.WithContext(ctx)

		err := p.processMessage(msgCtx, rec)
		switch {
		case err == nil:
		case errors.Is(err, errPermanent):
			logger.Error().Err(err).Msg("dropping message")
		case errors.Is(err, idempotency.ErrCommitInProgress):
			logger.Info().Msg("commit claimed by another worker, will retry")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		default:
			logger.Error().Err(err).Msg("commit failed, will retry")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg pipeline.DescriptionReady
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("%w: invalid message body: %v", errPermanent, err)
	}
	if msg.ProductID == "" || msg.DraftVersion <= 0 {
		return fmt.Errorf("%w: message without product id or draft version", errPermanent)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("product_id", msg.ProductID).
		Int64("draft_version", msg.DraftVersion).
		Str("correlation_id", msg.CorrelationID).
		Logger()

	claimed, err := p.commits.Claim(ctx, msg.ProductID, msg.DraftVersion)
	if err != nil {
		return fmt.Errorf("claim commit: %w", err)
	}
	if !claimed {
		logger.Info().Msg("commit already done")
		return nil
	}

	productVersion, err := p.commit(ctx, logger, msg)
	if err != nil {
		if markErr := p.commits.MarkFailed(ctx, msg.ProductID, msg.DraftVersion, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("failed to mark commit failed")
		}
		return err
	}

	if err := p.commits.MarkDone(ctx, msg.ProductID, msg.DraftVersion, productVersion); err != nil {
		return fmt.Errorf("mark commit done: %w", err)
	}
	logger.Info().Int64("product_version", productVersion).Msg("description committed")
	return nil
}

// commit writes the draft text to the product and returns the new product
// version. A draft that moved past msg.DraftVersion is skipped with version 0.
func (p *Processor) commit(ctx context.Context, logger zerolog.Logger, msg pipeline.DescriptionReady) (int64, error) {
	draft, err := p.drafts.Get(ctx, msg.ProductID)
	if err != nil {
		return 0, fmt.Errorf("fetch draft: %w", err)
	}
	if draft == nil {
		return 0, fmt.Errorf("%w: draft not found for product %s", errPermanent, msg.ProductID)
	}
	if draft.Version != msg.DraftVersion || !draft.Finalized() {
		logger.Warn().Int64("current_version", draft.Version).Str("state", draft.State).Msg("stale description-ready message, skipping")
		return 0, nil
	}

	product, err := p.products.Get(ctx, msg.ProductID)
	if err != nil {
		return 0, fmt.Errorf("fetch product: %w", err)
	}
	if product == nil {
		return 0, fmt.Errorf("%w: %v: %s", errPermanent, products.ErrProductNotFound, msg.ProductID)
	}

	updated, err := p.products.Update(ctx, msg.ProductID, product.Version, products.SetDescription{
		Locale: descriptionLocale,
		Text:   *draft.TemporaryDescription,
	})
	if err != nil {
		return 0, fmt.Errorf("update product: %w", err)
	}
	return updated.Version, nil
}
