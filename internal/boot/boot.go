// Package boot wires configuration into ready-to-use collaborators for the
// binaries under cmd/.
package boot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-product-describer/internal/aws"
	"github.com/imrishuroy/go-product-describer/internal/config"
	"github.com/imrishuroy/go-product-describer/internal/drafts"
	"github.com/imrishuroy/go-product-describer/internal/generative"
	"github.com/imrishuroy/go-product-describer/internal/metrics"
	"github.com/imrishuroy/go-product-describer/internal/pipeline"
	"github.com/imrishuroy/go-product-describer/internal/vision"
)

// Pipeline is an orchestrator plus the resources it holds open.
type Pipeline struct {
	Orchestrator *pipeline.Orchestrator
	Drafts       *drafts.Store
	close        func() error
}

// Close releases the model client.
func (p *Pipeline) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// NewPipeline builds the vision and Gemini clients, the draft store and the
// optional DescriptionReady notifier.
func NewPipeline(ctx context.Context, cfg *config.Config, clients *aws.AWSClients) (*Pipeline, error) {
	if err := cfg.RequireAI(); err != nil {
		return nil, err
	}

	annotator, err := vision.NewCloudAnnotator(ctx, cfg.AI.GCPServiceAccount)
	if err != nil {
		return nil, err
	}
	model, genClient, err := generative.NewGeminiModel(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, err
	}

	draftStore := drafts.NewStore(clients.DynamoDB, cfg.DraftsTable)

	var notifier pipeline.Notifier
	if cfg.DescriptionsQueue != "" {
		notifier = pipeline.NewSQSNotifier(aws.NewPublisher(clients.SQS, cfg.DescriptionsQueue))
	} else {
		log.Info().Msg("DESCRIPTIONS_QUEUE_URL not set, description-ready messages disabled")
	}

	orch := pipeline.New(pipeline.Config{
		Analyzer:  vision.NewAdapter(annotator),
		Describer: generative.NewAdapter(model),
		Drafts:    draftStore,
		Notifier:  notifier,
	})

	log.Debug().Str("model", cfg.AI.Model).Str("drafts_table", cfg.DraftsTable).Msg("pipeline ready")
	return &Pipeline{Orchestrator: orch, Drafts: draftStore, close: genClient.Close}, nil
}

// NewMetrics returns a recorder, or nil when metrics are disabled.
func NewMetrics(cfg *config.Config, clients *aws.AWSClients) *metrics.Recorder {
	if cfg.DisableMetrics {
		return nil
	}
	return metrics.NewRecorder(clients.CloudWatch, cfg.MetricsNamespace)
}

// MustAWS loads the AWS clients or exits.
func MustAWS(ctx context.Context) *aws.AWSClients {
	clients, err := aws.LoadAWSClients(ctx)
	if err != nil {
		log.Fatal().Err(fmt.Errorf("init aws clients: %w", err)).Msg("startup failed")
	}
	return clients
}
