package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-product-describer/internal/boot"
	"github.com/imrishuroy/go-product-describer/internal/config"
	"github.com/imrishuroy/go-product-describer/internal/drafts"
	"github.com/imrishuroy/go-product-describer/internal/idempotency"
	"github.com/imrishuroy/go-product-describer/internal/logging"
	"github.com/imrishuroy/go-product-describer/internal/products"
)

const (
	// commitRetention is how long commit records are kept for duplicate detection.
	commitRetention = 48 * time.Hour
	// commitLease must not be shorter than the queue visibility timeout.
	commitLease = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.LogLevel, cfg.RunLocal)

	clients := boot.MustAWS(context.Background())
	p := NewProcessor(
		idempotency.NewStore(clients.DynamoDB, cfg.CommitsTable, commitRetention, commitLease),
		drafts.NewStore(clients.DynamoDB, cfg.DraftsTable),
		products.NewStore(clients.DynamoDB, cfg.ProductsTable),
	)

	// RUN_LOCAL=true processes one message taken from LOCAL_SQS_BODY
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			b, _ := json.Marshal(map[string]interface{}{"product_id": "local-product-1", "draft_version": 1})
			body = string(b)
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: body}}}
		resp, err := p.Handle(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatal().Err(err).Int("failures", len(resp.BatchItemFailures)).Msg("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
