package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-product-describer/internal/boot"
	"github.com/imrishuroy/go-product-describer/internal/config"
	"github.com/imrishuroy/go-product-describer/internal/handlers"
	"github.com/imrishuroy/go-product-describer/internal/logging"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(handlers.RequestLogger(), handlers.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterEventRoutes(r, cfg)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.LogLevel, cfg.RunLocal)

	ctx := context.Background()
	clients := boot.MustAWS(ctx)

	p, err := boot.NewPipeline(ctx, cfg, clients)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}
	defer p.Close()

	if !cfg.RunLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	r := setupRouter(handlers.HandlerConfig{
		Pipeline: p.Orchestrator,
		Metrics:  boot.NewMetrics(cfg, clients),
	})

	// RUN_LOCAL=true serves plain HTTP for development
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("running local server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
