package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-describer/internal/metrics"
	"github.com/imrishuroy/go-product-describer/internal/notification"
	"github.com/imrishuroy/go-product-describer/internal/pipeline"
	"github.com/imrishuroy/go-product-describer/internal/validation"
	"github.com/imrishuroy/go-product-describer/internal/vision"
)

// Response messages.
const (
	msgNoData       = "No data found in Pub/Sub message."
	msgMissingCore  = "Product ID or image URL missing from the product data."
	msgNoAttributes = "No attributes found in the product data."
	msgDisabled     = "The option for automatic description generation is not enabled."
	msgInternal     = "Internal server error. Failed to process request."
	msgUnexpected   = "Unexpected error occurred."
)

// Processor runs the enrichment pipeline for one envelope.
type Processor interface {
	Process(ctx context.Context, env notification.Envelope) (*pipeline.Result, error)
}

// HandlerConfig groups dependencies for the event handler. Metrics may be nil.
type HandlerConfig struct {
	Pipeline Processor
	Metrics  *metrics.Recorder
}

// eventResponse is the body of a successful run.
type eventResponse struct {
	ProductID       string               `json:"productId"`
	ProductName     string               `json:"productName"`
	ImageURL        string               `json:"imageUrl"`
	Description     string               `json:"description"`
	ProductAnalysis vision.ImageAnalysis `json:"productAnalysis"`
}

// Reply is the HTTP rendering of one pipeline run.
type Reply struct {
	Status  int
	Body    interface{}
	Outcome string // metrics outcome label
}

// RegisterEventRoutes registers the product event endpoint.
func RegisterEventRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.POST("/event", func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		var reply Reply
		var env notification.Envelope
		if err := c.ShouldBindJSON(&env); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("unreadable push envelope")
			reply = Reply{Status: http.StatusBadRequest, Body: gin.H{"error": msgNoData}, Outcome: metrics.OutcomeClientError}
		} else {
			res, err := cfg.Pipeline.Process(ctx, env)
			reply = BuildReply(ctx, res, err)
		}

		cfg.Metrics.Record(ctx, reply.Outcome, time.Since(start))
		c.JSON(reply.Status, reply.Body)
	})
}

// BuildReply maps the result or error of a pipeline run to its response.
func BuildReply(ctx context.Context, res *pipeline.Result, err error) Reply {
	if err != nil {
		return errorReply(ctx, err)
	}

	ev := res.Event
	if res.Outcome == validation.OutcomeDisabled {
		return Reply{
			Status: http.StatusOK,
			Body: gin.H{
				"message":     msgDisabled,
				"productId":   ev.ProductID,
				"imageUrl":    ev.ImageURL,
				"productName": ev.ProductName,
			},
			Outcome: metrics.OutcomeDisabled,
		}
	}

	return Reply{
		Status: http.StatusOK,
		Body: eventResponse{
			ProductID:       ev.ProductID,
			ProductName:     ev.ProductName,
			ImageURL:        ev.ImageURL,
			Description:     res.Description,
			ProductAnalysis: res.Analysis,
		},
		Outcome: metrics.OutcomeSuccess,
	}
}

// errorReply funnels every pipeline failure into a 400 or a 500.
func errorReply(ctx context.Context, err error) Reply {
	logger := zerolog.Ctx(ctx)

	var msg string
	switch {
	case errors.Is(err, notification.ErrNoData):
		msg = msgNoData
	case errors.Is(err, validation.ErrMissingCoreFields):
		msg = msgMissingCore
	case errors.Is(err, validation.ErrNoAttributes):
		msg = msgNoAttributes
	}
	if msg != "" {
		logger.Warn().Err(err).Msg("rejected product event")
		return Reply{Status: http.StatusBadRequest, Body: gin.H{"error": msg}, Outcome: metrics.OutcomeClientError}
	}

	ev := logger.Error().Err(err)
	var se *pipeline.StageError
	if errors.As(err, &se) {
		ev = ev.Str("stage", string(se.Stage))
	}
	ev.Msg("failed to process product event")
	return Reply{
		Status:  http.StatusInternalServerError,
		Body:    gin.H{"error": msgInternal, "details": err.Error()},
		Outcome: metrics.OutcomeError,
	}
}
