// Package metrics publishes pipeline outcome and latency metrics to CloudWatch.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-describer/internal/aws"
)

// Metric names and the dimension they are split by.
const (
	MetricOutcome    = "PipelineOutcome"
	MetricLatency    = "PipelineLatency"
	DimensionOutcome = "Outcome"
)

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeDisabled    = "disabled"
	OutcomeClientError = "client_error"
	OutcomeError       = "error"
)

// Recorder sends one outcome count and one latency sample per pipeline run.
// A nil *Recorder records nothing.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewRecorder returns a Recorder, or nil when client is nil or namespace is empty.
func NewRecorder(client aws.CloudWatchAPI, namespace string) *Recorder {
	if client == nil || namespace == "" {
		return nil
	}
	return &Recorder{client: client, namespace: namespace, nowFunc: time.Now}
}

// Record publishes the outcome of a run. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, outcome string, latency time.Duration) {
	if r == nil {
		return
	}
	if err := r.put(ctx, outcome, latency); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("outcome", outcome).Msg("failed to publish metrics")
	}
}

func (r *Recorder) put(ctx context.Context, outcome string, latency time.Duration) error {
	now := r.nowFunc()
	dims := []cwtypes.Dimension{{Name: strPtr(DimensionOutcome), Value: strPtr(outcome)}}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: strPtr(MetricOutcome),
				Dimensions: dims,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      float64Ptr(1),
			},
			{
				MetricName: strPtr(MetricLatency),
				Dimensions: dims,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitMilliseconds,
				Value:      float64Ptr(float64(latency.Milliseconds())),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func strPtr(s string) *string       { return &s }
func float64Ptr(f float64) *float64 { return &f }
