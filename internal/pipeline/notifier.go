package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type correlationKey struct{}

// WithCorrelationID stores the id used to tag messages published during the run.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id set by WithCorrelationID, or a fresh one.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// MessageSender is satisfied by *aws.Publisher.
type MessageSender interface {
	SendMessage(ctx context.Context, body string, attributes map[string]string) (string, error)
}

// SQSNotifier publishes DescriptionReady messages to a queue.
type SQSNotifier struct {
	sender MessageSender
}

// NewSQSNotifier returns a Notifier backed by sender.
func NewSQSNotifier(sender MessageSender) *SQSNotifier {
	return &SQSNotifier{sender: sender}
}

// DescriptionReady sends msg as JSON with product and correlation attributes.
func (n *SQSNotifier) DescriptionReady(ctx context.Context, msg DescriptionReady) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal description-ready: %w", err)
	}
	attrs := map[string]string{
		"product_id":     msg.ProductID,
		"draft_version":  strconv.FormatInt(msg.DraftVersion, 10),
		"correlation_id": msg.CorrelationID,
	}
	id, err := n.sender.SendMessage(ctx, string(body), attrs)
	if err != nil {
		return fmt.Errorf("send description-ready: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("message_id", id).Msg("description-ready published")
	return nil
}
