package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeSender struct {
	body  string
	attrs map[string]string
	err   error
}

func (f *fakeSender) SendMessage(ctx context.Context, body string, attributes map[string]string) (string, error) {
	f.body = body
	f.attrs = attributes
	if f.err != nil {
		return "", f.err
	}
	return "msg-1", nil
}

func TestSQSNotifier_DescriptionReady(t *testing.T) {
	sender := &fakeSender{}
	n := NewSQSNotifier(sender)

	err := n.DescriptionReady(context.Background(), DescriptionReady{ProductID: "p1", DraftVersion: 4, CorrelationID: "c-1"})
	if err != nil {
		t.Fatalf("DescriptionReady error: %v", err)
	}

	var got DescriptionReady
	if err := json.Unmarshal([]byte(sender.body), &got); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if got.ProductID != "p1" || got.DraftVersion != 4 || got.CorrelationID != "c-1" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if sender.attrs["draft_version"] != "4" || sender.attrs["product_id"] != "p1" {
		t.Fatalf("unexpected attributes: %v", sender.attrs)
	}
}

func TestSQSNotifier_SendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("denied")}
	err := NewSQSNotifier(sender).DescriptionReady(context.Background(), DescriptionReady{ProductID: "p1"})
	if !errors.Is(err, sender.err) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	if got := CorrelationID(ctx); got != "abc" {
		t.Fatalf("CorrelationID = %q", got)
	}
	a, b := CorrelationID(context.Background()), CorrelationID(context.Background())
	if a == "" || a == b {
		t.Fatalf("expected fresh ids, got %q and %q", a, b)
	}
}
