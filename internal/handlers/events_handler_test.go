package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-product-describer/internal/drafts"
	"github.com/imrishuroy/go-product-describer/internal/notification"
	"github.com/imrishuroy/go-product-describer/internal/pipeline"
	"github.com/imrishuroy/go-product-describer/internal/vision"
)

type stubAnalyzer struct {
	calls int
	err   error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, imageURL string) (vision.ImageAnalysis, error) {
	s.calls++
	if s.err != nil {
		return vision.ImageAnalysis{}, s.err
	}
	a := vision.Fallback()
	a.Labels = "shirt"
	a.Colors = []string{"255, 255, 255"}
	return a, nil
}

type stubDescriber struct{ calls int }

func (s *stubDescriber) Generate(ctx context.Context, analysis vision.ImageAnalysis) (string, error) {
	s.calls++
	return "A crisp shirt.", nil
}

type stubDrafts struct{ creates, finalizes int }

func (s *stubDrafts) CreateDraft(ctx context.Context, productID, imageURL, productName string) (*drafts.Record, error) {
	s.creates++
	return &drafts.Record{Key: productID, Version: 1}, nil
}

func (s *stubDrafts) FinalizeDraft(ctx context.Context, productID, productName, imageURL, description string) (*drafts.Record, error) {
	s.finalizes++
	return &drafts.Record{Key: productID, Version: 2}, nil
}

type harness struct {
	router   *gin.Engine
	analyzer *stubAnalyzer
	describe *stubDescriber
	drafts   *stubDrafts
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{analyzer: &stubAnalyzer{}, describe: &stubDescriber{}, drafts: &stubDrafts{}}
	orch := pipeline.New(pipeline.Config{Analyzer: h.analyzer, Describer: h.describe, Drafts: h.drafts})

	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	RegisterEventRoutes(r, HandlerConfig{Pipeline: orch})
	h.router = r
	return h
}

func (h *harness) post(t *testing.T, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/event", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not json: %v (%s)", err, w.Body.String())
	}
	return w, got
}

func envelopeBody(t *testing.T, data string) []byte {
	t.Helper()
	b, err := json.Marshal(notification.Envelope{Message: &notification.PushMessage{
		Data: base64.StdEncoding.EncodeToString([]byte(data)),
	}})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return b
}

func TestEvent_Success(t *testing.T) {
	h := newHarness()
	body := envelopeBody(t, `{"productProjection":{"id":"p1","name":{"en":"Shirt"},"masterVariant":{"images":[{"url":"http://x/img.jpg"}],"attributes":[{"name":"generateDescription","value":true}]}}}`)

	w, got := h.post(t, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if got["productId"] != "p1" || got["productName"] != "Shirt" || got["imageUrl"] != "http://x/img.jpg" || got["description"] != "A crisp shirt." {
		t.Fatalf("unexpected body: %v", got)
	}
	pa, ok := got["productAnalysis"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing productAnalysis: %v", got)
	}
	if pa["labels"] != "shirt" {
		t.Fatalf("labels = %v", pa["labels"])
	}
	colors, _ := pa["colors"].([]interface{})
	if len(colors) != 1 || colors[0] != "255, 255, 255" {
		t.Fatalf("colors = %v", pa["colors"])
	}
	if h.drafts.creates != 1 || h.analyzer.calls != 1 || h.describe.calls != 1 || h.drafts.finalizes != 1 {
		t.Fatalf("unexpected call counts: %+v %+v %+v", h.drafts, h.analyzer, h.describe)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestEvent_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"no message", []byte(`{}`), msgNoData},
		{"empty data", []byte(`{"message":{"data":""}}`), msgNoData},
		{"not json", []byte(`not json`), msgNoData},
		{
			"no attributes",
			envelopeBody(t, `{"productProjection":{"id":"p1","masterVariant":{"images":[{"url":"http://x/img.jpg"}],"attributes":[]}}}`),
			msgNoAttributes,
		},
		{
			"missing product id",
			envelopeBody(t, `{"productProjection":{"masterVariant":{"images":[{"url":"http://x/img.jpg"}],"attributes":[{"name":"generateDescription","value":true}]}}}`),
			msgMissingCore,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			w, got := h.post(t, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			if len(got) != 1 || got["error"] != tc.want {
				t.Fatalf("body = %v, want error %q", got, tc.want)
			}
			if h.drafts.creates+h.analyzer.calls+h.describe.calls+h.drafts.finalizes != 0 {
				t.Fatalf("expected no collaborator calls")
			}
		})
	}
}

func TestEvent_Disabled(t *testing.T) {
	h := newHarness()
	body := envelopeBody(t, `{"productProjection":{"id":"p1","masterVariant":{"images":[{"url":"http://x/img.jpg"}],"attributes":[{"name":"generateDescription","value":false}]}}}`)

	w, got := h.post(t, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got["message"] != msgDisabled || got["productId"] != "p1" || got["imageUrl"] != "http://x/img.jpg" || got["productName"] != notification.MissingProductName {
		t.Fatalf("unexpected body: %v", got)
	}
	if h.drafts.creates+h.analyzer.calls != 0 {
		t.Fatalf("expected no collaborator calls")
	}
}

func TestEvent_CollaboratorFailure(t *testing.T) {
	h := newHarness()
	h.analyzer.err = vision.ErrAnalysisUnavailable
	body := envelopeBody(t, `{"productProjection":{"id":"p1","masterVariant":{"images":[{"url":"http://x/img.jpg"}],"attributes":[{"name":"generateDescription","value":true}]}}}`)

	w, got := h.post(t, body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if got["error"] != msgInternal || got["details"] != vision.ErrAnalysisUnavailable.Error() {
		t.Fatalf("unexpected body: %v", got)
	}
	if h.drafts.creates != 1 || h.describe.calls != 0 || h.drafts.finalizes != 0 {
		t.Fatalf("pipeline should stop after analysis")
	}
}

func TestEvent_MalformedBase64Is500(t *testing.T) {
	h := newHarness()
	w, got := h.post(t, []byte(`{"message":{"data":"%%%not-base64"}}`))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if got["error"] != msgInternal || got["details"] == nil {
		t.Fatalf("unexpected body: %v", got)
	}
}

type panicProcessor struct{}

func (panicProcessor) Process(ctx context.Context, env notification.Envelope) (*pipeline.Result, error) {
	panic(errors.New("nil map write"))
}

func TestEvent_PanicRecovered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	RegisterEventRoutes(r, HandlerConfig{Pipeline: panicProcessor{}})

	req := httptest.NewRequest(http.MethodPost, "/event", bytes.NewReader([]byte(`{"message":{"data":"e30="}}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(got) != 1 || got["error"] != msgUnexpected {
		t.Fatalf("unexpected body: %v", got)
	}
}
