package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/magusbylili/storefront-backend/internal/payments"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
)

type stubPaymentService struct {
	payload    []byte
	timestamp  string
	signature  string
	handleErr  error
	handleRuns int
}

func (s *stubPaymentService) CreatePayment(_ context.Context, _ payments.CreatePaymentRequest) (*payments.PaymentResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) GetTransaction(_ context.Context, _ string) (*payments.TransactionStatusResponse, error) {
	return nil, nil
}

func (s *stubPaymentService) HandleWebhook(_ context.Context, payload []byte, timestampHeader, signatureHeader string) error {
	s.handleRuns++
	s.payload = payload
	s.timestamp = timestampHeader
	s.signature = signatureHeader
	return s.handleErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func TestWompiWebhookForwardsPayloadAndHeaders(t *testing.T) {
	svc := &stubPaymentService{}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/wompi", strings.NewReader(`{"event":"transaction.updated"}`))
	req.Header.Set("X-Wompi-Timestamp", "1725000000")
	req.Header.Set("X-Wompi-Signature", "abc123")
	rec := httptest.NewRecorder()
	WompiWebhook(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.handleRuns != 1 {
		t.Fatalf("expected service to run once, got %d", svc.handleRuns)
	}
	if string(svc.payload) != `{"event":"transaction.updated"}` {
		t.Fatalf("payload not forwarded verbatim: %s", svc.payload)
	}
	if svc.timestamp != "1725000000" || svc.signature != "abc123" {
		t.Fatalf("headers not forwarded: ts=%q sig=%q", svc.timestamp, svc.signature)
	}
}

func TestWompiWebhookMapsUnauthorized(t *testing.T) {
	svc := &stubPaymentService{handleErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")}

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/wompi", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	WompiWebhook(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWompiWebhookWithoutService(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/wompi", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	WompiWebhook(nil, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
