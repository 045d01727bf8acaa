package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/magusbylili/storefront-backend/pkg/config"
)

func TestPaymentGatewayConfigReturnsPublicValues(t *testing.T) {
	cfg := config.WompiConfig{
		PublicKey:  "pub_test_abc123",
		PrivateKey: "prv_test_secret",
		Mode:       "Sandbox",
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/config", nil)
	rec := httptest.NewRecorder()
	PaymentGatewayConfig(cfg, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data GatewayConfigResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.PublicKey != "pub_test_abc123" {
		t.Fatalf("unexpected public key: %q", body.Data.PublicKey)
	}
	if body.Data.Environment != "sandbox" {
		t.Fatalf("expected normalized environment, got %q", body.Data.Environment)
	}
	if body.Data.Currency != "COP" {
		t.Fatalf("unexpected currency: %q", body.Data.Currency)
	}
	if strings.Contains(rec.Body.String(), "prv_test_secret") {
		t.Fatalf("private key leaked into response: %s", rec.Body.String())
	}
}

func TestPaymentGatewayConfigUnconfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/payments/config", nil)
	rec := httptest.NewRecorder()
	PaymentGatewayConfig(config.WompiConfig{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}
