package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magusbylili/storefront-backend/internal/auth"
	"github.com/magusbylili/storefront-backend/internal/orders"
	"github.com/magusbylili/storefront-backend/internal/payments"
	"github.com/magusbylili/storefront-backend/internal/products"
	"github.com/magusbylili/storefront-backend/internal/users"
	pkgauth "github.com/magusbylili/storefront-backend/pkg/auth"
	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
	"github.com/magusbylili/storefront-backend/pkg/pagination"
	"github.com/magusbylili/storefront-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubChecker struct{}

func (stubChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{Token: "signed", User: &users.UserDTO{}}, nil
}
func (stubAuthService) Logout(context.Context, string) error { return nil }
func (stubAuthService) CurrentUser(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{Name: "Lili"}, nil
}
func (stubAuthService) ChangePassword(context.Context, uuid.UUID, auth.ChangePasswordRequest) error {
	return nil
}

type stubProductService struct{}

func (stubProductService) List(context.Context, products.ListFilters, pagination.Params) ([]*products.ProductDTO, pagination.Page, error) {
	return []*products.ProductDTO{{Title: "Anillo Luna"}}, pagination.Page{Page: 1, Limit: 12, Total: 1, TotalPages: 1}, nil
}
func (stubProductService) Get(context.Context, uuid.UUID) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (stubProductService) Create(context.Context, products.CreateProductRequest) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}
func (stubProductService) Update(context.Context, uuid.UUID, products.UpdateProductRequest) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}
func (stubProductService) Delete(context.Context, uuid.UUID) error { return nil }
func (stubProductService) Categories(context.Context) ([]products.CategoryDTO, error) {
	return nil, nil
}

type stubOrderService struct{}

func (stubOrderService) Create(context.Context, *uuid.UUID, orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}
func (stubOrderService) Get(context.Context, orders.Actor, uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}
func (stubOrderService) ListMine(context.Context, uuid.UUID) ([]*orders.OrderDTO, error) {
	return nil, nil
}
func (stubOrderService) ListAll(context.Context, pagination.Params) ([]*orders.OrderDTO, pagination.Page, error) {
	return nil, pagination.Page{}, nil
}
func (stubOrderService) UpdateStatus(context.Context, uuid.UUID, orders.UpdateStatusRequest) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

type stubPaymentService struct{}

func (stubPaymentService) CreatePayment(context.Context, payments.CreatePaymentRequest) (*payments.PaymentResponse, error) {
	return &payments.PaymentResponse{}, nil
}
func (stubPaymentService) GetTransaction(context.Context, string) (*payments.TransactionStatusResponse, error) {
	return &payments.TransactionStatusResponse{}, nil
}
func (stubPaymentService) HandleWebhook(context.Context, []byte, string, string) error {
	return nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "magusbylili", ExpirationMinutes: 60},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})

	return NewRouter(cfg, logg, stubPinger{}, nil, stubChecker{}, prometheus.NewRegistry(), Services{
		Auth:     stubAuthService{},
		Products: stubProductService{},
		Orders:   stubOrderService{},
		Payments: stubPaymentService{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterServesMetrics(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics endpoint, got %d", rec.Code)
	}
}

func TestRouterPublicCatalog(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?page=1", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body types.PageEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode page envelope: %v", err)
	}
	if body.Meta == nil {
		t.Fatalf("expected pagination meta on catalog list")
	}
}

func TestRouterProtectsAdminProductWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"x","price_cents":1}`))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
}

func TestRouterAdminWriteNeedsAdminRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "magusbylili", ExpirationMinutes: 60}
	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Lili",
		Email:  "lili@example.com",
		Role:   enums.UserRoleCustomer,
		JTI:    "session-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"x","price_cents":1}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role, got %d", rec.Code)
	}
}

func TestRouterGuestCheckout(t *testing.T) {
	body := `{"items":[{"title":"Anillo","unit_price_cents":150000,"qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for guest checkout, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterWebhookRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/wompi", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
