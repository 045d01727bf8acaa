package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/internal/products"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/pagination"
)

type stubProductService struct {
	filters products.ListFilters
	page    pagination.Params
	created *products.CreateProductRequest
	deleted []uuid.UUID
}

func (s *stubProductService) List(_ context.Context, filters products.ListFilters, page pagination.Params) ([]*products.ProductDTO, pagination.Page, error) {
	s.filters = filters
	s.page = page
	return []*products.ProductDTO{{Title: "Anillo Luna"}}, pagination.PageFor(page, 1), nil
}

func (s *stubProductService) Get(_ context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) Create(_ context.Context, req products.CreateProductRequest) (*products.ProductDTO, error) {
	s.created = &req
	return &products.ProductDTO{Title: req.Title}, nil
}

func (s *stubProductService) Update(_ context.Context, _ uuid.UUID, _ products.UpdateProductRequest) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (s *stubProductService) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubProductService) Categories(_ context.Context) ([]products.CategoryDTO, error) {
	return []products.CategoryDTO{{Name: "Anillos", Slug: "anillos", Count: 3}}, nil
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestProductListForwardsFilters(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=anillos&q=luna&sort=-price&page=2&limit=24", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.filters.Category != "anillos" || svc.filters.Query != "luna" || svc.filters.Sort != "-price" {
		t.Fatalf("filters not forwarded: %+v", svc.filters)
	}
	if svc.page.Page != 2 || svc.page.Limit != 24 {
		t.Fatalf("pagination not forwarded: %+v", svc.page)
	}
}

func TestProductListRejectsBadPagination(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=9999", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit, got %d", rec.Code)
	}
}

func TestProductDetailInvalidID(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	req = withURLParam(req, "productId", "not-a-uuid")
	rec := httptest.NewRecorder()
	ProductDetail(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil)
	req = withURLParam(req, "productId", id.String())
	rec := httptest.NewRecorder()
	ProductDetail(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProductCreate(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"Anillo Luna","price_cents":150000}`))
	rec := httptest.NewRecorder()
	ProductCreate(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil || svc.created.Title != "Anillo Luna" {
		t.Fatalf("create payload not forwarded: %+v", svc.created)
	}
}

func TestProductCreateRejectsMissingTitle(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"price_cents":150000}`))
	rec := httptest.NewRecorder()
	ProductCreate(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.created != nil {
		t.Fatalf("service should not be called for invalid payload")
	}
}

func TestProductDelete(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil)
	req = withURLParam(req, "productId", id.String())
	rec := httptest.NewRecorder()
	ProductDelete(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != id {
		t.Fatalf("expected delete to be forwarded, got %v", svc.deleted)
	}
}

func TestCategoryList(t *testing.T) {
	svc := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	CategoryList(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "anillos") {
		t.Fatalf("expected category slug in response: %s", rec.Body.String())
	}
}
