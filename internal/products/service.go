package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/db/models"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/money"
	"github.com/magusbylili/storefront-backend/pkg/pagination"
)

// Service exposes storefront and admin catalog operations.
type Service interface {
	List(ctx context.Context, filters ListFilters, page pagination.Params) ([]*ProductDTO, pagination.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]CategoryDTO, error)
}

type repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]CategoryDTO, error)
}

type service struct {
	repo repository
}

// NewService constructs the catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, page pagination.Params) ([]*ProductDTO, pagination.Page, error) {
	items, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dtos := make([]*ProductDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, FromModel(&items[i]))
	}
	return dtos, pagination.PageFor(page, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if req.Price != nil {
		cents, err := resolvePriceCents(*req.Price, req.PriceCents != 0)
		if err != nil {
			return nil, err
		}
		req.PriceCents = cents
	}
	if req.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product, err := s.repo.Create(ctx, req.ToModel())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		product.Title = title
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		cents, err := resolvePriceCents(*req.Price, req.PriceCents != nil)
		if err != nil {
			return nil, err
		}
		product.PriceCents = cents
	} else if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		product.Stock = req.Stock
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.ImageURLs != nil {
		product.ImageURLs = pq.StringArray(append([]string{}, req.ImageURLs...))
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

// resolvePriceCents converts a major-unit price string ("1500.50") into cents.
// Supplying both forms on one request is rejected rather than guessed at.
func resolvePriceCents(major string, centsAlsoSet bool) (int64, error) {
	if centsAlsoSet {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "provide price or price_cents, not both")
	}
	cents, err := money.ParseMinorUnits(major)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal amount")
	}
	if cents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return cents, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categories, nil
}
