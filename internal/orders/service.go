package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/db/models"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/pagination"
)

// Actor identifies who is asking for an order.
type Actor struct {
	UserID *uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service exposes checkout and order management operations.
type Service interface {
	Create(ctx context.Context, userID *uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*OrderDTO, error)
	ListAll(ctx context.Context, page pagination.Params) ([]*OrderDTO, pagination.Page, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
}

type repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, page pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (int64, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     repository
	products productFinder
}

// NewService constructs the orders service.
func NewService(repo repository, products productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder is required")
	}
	return &service{repo: repo, products: products}, nil
}

// Create validates the cart, snapshots catalog prices and titles, and
// computes the order amount server-side. userID is nil for guest checkouts.
func (s *service) Create(ctx context.Context, userID *uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	currency := req.Currency
	if currency == "" {
		currency = enums.CurrencyCOP
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", req.Currency))
	}

	var amount int64
	items := make([]models.OrderLineItem, 0, len(req.Items))
	for i, input := range req.Items {
		if input.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: qty must be positive", i))
		}

		title := strings.TrimSpace(input.Title)
		unitPrice := input.UnitPriceCents

		if input.ProductID != nil {
			product, err := s.products.FindByID(ctx, *input.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: product not found", i))
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
			}
			title = product.Title
			unitPrice = product.PriceCents
		} else {
			if title == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: title is required", i))
			}
		}

		if unitPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: price must not be negative", i))
		}

		amount += unitPrice * int64(input.Qty)
		items = append(items, models.OrderLineItem{
			ProductID:      input.ProductID,
			Title:          title,
			UnitPriceCents: unitPrice,
			Qty:            input.Qty,
		})
	}

	order := &models.Order{
		UserID:      userID,
		AmountCents: amount,
		Currency:    currency,
		Status:      enums.OrderStatusPending,
		Address:     req.Address,
		Items:       items,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return FromModel(created), nil
}

// Get returns the order when the actor owns it or is an admin.
func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if !actor.IsAdmin() {
		if order.UserID == nil || actor.UserID == nil || *order.UserID != *actor.UserID {
			// hides existence from non-owners
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]*OrderDTO, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	dtos := make([]*OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, FromModel(&orders[i]))
	}
	return dtos, nil
}

func (s *service) ListAll(ctx context.Context, page pagination.Params) ([]*OrderDTO, pagination.Page, error) {
	orders, total, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	dtos := make([]*OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, FromModel(&orders[i]))
	}
	return dtos, pagination.PageFor(page, total), nil
}

// UpdateStatus applies an admin status change, honoring the lifecycle
// transition rules.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	if !req.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", req.Status))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if order.Status == req.Status {
		return FromModel(order), nil
	}
	if !order.Status.CanTransitionTo(req.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status)).
			WithDetails(map[string]any{"from": order.Status, "to": req.Status})
	}

	changed, err := s.repo.UpdateStatus(ctx, id, order.Status, req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
	}
	if changed == 0 {
		// the order moved under us; re-read would be stale, surface the race
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	order.Status = req.Status
	return FromModel(order), nil
}
