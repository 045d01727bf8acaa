package orders

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/db/models"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrderRepo(orders ...*models.Order) *stubOrderRepo {
	r := &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
	for _, o := range orders {
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		r.orders[o.ID] = o
	}
	return r
}

func (r *stubOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	r.orders[order.ID] = order
	return order, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) ListAll(_ context.Context, page pagination.Params) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	offset := page.Offset()
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + page.Normalize().Limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	return 1, nil
}

type stubProductFinder struct {
	products map[uuid.UUID]*models.Product
}

func newStubProductFinder(products ...*models.Product) *stubProductFinder {
	f := &stubProductFinder{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *stubProductFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func buildOrderService(t *testing.T, repo *stubOrderRepo, finder *stubProductFinder) Service {
	t.Helper()
	svc, err := NewService(repo, finder)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestCreateComputesAmountFromCatalog(t *testing.T) {
	ring := &models.Product{ID: uuid.New(), Title: "Anillo Luna", PriceCents: 85000}
	necklace := &models.Product{ID: uuid.New(), Title: "Collar Estrella", PriceCents: 120000}
	svc := buildOrderService(t, newStubOrderRepo(), newStubProductFinder(ring, necklace))

	userID := uuid.New()
	dto, err := svc.Create(context.Background(), &userID, CreateOrderRequest{
		Items: []OrderItemInput{
			// client-sent price is ignored for catalog items
			{ProductID: &ring.ID, Qty: 2, UnitPriceCents: 1},
			{ProductID: &necklace.ID, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	wantAmount := int64(2*85000 + 120000)
	if dto.AmountCents != wantAmount {
		t.Fatalf("expected amount %d, got %d", wantAmount, dto.AmountCents)
	}
	if dto.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.Items[0].Title != "Anillo Luna" || dto.Items[0].UnitPriceCents != 85000 {
		t.Fatalf("expected snapshotted title/price, got %+v", dto.Items[0])
	}

	// amount equals the sum of line totals
	var sum int64
	for _, item := range dto.Items {
		sum += item.UnitPriceCents * int64(item.Qty)
	}
	if sum != dto.AmountCents {
		t.Fatalf("amount %d does not match line totals %d", dto.AmountCents, sum)
	}
}

func TestCreateGuestOrder(t *testing.T) {
	svc := buildOrderService(t, newStubOrderRepo(), newStubProductFinder())

	dto, err := svc.Create(context.Background(), nil, CreateOrderRequest{
		Items: []OrderItemInput{
			{Title: "Pulsera artesanal", UnitPriceCents: 45000, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("create guest order: %v", err)
	}
	if dto.UserID != nil {
		t.Fatalf("expected guest order without user id")
	}
	if dto.AmountCents != 45000 {
		t.Fatalf("unexpected amount %d", dto.AmountCents)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := buildOrderService(t, newStubOrderRepo(), newStubProductFinder())

	cases := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"empty items", CreateOrderRequest{}},
		{"zero qty", CreateOrderRequest{Items: []OrderItemInput{{Title: "x", UnitPriceCents: 100, Qty: 0}}}},
		{"negative price", CreateOrderRequest{Items: []OrderItemInput{{Title: "x", UnitPriceCents: -1, Qty: 1}}}},
		{"missing title", CreateOrderRequest{Items: []OrderItemInput{{UnitPriceCents: 100, Qty: 1}}}},
		{"unknown product", CreateOrderRequest{Items: []OrderItemInput{{ProductID: ptrUUID(uuid.New()), Qty: 1}}}},
		{"bad currency", CreateOrderRequest{Currency: "EUR", Items: []OrderItemInput{{Title: "x", UnitPriceCents: 100, Qty: 1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), nil, tc.req)
			domainErr := pkgerrors.As(err)
			if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	owner := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: &owner, Status: enums.OrderStatusPending}
	svc := buildOrderService(t, newStubOrderRepo(order), newStubProductFinder())

	// owner sees it
	if _, err := svc.Get(context.Background(), Actor{UserID: &owner, Role: enums.UserRoleCustomer}, order.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	// stranger gets not found, not forbidden
	stranger := uuid.New()
	_, err := svc.Get(context.Background(), Actor{UserID: &stranger, Role: enums.UserRoleCustomer}, order.ID)
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for stranger, got %v", err)
	}

	// admin sees everything
	if _, err := svc.Get(context.Background(), Actor{Role: enums.UserRoleAdmin}, order.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	repo := newStubOrderRepo(order)
	svc := buildOrderService(t, repo, newStubProductFinder())

	dto, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: enums.OrderStatusPaid})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if dto.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", dto.Status)
	}

	// paid cannot jump straight to delivered
	_, err = svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: enums.OrderStatusDelivered})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// same status is a no-op
	if _, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: enums.OrderStatusPaid}); err != nil {
		t.Fatalf("idempotent update: %v", err)
	}
}

func TestListMineNewestFirst(t *testing.T) {
	userID := uuid.New()
	older := &models.Order{ID: uuid.New(), UserID: &userID, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Order{ID: uuid.New(), UserID: &userID, CreatedAt: time.Now()}
	other := &models.Order{ID: uuid.New()}
	svc := buildOrderService(t, newStubOrderRepo(older, newer, other), newStubProductFinder())

	list, err := svc.ListMine(context.Background(), userID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	if list[0].ID != newer.ID {
		t.Fatalf("expected newest first")
	}
}

func TestListAllPaginates(t *testing.T) {
	repo := newStubOrderRepo(
		&models.Order{ID: uuid.New(), CreatedAt: time.Now()},
		&models.Order{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Minute)},
		&models.Order{ID: uuid.New(), CreatedAt: time.Now().Add(-2 * time.Minute)},
	)
	svc := buildOrderService(t, repo, newStubProductFinder())

	list, page, err := svc.ListAll(context.Background(), pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(list) != 2 || page.Total != 3 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: items=%d meta=%+v", len(list), page)
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
