package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/pkg/db/models"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	"github.com/magusbylili/storefront-backend/pkg/types"
)

// OrderItemInput is one line of a checkout payload. When ProductID is set the
// title and unit price are snapshotted from the catalog and the client-sent
// values are ignored; otherwise both must be provided.
type OrderItemInput struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Title          string     `json:"title,omitempty" validate:"omitempty,max=200"`
	UnitPriceCents int64      `json:"unit_price_cents,omitempty" validate:"gte=0"`
	Qty            int        `json:"qty" validate:"required,gt=0"`
}

// CreateOrderRequest is the checkout payload for both guests and members.
type CreateOrderRequest struct {
	Items    []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Currency enums.Currency   `json:"currency,omitempty"`
	Address  *types.Address   `json:"address,omitempty"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// OrderItemDTO is the transport shape of a snapshotted line item.
type OrderItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Title          string     `json:"title"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	AmountCents int64             `json:"amount_cents"`
	Currency    enums.Currency    `json:"currency"`
	Status      enums.OrderStatus `json:"status"`
	PaymentRef  *string           `json:"payment_ref,omitempty"`
	Address     *types.Address    `json:"address,omitempty"`
	Items       []OrderItemDTO    `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
		})
	}
	return &OrderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		AmountCents: o.AmountCents,
		Currency:    o.Currency,
		Status:      o.Status,
		PaymentRef:  o.PaymentRef,
		Address:     o.Address,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
