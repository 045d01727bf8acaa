package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/pkg/enums"
	"github.com/magusbylili/storefront-backend/pkg/types"
)

// Order represents a placed order with its snapshotted line items. UserID is
// nil for guest checkouts.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	AmountCents int64             `gorm:"column:amount_cents;not null"`
	Currency    enums.Currency    `gorm:"column:currency;not null;default:'COP'"`
	Status      enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	PaymentRef  *string           `gorm:"column:payment_ref;index"`
	Address     *types.Address    `gorm:"column:address;type:jsonb;serializer:json"`
	Items       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
