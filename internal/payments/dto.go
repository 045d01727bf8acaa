package payments

import (
	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/internal/orders"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	"github.com/magusbylili/storefront-backend/pkg/wompi"
)

// CreatePaymentRequest starts a gateway transaction for a pending order.
type CreatePaymentRequest struct {
	OrderID       uuid.UUID                `json:"order_id" validate:"required"`
	CustomerEmail string                   `json:"customer_email" validate:"required,email"`
	PaymentMethod wompi.PaymentMethodInput `json:"payment_method,omitempty"`
	// PaymentSourceID charges a previously tokenized payment source instead
	// of an inline payment method.
	PaymentSourceID int64  `json:"payment_source_id,omitempty" validate:"omitempty,gt=0"`
	RedirectURL     string `json:"redirect_url,omitempty" validate:"omitempty,url"`
	// MockStatus steers synthesized transactions when the gateway runs in mock mode.
	MockStatus enums.GatewayStatus `json:"mock_status,omitempty"`
}

// PaymentResponse reports the transaction and the order it settled against.
type PaymentResponse struct {
	TransactionID string              `json:"transaction_id"`
	GatewayStatus enums.GatewayStatus `json:"gateway_status"`
	Order         *orders.OrderDTO    `json:"order"`
}

// TransactionStatusResponse is the polling shape for a gateway transaction.
type TransactionStatusResponse struct {
	TransactionID string              `json:"transaction_id"`
	GatewayStatus enums.GatewayStatus `json:"gateway_status"`
	Reference     string              `json:"reference,omitempty"`
	AmountInCents int64               `json:"amount_in_cents,omitempty"`
}

// WebhookEvent mirrors the gateway's event envelope.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Transaction struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			Reference     string `json:"reference"`
			AmountInCents int64  `json:"amount_in_cents"`
		} `json:"transaction"`
	} `json:"data"`
	SentAt string `json:"sent_at,omitempty"`
}
