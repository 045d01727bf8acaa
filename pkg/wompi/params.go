package wompi

import (
	"github.com/magusbylili/storefront-backend/pkg/enums"
)

// TransactionCreateParams contains the fields required to start a Wompi transaction.
type TransactionCreateParams struct {
	AmountInCents int64
	Currency      enums.Currency
	CustomerEmail string
	Reference     string
	PaymentMethod PaymentMethodInput
	// PaymentSourceID references a stored payment source; when set the
	// gateway charges it instead of the inline payment method.
	PaymentSourceID int64
	RedirectURL     string
	// MockStatus lets callers steer the synthesized transaction in mock mode.
	MockStatus enums.GatewayStatus
}

// PaymentMethodInput mirrors the gateway's payment_method object.
type PaymentMethodInput struct {
	Type         enums.PaymentMethod `json:"type"`
	Token        string              `json:"token,omitempty"`
	Installments int                 `json:"installments,omitempty"`
	PhoneNumber  string              `json:"phone_number,omitempty"`
}

type transactionRequest struct {
	AcceptanceToken string              `json:"acceptance_token"`
	AmountInCents   int64               `json:"amount_in_cents"`
	Currency        string              `json:"currency"`
	CustomerEmail   string              `json:"customer_email"`
	Reference       string              `json:"reference"`
	PaymentMethod   *PaymentMethodInput `json:"payment_method,omitempty"`
	PaymentSourceID int64               `json:"payment_source_id,omitempty"`
	RedirectURL     string              `json:"redirect_url,omitempty"`
}

// Transaction is the gateway's transaction resource.
type Transaction struct {
	ID            string              `json:"id"`
	AmountInCents int64               `json:"amount_in_cents"`
	Currency      string              `json:"currency"`
	Reference     string              `json:"reference"`
	CustomerEmail string              `json:"customer_email"`
	Status        enums.GatewayStatus `json:"status"`
	StatusMessage string              `json:"status_message,omitempty"`
	PaymentMethod struct {
		Type string `json:"type"`
	} `json:"payment_method"`
	CreatedAt string `json:"created_at"`
}

type transactionEnvelope struct {
	Data Transaction `json:"data"`
}

type gatewayErrorBody struct {
	Error struct {
		Type     string              `json:"type"`
		Reason   string              `json:"reason"`
		Messages map[string][]string `json:"messages"`
	} `json:"error"`
}
