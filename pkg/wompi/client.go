package wompi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
	mockEnv       = "mock"
)

var (
	errPrivateKeyRequired   = errors.New("wompi private key is required")
	errEventsSecretRequired = errors.New("wompi events secret is required")
	errInvalidWompiEnv      = fmt.Errorf("wompi mode must be %q, %q, or %q", sandboxEnv, productionEnv, mockEnv)
	errLoggerRequired       = errors.New("wompi logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://api-sandbox.wompi.co/v1",
	productionEnv: "https://api.wompi.co/v1",
}

// Client exposes Wompi transaction primitives with centralized auth, logging,
// and error mapping. In mock mode no network calls are made and transactions
// are synthesized locally.
type Client struct {
	httpClient      *http.Client
	privateKey      string
	acceptanceToken string
	eventsSecret    string
	environment     string
	baseURL         string
	logger          *logger.Logger
}

// NewClient initializes the Wompi wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.WompiConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env := cfg.Environment()
	if env != sandboxEnv && env != productionEnv && env != mockEnv {
		return nil, errInvalidWompiEnv
	}

	privateKey := strings.TrimSpace(cfg.PrivateKey)
	eventsSecret := strings.TrimSpace(cfg.EventsSecret)
	if env != mockEnv {
		if privateKey == "" {
			return nil, errPrivateKeyRequired
		}
		if eventsSecret == "" {
			return nil, errEventsSecretRequired
		}
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		privateKey:      privateKey,
		acceptanceToken: strings.TrimSpace(cfg.AcceptanceToken),
		eventsSecret:    eventsSecret,
		environment:     env,
		baseURL:         baseURLs[env],
		logger:          logg,
	}

	logg.Info(ctx, fmt.Sprintf("wompi client initialized (%s)", env))
	return c, nil
}

// Environment reports the normalized gateway mode.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// EventsSecret returns the webhook signing secret.
func (c *Client) EventsSecret() string {
	if c == nil {
		return ""
	}
	return c.eventsSecret
}

// IsMock reports whether the client synthesizes transactions locally.
func (c *Client) IsMock() bool {
	return c != nil && c.environment == mockEnv
}

// CreateTransaction starts a gateway transaction for the given params.
func (c *Client) CreateTransaction(ctx context.Context, params TransactionCreateParams) (*Transaction, error) {
	if params.AmountInCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !params.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", params.Currency))
	}
	if strings.TrimSpace(params.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if params.PaymentSourceID <= 0 && !params.PaymentMethod.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a payment method or payment source is required")
	}

	if c.IsMock() {
		return c.mockTransaction(ctx, params), nil
	}

	req := transactionRequest{
		AcceptanceToken: c.acceptanceToken,
		AmountInCents:   params.AmountInCents,
		Currency:        params.Currency.String(),
		CustomerEmail:   params.CustomerEmail,
		Reference:       params.Reference,
		PaymentSourceID: params.PaymentSourceID,
		RedirectURL:     params.RedirectURL,
	}
	if params.PaymentMethod.Type.IsValid() {
		method := params.PaymentMethod
		req.PaymentMethod = &method
	}

	c.log(ctx, "request", "create_transaction", map[string]any{
		"reference": params.Reference,
		"amount":    params.AmountInCents,
		"currency":  params.Currency.String(),
	})

	var envelope transactionEnvelope
	if err := c.do(ctx, http.MethodPost, "/transactions", req, &envelope); err != nil {
		c.log(ctx, "error", "create_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_transaction", map[string]any{
		"transaction_id": envelope.Data.ID,
		"status":         envelope.Data.Status.String(),
	})
	return &envelope.Data, nil
}

// GetTransaction fetches the current state of a gateway transaction.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	if c.IsMock() {
		return &Transaction{
			ID:     id,
			Status: enums.GatewayStatusApproved,
		}, nil
	}

	c.log(ctx, "request", "get_transaction", map[string]any{"transaction_id": id})

	var envelope transactionEnvelope
	if err := c.do(ctx, http.MethodGet, "/transactions/"+id, nil, &envelope); err != nil {
		c.log(ctx, "error", "get_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_transaction", map[string]any{
		"transaction_id": envelope.Data.ID,
		"status":         envelope.Data.Status.String(),
	})
	return &envelope.Data, nil
}

func (c *Client) mockTransaction(ctx context.Context, params TransactionCreateParams) *Transaction {
	status := params.MockStatus
	if !status.IsValid() {
		status = enums.GatewayStatusApproved
	}
	txn := &Transaction{
		ID:            "mock_" + uuid.NewString(),
		AmountInCents: params.AmountInCents,
		Currency:      params.Currency.String(),
		Reference:     params.Reference,
		CustomerEmail: params.CustomerEmail,
		Status:        status,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	c.log(ctx, "response", "create_transaction", map[string]any{
		"transaction_id": txn.ID,
		"status":         txn.Status.String(),
		"mock":           true,
	})
	return txn
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding gateway request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.privateKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "reading gateway response")
	}

	if resp.StatusCode >= 500 {
		return pkgerrors.New(pkgerrors.CodeGatewayUnavailable, fmt.Sprintf("payment gateway returned %d", resp.StatusCode))
	}
	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	if resp.StatusCode >= 400 {
		return c.rejectionError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "decoding gateway response")
		}
	}
	return nil
}

func (c *Client) rejectionError(status int, raw []byte) error {
	domainErr := pkgerrors.New(pkgerrors.CodeGatewayRejected, fmt.Sprintf("payment gateway rejected the request (%d)", status))

	var body gatewayErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Type != "" {
		details := map[string]any{"type": body.Error.Type}
		if body.Error.Reason != "" {
			details["reason"] = body.Error.Reason
		}
		if len(body.Error.Messages) > 0 {
			details["messages"] = body.Error.Messages
		}
		return domainErr.WithDetails(details)
	}
	return domainErr
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("wompi %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("wompi %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
