package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/internal/orders"
	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
	"github.com/magusbylili/storefront-backend/pkg/wompi"
)

const (
	webhookEventTransactionUpdated = "transaction.updated"
	webhookDedupTTL                = 24 * time.Hour
	webhookDedupScope              = "wompi_event"
)

// Service drives gateway transactions and webhook reconciliation.
type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error)
	GetTransaction(ctx context.Context, transactionID string) (*TransactionStatusResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, timestampHeader, signatureHeader string) error
}

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetPaymentRef(ctx context.Context, id uuid.UUID, paymentRef string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (int64, error)
}

type gateway interface {
	CreateTransaction(ctx context.Context, params wompi.TransactionCreateParams) (*wompi.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*wompi.Transaction, error)
	EventsSecret() string
	IsMock() bool
}

type dedupStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	Orders  orderRepository
	Gateway gateway
	Dedup   dedupStore
	Logger  *logger.Logger
	Wompi   config.WompiConfig
}

type service struct {
	orders  orderRepository
	gateway gateway
	dedup   dedupStore
	logger  *logger.Logger
	cfg     config.WompiConfig
}

// NewService constructs the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client is required")
	}
	if params.Dedup == nil {
		return nil, fmt.Errorf("dedup store is required")
	}
	return &service{
		orders:  params.Orders,
		gateway: params.Gateway,
		dedup:   params.Dedup,
		logger:  params.Logger,
		cfg:     params.Wompi,
	}, nil
}

// CreatePayment starts a gateway transaction for a pending order, stores the
// transaction id as the order's payment reference, and applies whatever
// status the gateway already reports.
func (s *service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if req.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if req.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if req.PaymentSourceID <= 0 && !req.PaymentMethod.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a payment method or payment source is required")
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s, only pending orders can be paid", order.Status))
	}

	txn, err := s.gateway.CreateTransaction(ctx, wompi.TransactionCreateParams{
		AmountInCents:   order.AmountCents,
		Currency:        order.Currency,
		CustomerEmail:   req.CustomerEmail,
		Reference:       order.ID.String(),
		PaymentMethod:   req.PaymentMethod,
		PaymentSourceID: req.PaymentSourceID,
		RedirectURL:     req.RedirectURL,
		MockStatus:      req.MockStatus,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentRef(ctx, order.ID, txn.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store payment reference")
	}
	order.PaymentRef = &txn.ID

	if err := s.applyGatewayStatus(ctx, order, txn.Status); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		TransactionID: txn.ID,
		GatewayStatus: txn.Status,
		Order:         orders.FromModel(order),
	}, nil
}

// GetTransaction proxies a transaction status poll.
func (s *service) GetTransaction(ctx context.Context, transactionID string) (*TransactionStatusResponse, error) {
	txn, err := s.gateway.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return &TransactionStatusResponse{
		TransactionID: txn.ID,
		GatewayStatus: txn.Status,
		Reference:     txn.Reference,
		AmountInCents: txn.AmountInCents,
	}, nil
}

// HandleWebhook verifies, deduplicates, and applies a gateway event. Replays
// and events for orders already in a terminal state are acknowledged without
// changes so the gateway stops retrying.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, timestampHeader, signatureHeader string) error {
	if !s.gateway.IsMock() {
		err := wompi.ValidateSignature(payload, timestampHeader, signatureHeader,
			s.gateway.EventsSecret(), time.Now().UTC(), s.cfg.ReplayWindow)
		if err != nil {
			return err
		}
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}
	if event.Event != webhookEventTransactionUpdated {
		if s.logger != nil {
			s.logger.Info(s.logger.WithField(ctx, "event", event.Event), "ignoring unhandled webhook event")
		}
		return nil
	}

	txn := event.Data.Transaction
	if txn.ID == "" || txn.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook transaction is missing id or reference")
	}

	status, err := enums.ParseGatewayStatus(txn.Status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "webhook transaction status")
	}

	orderID, err := uuid.Parse(txn.Reference)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook reference is not an order id")
	}

	// one delivery per transaction+status; retries of the same event are acked
	dedupKey := s.dedup.IdempotencyKey(webhookDedupScope, txn.ID+":"+txn.Status)
	fresh, err := s.dedup.SetNX(ctx, dedupKey, time.Now().UTC().Format(time.RFC3339), webhookDedupTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook dedup check")
	}
	if !fresh {
		return nil
	}

	if err := s.applyWebhookEvent(ctx, orderID, status); err != nil {
		// the gateway retries on error responses; release the claim so the
		// retry is not swallowed as a duplicate while the order stays stale
		if delErr := s.dedup.Del(ctx, dedupKey); delErr != nil && s.logger != nil {
			s.logger.Error(ctx, "releasing webhook dedup key", delErr)
		}
		return err
	}
	return nil
}

func (s *service) applyWebhookEvent(ctx context.Context, orderID uuid.UUID, status enums.GatewayStatus) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for webhook reference")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return s.applyGatewayStatus(ctx, order, status)
}

// applyGatewayStatus moves the order according to the gateway outcome. Local
// terminal or already-progressed statuses win; the update carries a status
// precondition so concurrent webhooks cannot clobber each other.
func (s *service) applyGatewayStatus(ctx context.Context, order *models.Order, gwStatus enums.GatewayStatus) error {
	target, ok := OrderStatusForGateway(gwStatus)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unmapped gateway status %q", gwStatus))
	}
	if target == order.Status {
		return nil
	}
	if !order.Status.CanTransitionTo(target) {
		if s.logger != nil {
			ctx = s.logger.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"from":     order.Status.String(),
				"to":       target.String(),
			})
			s.logger.Warn(ctx, "gateway status ignored, local order state wins")
		}
		return nil
	}

	changed, err := s.orders.UpdateStatus(ctx, order.ID, order.Status, target)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if changed == 0 {
		// another writer moved the order first; its outcome stands
		return nil
	}
	order.Status = target
	return nil
}
