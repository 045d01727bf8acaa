package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/magusbylili/storefront-backend/api/responses"
	"github.com/magusbylili/storefront-backend/api/validators"
	"github.com/magusbylili/storefront-backend/internal/payments"
	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
)

// GatewayConfigResponse is the public checkout configuration the
// storefront needs to initialize the Wompi widget.
type GatewayConfigResponse struct {
	PublicKey   string `json:"public_key"`
	Environment string `json:"environment"`
	Currency    string `json:"currency"`
}

// PaymentGatewayConfig serves the gateway public key and environment.
// Only publishable values leave this handler; secrets stay server-side.
func PaymentGatewayConfig(cfg config.WompiConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(cfg.PublicKey) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured"))
			return
		}

		responses.WriteSuccess(w, GatewayConfigResponse{
			PublicKey:   cfg.PublicKey,
			Environment: cfg.Environment(),
			Currency:    enums.CurrencyCOP.String(),
		})
	}
}

// PaymentCreate starts a gateway transaction for a pending order.
func PaymentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var body payments.CreatePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePayment(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PaymentTransactionStatus polls a gateway transaction.
func PaymentTransactionStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		transactionID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
		if transactionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required"))
			return
		}

		result, err := svc.GetTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
