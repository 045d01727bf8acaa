package webhooks

import (
	"io"
	"net/http"

	"github.com/magusbylili/storefront-backend/api/responses"
	"github.com/magusbylili/storefront-backend/internal/payments"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
)

const (
	timestampHeader = "X-Wompi-Timestamp"
	signatureHeader = "X-Wompi-Signature"
)

// WompiWebhook receives gateway events and hands them to the payment
// service. Successful handling always answers 200 so the gateway stops
// retrying, including replays the service chose to ignore.
func WompiWebhook(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := svc.HandleWebhook(ctx, payload, r.Header.Get(timestampHeader), r.Header.Get(signatureHeader)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
