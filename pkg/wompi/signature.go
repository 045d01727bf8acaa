package wompi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
)

// ValidateSignature verifies a webhook payload against its signature header.
// The expected signature is hex(HMAC-SHA256(secret, timestamp + "." + payload)).
// Events whose timestamp falls outside the replay window relative to now are
// rejected even when the signature matches.
func ValidateSignature(payload []byte, timestampHeader, signatureHeader, secret string, now time.Time, window time.Duration) error {
	if strings.TrimSpace(secret) == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "webhook secret is not configured")
	}

	ts := strings.TrimSpace(timestampHeader)
	if ts == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook timestamp")
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook timestamp")
	}

	if window > 0 {
		eventTime := time.Unix(unix, 0)
		drift := now.Sub(eventTime)
		if drift < 0 {
			drift = -drift
		}
		if drift > window {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook timestamp outside accepted window")
		}
	}

	provided := strings.TrimSpace(signatureHeader)
	if provided == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook signature")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}
	return nil
}
