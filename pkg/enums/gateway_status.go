package enums

import "fmt"

// GatewayStatus is the transaction status reported by the payment gateway.
type GatewayStatus string

const (
	GatewayStatusApproved GatewayStatus = "APPROVED"
	GatewayStatusDeclined GatewayStatus = "DECLINED"
	GatewayStatusError    GatewayStatus = "ERROR"
	GatewayStatusPending  GatewayStatus = "PENDING"
	GatewayStatusVoided   GatewayStatus = "VOIDED"
)

var validGatewayStatuses = []GatewayStatus{
	GatewayStatusApproved,
	GatewayStatusDeclined,
	GatewayStatusError,
	GatewayStatusPending,
	GatewayStatusVoided,
}

// String implements fmt.Stringer.
func (s GatewayStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a status the gateway can report.
func (s GatewayStatus) IsValid() bool {
	for _, candidate := range validGatewayStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseGatewayStatus converts raw gateway input into a GatewayStatus.
func ParseGatewayStatus(value string) (GatewayStatus, error) {
	for _, candidate := range validGatewayStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway status %q", value)
}
