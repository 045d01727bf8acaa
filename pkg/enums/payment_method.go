package enums

import "fmt"

// PaymentMethod is the tender type sent to the payment gateway.
type PaymentMethod string

const (
	PaymentMethodCard                PaymentMethod = "CARD"
	PaymentMethodNequi               PaymentMethod = "NEQUI"
	PaymentMethodPSE                 PaymentMethod = "PSE"
	PaymentMethodBancolombiaTransfer PaymentMethod = "BANCOLOMBIA_TRANSFER"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodNequi,
	PaymentMethodPSE,
	PaymentMethodBancolombiaTransfer,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the method is supported.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
