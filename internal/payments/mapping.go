package payments

import "github.com/magusbylili/storefront-backend/pkg/enums"

// OrderStatusForGateway maps a gateway transaction status onto the local
// order lifecycle. The second return is false for statuses that must not
// touch the order (unknown values included).
func OrderStatusForGateway(status enums.GatewayStatus) (enums.OrderStatus, bool) {
	switch status {
	case enums.GatewayStatusApproved:
		return enums.OrderStatusPaid, true
	case enums.GatewayStatusDeclined, enums.GatewayStatusError, enums.GatewayStatusVoided:
		return enums.OrderStatusCancelled, true
	case enums.GatewayStatusPending:
		return enums.OrderStatusPending, true
	default:
		return "", false
	}
}
