package enums

import "fmt"

// OrderStatus tracks the lifecycle of a marketplace order.
type OrderStatus string

const (
	OrderStatusAwaitingPayment      OrderStatus = "awaiting_payment"
	OrderStatusAwaitingVerification OrderStatus = "awaiting_verification"
	OrderStatusProcessing           OrderStatus = "processing"
	OrderStatusReadyToShip          OrderStatus = "ready_to_ship"
	OrderStatusShipped              OrderStatus = "shipped"
	OrderStatusInTransit            OrderStatus = "in_transit"
	OrderStatusDelivered            OrderStatus = "delivered"
	OrderStatusToReview             OrderStatus = "to_review"
	OrderStatusCompleted            OrderStatus = "completed"
	OrderStatusCancelled            OrderStatus = "cancelled"
	OrderStatusRefund               OrderStatus = "refund"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusAwaitingPayment,
	OrderStatusAwaitingVerification,
	OrderStatusProcessing,
	OrderStatusReadyToShip,
	OrderStatusShipped,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusToReview,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefund,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
