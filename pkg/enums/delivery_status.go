package enums

import "fmt"

// DeliveryStatus mirrors the courier-side lifecycle of a booking.
type DeliveryStatus string

const (
	DeliveryStatusQuotationAttached DeliveryStatus = "quotation_attached"
	DeliveryStatusAssigningDriver   DeliveryStatus = "assigning_driver"
	DeliveryStatusPickedUp          DeliveryStatus = "picked_up"
	DeliveryStatusOnGoingDelivery   DeliveryStatus = "on_going_delivery"
	DeliveryStatusDelivered         DeliveryStatus = "delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusQuotationAttached,
	DeliveryStatusAssigningDriver,
	DeliveryStatusPickedUp,
	DeliveryStatusOnGoingDelivery,
	DeliveryStatusDelivered,
}

// String implements fmt.Stringer.
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
