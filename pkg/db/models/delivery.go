package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// Delivery is the courier booking attached to an order. QuotationID is
// unique so a courier webhook resolves to exactly one order. The quotation
// is time-limited; bookings past QuotationExpiresAt are rejected.
type Delivery struct {
	ID                 uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	QuotationID        string               `gorm:"column:quotation_id;type:text;not null;uniqueIndex"`
	PickupStopID       string               `gorm:"column:pickup_stop_id;type:text;not null"`
	DropoffStopID      string               `gorm:"column:dropoff_stop_id;type:text;not null"`
	CourierOrderID     *string              `gorm:"column:courier_order_id;type:text;uniqueIndex"`
	Status             enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'quotation_attached'"`
	Fee                decimal.Decimal      `gorm:"column:fee;type:numeric(12,2);not null"`
	DistanceM          int64                `gorm:"column:distance_m;not null;default:0"`
	DriverName         *string              `gorm:"column:driver_name"`
	DriverPhone        *string              `gorm:"column:driver_phone"`
	ShareLink          *string              `gorm:"column:share_link"`
	PODImageURL        *string              `gorm:"column:pod_image_url"`
	QuotedAt           time.Time            `gorm:"column:quoted_at;not null"`
	QuotationExpiresAt time.Time            `gorm:"column:quotation_expires_at;not null"`
	BookedAt           *time.Time           `gorm:"column:booked_at"`
	DeliveredAt        *time.Time           `gorm:"column:delivered_at"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
