package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// Refund tracks a buyer's refund request on an order. At most one refund
// exists per order.
type Refund struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Status      enums.RefundStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason      string             `gorm:"column:reason;type:text;not null"`
	ProofURL    *string            `gorm:"column:proof_url"`
	RequestedAt time.Time          `gorm:"column:requested_at;not null"`
	ProcessedAt *time.Time         `gorm:"column:processed_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
