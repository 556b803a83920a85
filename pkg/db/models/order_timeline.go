package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// OrderTimeline is the append-only transition log of an order. One row is
// written inside the same transaction as every status change.
type OrderTimeline struct {
	ID         uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status;type:text"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;type:text;not null"`
	Actor      string             `gorm:"column:actor;type:text;not null"`
	Note       *string            `gorm:"column:note"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
