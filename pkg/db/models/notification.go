package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// Notification is an in-app message delivered to a user on an order event.
type Notification struct {
	ID        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID   *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	Event     enums.NotificationEvent `gorm:"column:event;type:text;not null"`
	Title     string                  `gorm:"column:title;type:text;not null"`
	Body      string                  `gorm:"column:body;type:text;not null"`
	ReadAt    *time.Time              `gorm:"column:read_at"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime;index"`
}
