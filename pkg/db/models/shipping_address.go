package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is a buyer-saved drop-off location.
type ShippingAddress struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	RecipientName string    `gorm:"column:recipient_name;type:text;not null"`
	Phone         string    `gorm:"column:phone;type:text;not null"`
	AddressLine   string    `gorm:"column:address_line;type:text;not null"`
	Barangay      *string   `gorm:"column:barangay"`
	City          string    `gorm:"column:city;type:text;not null"`
	Province      string    `gorm:"column:province;type:text;not null"`
	PostalCode    *string   `gorm:"column:postal_code"`
	Latitude      *string   `gorm:"column:latitude"`
	Longitude     *string   `gorm:"column:longitude"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
