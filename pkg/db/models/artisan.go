package models

import (
	"time"

	"github.com/google/uuid"
)

// Artisan is a seller profile owned by a user. Orders group by artisan at
// checkout, so every order row carries one artisan.
type Artisan struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	ShopName    string    `gorm:"column:shop_name;type:text;not null"`
	Description *string   `gorm:"column:description"`
	Phone       *string   `gorm:"column:phone"`
	// Pickup coordinates and address feed courier quotations.
	AddressLine string    `gorm:"column:address_line;type:text;not null"`
	Latitude    *string   `gorm:"column:latitude"`
	Longitude   *string   `gorm:"column:longitude"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
