package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing owned by one artisan.
type Product struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ArtisanID    uuid.UUID        `gorm:"column:artisan_id;type:uuid;not null;index"`
	Name         string           `gorm:"column:name;type:text;not null"`
	Description  *string          `gorm:"column:description"`
	RegularPrice decimal.Decimal  `gorm:"column:regular_price;type:numeric(12,2);not null"`
	SalesPrice   *decimal.Decimal `gorm:"column:sales_price;type:numeric(12,2)"`
	Stock        int              `gorm:"column:stock;not null;default:0"`
	// Pre-order items are made to order; they ship only after a verified
	// downpayment and are excluded from cash on delivery.
	IsPreorder bool      `gorm:"column:is_preorder;not null;default:false"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the sales price when set, otherwise the regular
// price. Order items snapshot this value at checkout.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalesPrice != nil {
		return *p.SalesPrice
	}
	return p.RegularPrice
}
