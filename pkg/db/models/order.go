package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// Order is one artisan's slice of a checkout. A multi-artisan cart yields
// one Order per artisan, each moving through the lifecycle independently.
// Amount columns are snapshots computed once at checkout; PartialPayment is
// the amount due up front and CODPayment the balance collected on delivery,
// so the two always sum to GrandTotal.
type Order struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string              `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	BuyerID             uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	ArtisanID           uuid.UUID           `gorm:"column:artisan_id;type:uuid;not null;index"`
	ShippingAddressID   uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	Status              enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'awaiting_payment';index"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	ItemsSubtotal       decimal.Decimal     `gorm:"column:items_subtotal;type:numeric(12,2);not null"`
	ShippingFee         decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	GrandTotal          decimal.Decimal     `gorm:"column:grand_total;type:numeric(12,2);not null"`
	DownpaymentRequired bool                `gorm:"column:downpayment_required;not null;default:false"`
	DownpaymentDue      decimal.Decimal     `gorm:"column:downpayment_due;type:numeric(12,2);not null;default:0"`
	PartialPayment      decimal.Decimal     `gorm:"column:partial_payment;type:numeric(12,2);not null;default:0"`
	CODPayment          decimal.Decimal     `gorm:"column:cod_payment;type:numeric(12,2);not null;default:0"`
	PaymentVerified     bool                `gorm:"column:payment_verified;not null;default:false"`
	PlatformFee         *decimal.Decimal    `gorm:"column:platform_fee;type:numeric(12,2)"`
	ArtisanPayout       *decimal.Decimal    `gorm:"column:artisan_payout;type:numeric(12,2)"`
	ContainsPreorder    bool                `gorm:"column:contains_preorder;not null;default:false"`
	MessageToSeller     *string             `gorm:"column:message_to_seller"`
	DeliveredAt         *time.Time          `gorm:"column:delivered_at"`
	CancelledAt         *time.Time          `gorm:"column:cancelled_at"`
	CompletedAt         *time.Time          `gorm:"column:completed_at"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery            *Delivery           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentProofs       []PaymentProof      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Refund              *Refund             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline            []OrderTimeline     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
