package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// PaymentProof is buyer-submitted evidence of a GCash transfer awaiting
// artisan verification.
type PaymentProof struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	Type          enums.PaymentProofType `gorm:"column:type;type:text;not null"`
	ImageURL      string                 `gorm:"column:image_url;type:text;not null"`
	Amount        decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	ReferenceNo   *string                `gorm:"column:reference_no"`
	SenderAccount *string                `gorm:"column:sender_account"`
	PaymentSource *string                `gorm:"column:payment_source"`
	ExtractedText *string                `gorm:"column:extracted_text"`
	Verified      bool                   `gorm:"column:verified;not null;default:false"`
	VerifiedAt    *time.Time             `gorm:"column:verified_at"`
	RejectedAt    *time.Time             `gorm:"column:rejected_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
