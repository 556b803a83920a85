package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
)

// UploadProofInput carries a buyer's payment evidence submission.
type UploadProofInput struct {
	OrderID       uuid.UUID
	BuyerID       uuid.UUID
	Type          enums.PaymentProofType
	ImageURL      string
	Amount        decimal.Decimal
	ReferenceNo   *string
	SenderAccount *string
	PaymentSource *string
}

// VerifyPaymentInput is the artisan's approve/reject decision on a proof.
type VerifyPaymentInput struct {
	OrderID   uuid.UUID
	ProofID   uuid.UUID
	ArtisanID uuid.UUID
	Approve   bool
	Note      *string
}

// CancelInput is a buyer's cancellation request.
type CancelInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Reason  string
}

// RequestRefundInput opens a refund on a delivered order.
type RequestRefundInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Reason  string
}

// RefundDecision is the action an artisan can take on a pending refund.
type RefundDecision string

const (
	RefundDecisionProcess  RefundDecision = "process"
	RefundDecisionWithdraw RefundDecision = "withdraw"
)

// RefundDecisionInput resolves a pending refund. ProofURL and Amount are
// required when processing; a withdrawn request carries neither.
type RefundDecisionInput struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
	Decision  RefundDecision
	ProofURL  *string
	Amount    *decimal.Decimal
	Note      *string
}

// ConfirmReceivedInput acknowledges delivery on the buyer's side.
type ConfirmReceivedInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
}

// MarkItemReviewedInput flags a single order item as reviewed.
type MarkItemReviewedInput struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
	BuyerID uuid.UUID
}

// GetOrderInput loads one order for either of its two parties.
type GetOrderInput struct {
	OrderID   uuid.UUID
	UserID    uuid.UUID
	ArtisanID *uuid.UUID
}
