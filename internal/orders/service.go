package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/pkg/db"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/money"
	"github.com/tahanancrafts/marketplace-backend/pkg/ocr"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier fans out order events. Implementations must swallow their own
// failures; a notification must never fail the transition that caused it.
type Notifier interface {
	Notify(ctx context.Context, event enums.NotificationEvent, order *models.Order)
}

// Service defines the order lifecycle operations.
type Service interface {
	UploadPaymentProof(ctx context.Context, input UploadProofInput) (*models.PaymentProof, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) error
	Cancel(ctx context.Context, input CancelInput) error
	RequestRefund(ctx context.Context, input RequestRefundInput) error
	ResolveRefund(ctx context.Context, input RefundDecisionInput) error
	ConfirmReceived(ctx context.Context, input ConfirmReceivedInput) error
	MarkItemReviewed(ctx context.Context, input MarkItemReviewedInput) error
	GetOrder(ctx context.Context, input GetOrderInput) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListArtisanOrders(ctx context.Context, artisanID uuid.UUID, params pagination.Params) ([]models.Order, error)
	EscalateDeliveredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	notifier  Notifier
	extractor ocr.Extractor
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, notifier Notifier, extractor ocr.Extractor, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if extractor == nil {
		extractor = ocr.Noop{}
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		notifier:  notifier,
		extractor: extractor,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) UploadPaymentProof(ctx context.Context, input UploadProofInput) (*models.PaymentProof, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment proof type")
	}
	if input.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof image required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof amount must be positive")
	}

	var proof *models.PaymentProof
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}

		created, err := repo.CreatePaymentProof(ctx, &models.PaymentProof{
			OrderID:       loaded.ID,
			Type:          input.Type,
			ImageURL:      input.ImageURL,
			Amount:        money.Round(input.Amount),
			ReferenceNo:   input.ReferenceNo,
			SenderAccount: input.SenderAccount,
			PaymentSource: input.PaymentSource,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment proof")
		}

		if err := s.transition(ctx, repo, loaded, enums.OrderStatusAwaitingVerification, ActorBuyer, nil, nil); err != nil {
			return err
		}

		proof = created
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.populateExtractedText(ctx, proof)
	s.notifier.Notify(ctx, enums.EventBuyerUploadedProof, order)
	return proof, nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ProofID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof id required")
	}
	if input.ArtisanID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "artisan context missing")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.ArtisanID != input.ArtisanID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to artisan")
		}

		proof, err := repo.FindPaymentProof(ctx, input.ProofID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment proof not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment proof")
		}
		if proof.OrderID != loaded.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "proof does not belong to order")
		}
		if proof.Verified || proof.RejectedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment proof already decided")
		}

		now := s.now().UTC()
		if input.Approve {
			if err := repo.UpdatePaymentProof(ctx, proof.ID, map[string]any{
				"verified":    true,
				"verified_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proof verified")
			}

			split := money.FeeSplit(loaded.ItemsSubtotal, loaded.ShippingFee)
			extra := map[string]any{
				"payment_verified": true,
				"platform_fee":     split.PlatformFee,
				"artisan_payout":   split.ArtisanPayout,
			}
			if err := s.transition(ctx, repo, loaded, enums.OrderStatusProcessing, ActorArtisan, input.Note, extra); err != nil {
				return err
			}
		} else {
			if err := repo.UpdatePaymentProof(ctx, proof.ID, map[string]any{
				"rejected_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark proof rejected")
			}
			extra := map[string]any{"payment_verified": false}
			if err := s.transition(ctx, repo, loaded, enums.OrderStatusAwaitingPayment, ActorArtisan, input.Note, extra); err != nil {
				return err
			}
		}

		order = loaded
		return nil
	})
	if err != nil {
		return err
	}

	if input.Approve {
		s.notifier.Notify(ctx, enums.EventPaymentApproved, order)
	} else {
		s.notifier.Notify(ctx, enums.EventPaymentRejected, order)
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	var order *models.Order
	var refundRequested bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}

		switch loaded.Status {
		case enums.OrderStatusAwaitingPayment, enums.OrderStatusAwaitingVerification:
			if err := s.cancelOrder(ctx, repo, loaded, ActorBuyer, &input.Reason); err != nil {
				return err
			}

		case enums.OrderStatusProcessing:
			paid, err := repo.SumVerifiedProofAmounts(ctx, loaded.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified proofs")
			}
			if paid.IsPositive() {
				// Money changed hands; route through the refund state so the
				// artisan settles before the order closes.
				if _, err := repo.CreateRefund(ctx, &models.Refund{
					OrderID:     loaded.ID,
					Status:      enums.RefundStatusPending,
					Amount:      money.Round(paid),
					Reason:      input.Reason,
					RequestedAt: s.now().UTC(),
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
				}
				if err := s.transition(ctx, repo, loaded, enums.OrderStatusRefund, ActorBuyer, &input.Reason, nil); err != nil {
					return err
				}
				refundRequested = true
			} else {
				if err := s.cancelOrder(ctx, repo, loaded, ActorBuyer, &input.Reason); err != nil {
					return err
				}
			}

		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": loaded.Status})
		}

		order = loaded
		return nil
	})
	if err != nil {
		return err
	}

	if refundRequested {
		s.notifier.Notify(ctx, enums.EventRefundRequested, order)
	} else {
		s.notifier.Notify(ctx, enums.EventOrderCancelled, order)
	}
	return nil
}

func (s *service) RequestRefund(ctx context.Context, input RequestRefundInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund reason required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		if loaded.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refunds can only be requested on delivered orders").
				WithDetails(map[string]any{"status": loaded.Status})
		}

		amount := loaded.GrandTotal
		if paid, err := repo.SumVerifiedProofAmounts(ctx, loaded.ID); err == nil && paid.IsPositive() {
			amount = paid
		}
		if _, err := repo.CreateRefund(ctx, &models.Refund{
			OrderID:     loaded.ID,
			Status:      enums.RefundStatusPending,
			Amount:      money.Round(amount),
			Reason:      input.Reason,
			RequestedAt: s.now().UTC(),
		}); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a refund already exists for this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}
		if err := s.transition(ctx, repo, loaded, enums.OrderStatusRefund, ActorBuyer, &input.Reason, nil); err != nil {
			return err
		}

		order = loaded
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, enums.EventRefundRequested, order)
	return nil
}

func (s *service) ResolveRefund(ctx context.Context, input RefundDecisionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ArtisanID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "artisan context missing")
	}
	if input.Decision != RefundDecisionProcess && input.Decision != RefundDecisionWithdraw {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund decision must be process or withdraw")
	}
	if input.Decision == RefundDecisionProcess && (input.ProofURL == nil || *input.ProofURL == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund proof required to process a refund")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.ArtisanID != input.ArtisanID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to artisan")
		}
		if loaded.Status != enums.OrderStatusRefund {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no refund in progress for order")
		}

		refund, err := repo.FindRefundByOrder(ctx, loaded.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund.Status != enums.RefundStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund already resolved")
		}

		now := s.now().UTC()
		if input.Decision == RefundDecisionProcess {
			updates := map[string]any{
				"status":       enums.RefundStatusProcessed,
				"proof_url":    *input.ProofURL,
				"processed_at": now,
			}
			if input.Amount != nil {
				updates["amount"] = *input.Amount
			}
			if err := repo.UpdateRefund(ctx, refund.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark refund processed")
			}
			// A processed refund closes the order in the refund state. Only
			// the timeline records the resolution.
			from := loaded.Status
			if err := repo.AppendTimeline(ctx, &models.OrderTimeline{
				OrderID:    loaded.ID,
				FromStatus: &from,
				ToStatus:   enums.OrderStatusRefund,
				Actor:      string(ActorArtisan),
				Note:       input.Note,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
			}
		} else {
			// Withdrawn request: return the order to wherever it was when
			// the refund began, per the timeline.
			returnTo := enums.OrderStatusProcessing
			if entry, err := repo.FindLastTransitionTo(ctx, loaded.ID, enums.OrderStatusRefund); err == nil && entry.FromStatus != nil {
				returnTo = *entry.FromStatus
			}
			if err := repo.DeleteRefund(ctx, refund.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete refund")
			}
			if err := s.transition(ctx, repo, loaded, returnTo, ActorArtisan, input.Note, nil); err != nil {
				return err
			}
		}

		order = loaded
		return nil
	})
	if err != nil {
		return err
	}

	if input.Decision == RefundDecisionProcess {
		s.notifier.Notify(ctx, enums.EventRefundProcessed, order)
	} else {
		s.notifier.Notify(ctx, enums.EventRefundCancelled, order)
	}
	return nil
}

func (s *service) ConfirmReceived(ctx context.Context, input ConfirmReceivedInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		return s.transition(ctx, repo, loaded, enums.OrderStatusToReview, ActorBuyer, nil, nil)
	})
}

func (s *service) MarkItemReviewed(ctx context.Context, input MarkItemReviewedInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if loaded.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		if loaded.Status != enums.OrderStatusToReview {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting reviews")
		}

		item, err := repo.FindOrderItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		if item.OrderID != loaded.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to order")
		}
		if !item.IsReviewed {
			if err := repo.UpdateOrderItem(ctx, item.ID, map[string]any{"is_reviewed": true}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item reviewed")
			}
		}

		remaining, err := repo.CountUnreviewedItems(ctx, loaded.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unreviewed items")
		}
		if remaining > 0 {
			return nil
		}

		extra := map[string]any{"completed_at": s.now().UTC()}
		return s.transition(ctx, repo, loaded, enums.OrderStatusCompleted, ActorBuyer, nil, extra)
	})
}

func (s *service) GetOrder(ctx context.Context, input GetOrderInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindOrderDetail(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID == input.UserID {
		return order, nil
	}
	if input.ArtisanID != nil && order.ArtisanID == *input.ArtisanID {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return orders, nil
}

func (s *service) ListArtisanOrders(ctx context.Context, artisanID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	if artisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "artisan context missing")
	}
	orders, err := s.repo.ListByArtisan(ctx, artisanID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artisan orders")
	}
	return orders, nil
}

// EscalateDeliveredBefore moves stale delivered orders to the review stage
// through the same guarded transition the buyer confirmation uses. One
// failing order does not stop the sweep.
func (s *service) EscalateDeliveredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.repo.FindDeliveredBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query stale delivered orders")
	}

	note := "auto-escalated after delivery window"
	escalated := 0
	var errs []error
	for i := range stale {
		order := stale[i]
		skipped := false
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			current, err := s.loadOrder(ctx, repo, order.ID)
			if err != nil {
				return err
			}
			if current.Status != enums.OrderStatusDelivered {
				skipped = true
				return nil
			}
			return s.transition(ctx, repo, current, enums.OrderStatusToReview, ActorSystem, &note, nil)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("escalate order %s: %w", order.ID, err))
			continue
		}
		if skipped {
			continue
		}
		escalated++
		s.notifier.Notify(ctx, enums.EventOrderAutoEscalated, &order)
	}
	return escalated, multierr.Combine(errs...)
}

// transition applies a guarded status move, writes the timeline row, and
// mutates the in-memory order on success.
func (s *service) transition(ctx context.Context, repo Repository, order *models.Order, to enums.OrderStatus, actor Actor, note *string, extra map[string]any) error {
	if err := EnsureTransition(order.Status, to); err != nil {
		return err
	}

	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	affected, err := repo.UpdateOrderGuarded(ctx, order.ID, order.Status, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
	}

	from := order.Status
	if err := repo.AppendTimeline(ctx, &models.OrderTimeline{
		OrderID:    order.ID,
		FromStatus: &from,
		ToStatus:   to,
		Actor:      string(actor),
		Note:       note,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
	}

	order.Status = to
	return nil
}

func (s *service) cancelOrder(ctx context.Context, repo Repository, order *models.Order, actor Actor, note *string) error {
	extra := map[string]any{"cancelled_at": s.now().UTC()}
	return s.transition(ctx, repo, order, enums.OrderStatusCancelled, actor, note, extra)
}

func (s *service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// populateExtractedText runs OCR outside the transaction. Failures only
// log; the proof simply keeps a NULL extracted_text.
func (s *service) populateExtractedText(ctx context.Context, proof *models.PaymentProof) {
	if proof == nil {
		return
	}
	text, err := s.extractor.ExtractText(ctx, proof.ImageURL)
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"proof_id": proof.ID})
		s.logg.Warn(logCtx, "ocr extraction skipped")
		return
	}
	if text == "" {
		return
	}
	if err := s.repo.UpdatePaymentProof(ctx, proof.ID, map[string]any{"extracted_text": text}); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"proof_id": proof.ID})
		s.logg.Error(logCtx, "persist extracted text", err)
		return
	}
	proof.ExtractedText = &text
}
