package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

// Service fans out order events as in-app notifications and serves the
// user-facing inbox. Notify never returns an error; a lost notification
// must not fail the order mutation that produced it.
type Service interface {
	Notify(ctx context.Context, event enums.NotificationEvent, order *models.Order)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds a notifications service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		catalogRepo: catalogRepo,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Notify(ctx context.Context, event enums.NotificationEvent, order *models.Order) {
	if order == nil {
		return
	}

	recipient, err := s.recipientFor(ctx, event, order)
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":    event,
			"order_id": order.ID,
		})
		s.logg.Error(logCtx, "resolve notification recipient", err)
		return
	}

	title, body := messageFor(event, order)
	orderID := order.ID
	if _, err := s.repo.CreateNotification(ctx, &models.Notification{
		UserID:  recipient,
		OrderID: &orderID,
		Event:   event,
		Title:   title,
		Body:    body,
	}); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":    event,
			"order_id": order.ID,
		})
		s.logg.Error(logCtx, "persist notification", err)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Notification, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	notifications, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if _, err := s.repo.MarkRead(ctx, userID, id, s.now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return nil
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

// recipientFor routes each event to the side of the order that needs to
// act on it.
func (s *service) recipientFor(ctx context.Context, event enums.NotificationEvent, order *models.Order) (uuid.UUID, error) {
	switch event {
	case enums.EventNewOrderCOD,
		enums.EventNewOrderPreorder,
		enums.EventBuyerUploadedProof,
		enums.EventOrderCancelled,
		enums.EventRefundRequested:
		artisan, err := s.catalogRepo.FindArtisan(ctx, order.ArtisanID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return uuid.Nil, fmt.Errorf("artisan %s not found", order.ArtisanID)
			}
			return uuid.Nil, err
		}
		return artisan.OwnerUserID, nil
	default:
		return order.BuyerID, nil
	}
}

func messageFor(event enums.NotificationEvent, order *models.Order) (string, string) {
	ref := order.OrderNumber
	switch event {
	case enums.EventNewOrderCOD:
		return "New order", fmt.Sprintf("You received a new cash on delivery order %s.", ref)
	case enums.EventNewOrderPreorder:
		return "New order", fmt.Sprintf("You received a new order %s awaiting downpayment.", ref)
	case enums.EventBuyerUploadedProof:
		return "Payment proof uploaded", fmt.Sprintf("A payment proof was uploaded for order %s.", ref)
	case enums.EventPaymentApproved:
		return "Payment approved", fmt.Sprintf("Your payment for order %s was approved.", ref)
	case enums.EventPaymentRejected:
		return "Payment rejected", fmt.Sprintf("Your payment for order %s was rejected. Please upload a new proof.", ref)
	case enums.EventOrderCancelled:
		return "Order cancelled", fmt.Sprintf("Order %s was cancelled.", ref)
	case enums.EventRefundRequested:
		return "Refund requested", fmt.Sprintf("A refund was requested for order %s.", ref)
	case enums.EventRefundProcessed:
		return "Refund processed", fmt.Sprintf("Your refund for order %s has been processed.", ref)
	case enums.EventRefundCancelled:
		return "Refund withdrawn", fmt.Sprintf("The refund request for order %s was withdrawn.", ref)
	case enums.EventOrderShipped:
		return "Order shipped", fmt.Sprintf("Order %s has been picked up by the courier.", ref)
	case enums.EventOrderDelivered:
		return "Order delivered", fmt.Sprintf("Order %s has been delivered.", ref)
	case enums.EventOrderAutoEscalated:
		return "Order awaiting review", fmt.Sprintf("Order %s moved to review after the delivery window.", ref)
	default:
		return "Order update", fmt.Sprintf("Order %s was updated.", ref)
	}
}
