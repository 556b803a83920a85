package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

// Repository covers order persistence. Status writes go through
// UpdateOrderGuarded so concurrent transitions lose cleanly instead of
// overwriting each other.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderGuarded(ctx context.Context, id uuid.UUID, expected enums.OrderStatus, updates map[string]any) (int64, error)

	AppendTimeline(ctx context.Context, entry *models.OrderTimeline) error
	FindLastTransitionTo(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.OrderTimeline, error)

	CreatePaymentProof(ctx context.Context, proof *models.PaymentProof) (*models.PaymentProof, error)
	FindPaymentProof(ctx context.Context, id uuid.UUID) (*models.PaymentProof, error)
	UpdatePaymentProof(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SumVerifiedProofAmounts(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	CreateRefund(ctx context.Context, refund *models.Refund) (*models.Refund, error)
	FindRefundByOrder(ctx context.Context, orderID uuid.UUID) (*models.Refund, error)
	UpdateRefund(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteRefund(ctx context.Context, id uuid.UUID) error

	FindOrderItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	UpdateOrderItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountUnreviewedItems(ctx context.Context, orderID uuid.UUID) (int64, error)

	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID, params pagination.Params) ([]models.Order, error)
	FindDeliveredBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Delivery").
		Preload("Refund").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderDetail loads everything the detail view renders, timeline oldest
// first.
func (r *repository) FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Delivery").
		Preload("Refund").
		Preload("PaymentProofs").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderGuarded(ctx context.Context, id uuid.UUID, expected enums.OrderStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) AppendTimeline(ctx context.Context, entry *models.OrderTimeline) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindLastTransitionTo(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.OrderTimeline, error) {
	var entry models.OrderTimeline
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND to_status = ?", orderID, status).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CreatePaymentProof(ctx context.Context, proof *models.PaymentProof) (*models.PaymentProof, error) {
	if err := r.db.WithContext(ctx).Create(proof).Error; err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *repository) FindPaymentProof(ctx context.Context, id uuid.UUID) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&proof).Error
	if err != nil {
		return nil, err
	}
	return &proof, nil
}

func (r *repository) UpdatePaymentProof(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentProof{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SumVerifiedProofAmounts(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentProof{}).
		Select("SUM(amount)").
		Where("order_id = ? AND verified = ?", orderID, true).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.Refund) (*models.Refund, error) {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

func (r *repository) FindRefundByOrder(ctx context.Context, orderID uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) UpdateRefund(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteRefund(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Refund{}).Error
}

func (r *repository) FindOrderItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateOrderItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CountUnreviewedItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND is_reviewed = ?", orderID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.listOrders(ctx, "buyer_id = ?", buyerID, params)
}

func (r *repository) ListByArtisan(ctx context.Context, artisanID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.listOrders(ctx, "artisan_id = ?", artisanID, params)
}

func (r *repository) listOrders(ctx context.Context, ownerClause string, ownerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Delivery").
		Where(ownerClause, ownerID)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindDeliveredBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at IS NOT NULL AND delivered_at <= ?", enums.OrderStatusDelivered, cutoff).
		Order("delivered_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
