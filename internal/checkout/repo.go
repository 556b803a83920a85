package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
)

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository builds an AddressFinder bound to the provided DB.
func NewAddressRepository(db *gorm.DB) AddressFinder {
	return &addressRepository{db: db}
}

func (r *addressRepository) FindShippingAddress(ctx context.Context, id uuid.UUID) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}
