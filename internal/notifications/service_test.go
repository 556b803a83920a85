package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

type fakeRepo struct {
	created   []*models.Notification
	createErr error
	marked    []uuid.UUID
}

func (r *fakeRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *fakeRepo) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = append(r.created, n)
	return n, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, readAt time.Time) (int64, error) {
	r.marked = append(r.marked, id)
	return 1, nil
}

func (r *fakeRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.created)), nil
}

type fakeCatalogRepo struct {
	artisan *models.Artisan
}

func (r *fakeCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return r }

func (r *fakeCatalogRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	return 1, nil
}

func (r *fakeCatalogRepo) FindArtisan(ctx context.Context, id uuid.UUID) (*models.Artisan, error) {
	if r.artisan == nil || r.artisan.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.artisan, nil
}

func newTestService(t *testing.T, repo *fakeRepo, artisan *models.Artisan) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeCatalogRepo{artisan: artisan}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func testOrder(artisanID uuid.UUID) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "THC-20260831-ABCDEF12",
		BuyerID:     uuid.New(),
		ArtisanID:   artisanID,
	}
}

func TestNotifyRoutesArtisanEventsToShopOwner(t *testing.T) {
	artisan := &models.Artisan{ID: uuid.New(), OwnerUserID: uuid.New()}
	repo := &fakeRepo{}
	svc := newTestService(t, repo, artisan)
	order := testOrder(artisan.ID)

	svc.Notify(context.Background(), enums.EventNewOrderCOD, order)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, artisan.OwnerUserID, created.UserID)
	assert.Equal(t, enums.EventNewOrderCOD, created.Event)
	require.NotNil(t, created.OrderID)
	assert.Equal(t, order.ID, *created.OrderID)
	assert.Contains(t, created.Body, order.OrderNumber)
}

func TestNotifyRoutesBuyerEventsToBuyer(t *testing.T) {
	artisan := &models.Artisan{ID: uuid.New(), OwnerUserID: uuid.New()}
	repo := &fakeRepo{}
	svc := newTestService(t, repo, artisan)
	order := testOrder(artisan.ID)

	svc.Notify(context.Background(), enums.EventOrderShipped, order)

	require.Len(t, repo.created, 1)
	assert.Equal(t, order.BuyerID, repo.created[0].UserID)
}

func TestNotifySwallowsPersistFailure(t *testing.T) {
	artisan := &models.Artisan{ID: uuid.New(), OwnerUserID: uuid.New()}
	repo := &fakeRepo{createErr: errors.New("db down")}
	svc := newTestService(t, repo, artisan)

	svc.Notify(context.Background(), enums.EventOrderDelivered, testOrder(artisan.ID))

	assert.Empty(t, repo.created)
}

func TestNotifySwallowsUnknownArtisan(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)

	svc.Notify(context.Background(), enums.EventNewOrderCOD, testOrder(uuid.New()))

	assert.Empty(t, repo.created)
}

func TestMarkReadRequiresIdentity(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)

	err := svc.MarkRead(context.Background(), uuid.Nil, uuid.New())
	require.Error(t, err)
	assert.Empty(t, repo.marked)
}

func TestMarkRead(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)
	id := uuid.New()

	require.NoError(t, svc.MarkRead(context.Background(), uuid.New(), id))
	assert.Equal(t, []uuid.UUID{id}, repo.marked)
}
