package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/internal/cart"
	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	"github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

type fakeTxRunner struct {
	inTx *bool
}

func (r fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.inTx != nil {
		*r.inTx = true
		defer func() { *r.inTx = false }()
	}
	return fn(nil)
}

type fakeNotifier struct {
	events []enums.NotificationEvent
}

func (n *fakeNotifier) Notify(_ context.Context, event enums.NotificationEvent, _ *models.Order) {
	n.events = append(n.events, event)
}

type fakeCartRepo struct {
	items   []models.CartItem
	deleted []uuid.UUID
}

func (r *fakeCartRepo) WithTx(tx *gorm.DB) cart.Repository { return r }

func (r *fakeCartRepo) ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error) {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.CartItem
	for _, item := range r.items {
		if item.UserID == userID && wanted[item.ID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	r.deleted = append(r.deleted, ids...)
	return nil
}

type fakeCatalogRepo struct {
	stock    map[uuid.UUID]int
	artisans map[uuid.UUID]*models.Artisan
}

func (r *fakeCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return r }

func (r *fakeCatalogRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	if r.stock[productID] < qty {
		return 0, nil
	}
	r.stock[productID] -= qty
	return 1, nil
}

func (r *fakeCatalogRepo) FindArtisan(ctx context.Context, id uuid.UUID) (*models.Artisan, error) {
	artisan, ok := r.artisans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return artisan, nil
}

type fakeOrdersRepo struct {
	orders.Repository

	created  []*models.Order
	items    []models.OrderItem
	timeline []models.OrderTimeline
}

func (r *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return r }

func (r *fakeOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	r.created = append(r.created, order)
	return order, nil
}

func (r *fakeOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	r.items = append(r.items, items...)
	return nil
}

func (r *fakeOrdersRepo) AppendTimeline(ctx context.Context, entry *models.OrderTimeline) error {
	r.timeline = append(r.timeline, *entry)
	return nil
}

type fakeDeliveryRepo struct {
	deliveries []*models.Delivery
}

func (r *fakeDeliveryRepo) WithTx(tx *gorm.DB) delivery.Repository { return r }

func (r *fakeDeliveryRepo) CreateDelivery(ctx context.Context, d *models.Delivery) (*models.Delivery, error) {
	d.ID = uuid.New()
	r.deliveries = append(r.deliveries, d)
	return d, nil
}

func (r *fakeDeliveryRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeliveryRepo) FindByCourierOrderID(ctx context.Context, courierOrderID string) (*models.Delivery, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeliveryRepo) UpdateDelivery(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (r *fakeDeliveryRepo) FindInProgress(ctx context.Context) ([]models.Delivery, error) {
	return nil, nil
}

type fakeAddresses struct {
	address *models.ShippingAddress
}

func (r *fakeAddresses) FindShippingAddress(ctx context.Context, id uuid.UUID) (*models.ShippingAddress, error) {
	if r.address == nil || r.address.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.address, nil
}

type fakeQuoter struct {
	fee        decimal.Decimal
	quotes     int
	inTx       *bool
	quotedInTx bool
}

func (q *fakeQuoter) Quote(ctx context.Context, artisan *models.Artisan, address *models.ShippingAddress) (*delivery.Quote, error) {
	q.quotes++
	if q.inTx != nil && *q.inTx {
		q.quotedInTx = true
	}
	now := time.Now().UTC()
	return &delivery.Quote{
		QuotationID:   uuid.NewString(),
		PickupStopID:  "STOP-1",
		DropoffStopID: "STOP-2",
		Fee:           q.fee,
		DistanceM:     4200,
		QuotedAt:      now,
		ExpiresAt:     now.Add(5 * time.Minute),
	}, nil
}

type testHarness struct {
	service   Service
	cartRepo  *fakeCartRepo
	catalog   *fakeCatalogRepo
	orders    *fakeOrdersRepo
	delivery  *fakeDeliveryRepo
	addresses *fakeAddresses
	quoter    *fakeQuoter
	notifier  *fakeNotifier
	buyerID   uuid.UUID
	addressID uuid.UUID
	inTx      bool
}

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	buyerID := uuid.New()
	addressID := uuid.New()
	h := &testHarness{
		cartRepo: &fakeCartRepo{},
		catalog: &fakeCatalogRepo{
			stock:    map[uuid.UUID]int{},
			artisans: map[uuid.UUID]*models.Artisan{},
		},
		orders:   &fakeOrdersRepo{},
		delivery: &fakeDeliveryRepo{},
		addresses: &fakeAddresses{address: &models.ShippingAddress{
			ID:     addressID,
			UserID: buyerID,
		}},
		quoter:    &fakeQuoter{fee: price("180.00")},
		notifier:  &fakeNotifier{},
		buyerID:   buyerID,
		addressID: addressID,
	}
	h.quoter.inTx = &h.inTx

	service, err := NewService(ServiceParams{
		CartRepo:     h.cartRepo,
		CatalogRepo:  h.catalog,
		OrdersRepo:   h.orders,
		DeliveryRepo: h.delivery,
		Addresses:    h.addresses,
		Quoter:       h.quoter,
		Tx:           fakeTxRunner{inTx: &h.inTx},
		Notifier:     h.notifier,
		Logger:       logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	h.service = service
	return h
}

func (h *testHarness) addItem(artisanID uuid.UUID, qty, stock int, unitPrice string, preorder bool) models.CartItem {
	product := &models.Product{
		ID:           uuid.New(),
		ArtisanID:    artisanID,
		Name:         "handwoven basket",
		RegularPrice: price(unitPrice),
		Stock:        stock,
		IsPreorder:   preorder,
		IsActive:     true,
	}
	h.catalog.stock[product.ID] = stock
	if _, ok := h.catalog.artisans[artisanID]; !ok {
		h.catalog.artisans[artisanID] = &models.Artisan{ID: artisanID, AddressLine: "workshop"}
	}
	item := models.CartItem{
		ID:        uuid.New(),
		UserID:    h.buyerID,
		ProductID: product.ID,
		Quantity:  qty,
		Product:   product,
	}
	h.cartRepo.items = append(h.cartRepo.items, item)
	return item
}

// checkout settles the given cart lines, defaulting to every line in the
// cart when none are named.
func (h *testHarness) checkout(lineIDs ...uuid.UUID) (*Result, error) {
	if len(lineIDs) == 0 {
		for _, item := range h.cartRepo.items {
			lineIDs = append(lineIDs, item.ID)
		}
	}
	return h.service.Checkout(context.Background(), Input{
		BuyerID:           h.buyerID,
		ShippingAddressID: h.addressID,
		CartLineIDs:       lineIDs,
	})
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
}

func TestCheckoutInStockOrderCollectsOnDelivery(t *testing.T) {
	h := newHarness(t)
	h.quoter.fee = price("50.00")
	h.addItem(uuid.New(), 2, 5, "100.00", false)

	result, err := h.checkout()
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, enums.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, enums.PaymentMethodCOD, order.PaymentMethod)
	assert.False(t, order.DownpaymentRequired)
	assert.True(t, price("200.00").Equal(order.ItemsSubtotal))
	assert.True(t, price("250.00").Equal(order.GrandTotal))
	assert.True(t, order.PartialPayment.IsZero())
	assert.True(t, price("250.00").Equal(order.CODPayment))
	assert.Nil(t, order.PlatformFee)
	assert.Nil(t, order.ArtisanPayout)
}

func TestCheckoutPreorderRequiresDownpayment(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 2, 5, "500.00", true)

	result, err := h.checkout()
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, enums.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, enums.PaymentMethodGcashDown, order.PaymentMethod)
	assert.True(t, order.DownpaymentRequired)
	assert.True(t, order.ContainsPreorder)
	assert.True(t, price("1180.00").Equal(order.GrandTotal))
	assert.True(t, price("590.00").Equal(order.DownpaymentDue))
	assert.True(t, price("590.00").Equal(order.PartialPayment))
	assert.True(t, price("590.00").Equal(order.CODPayment))
	assert.True(t, order.GrandTotal.Equal(order.PartialPayment.Add(order.CODPayment)))
}

func TestCheckoutStockShortfallForcesDownpayment(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 5, 2, "500.00", false)

	result, err := h.checkout()
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, enums.PaymentMethodGcashDown, order.PaymentMethod)
	assert.True(t, order.DownpaymentRequired)
	assert.False(t, order.ContainsPreorder)

	// The shortfall line is made to order, so shelf stock stays put.
	assert.Equal(t, 2, h.catalog.stock[item.ProductID])
	require.Len(t, h.orders.items, 1)
	assert.True(t, h.orders.items[0].IsPreorder)
}

func TestCheckoutSettlesOnlySelectedLines(t *testing.T) {
	h := newHarness(t)
	selected := h.addItem(uuid.New(), 1, 5, "300.00", false)
	left := h.addItem(uuid.New(), 1, 5, "450.00", false)

	result, err := h.checkout(selected.ID)
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	assert.True(t, price("300.00").Equal(result.Orders[0].ItemsSubtotal))
	assert.Equal(t, []uuid.UUID{selected.ID}, h.cartRepo.deleted)
	assert.NotContains(t, h.cartRepo.deleted, left.ID)
}

func TestCheckoutUnknownCartLineRejected(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 1, 5, "300.00", false)

	_, err := h.checkout(item.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Empty(t, h.orders.created)
}

func TestCheckoutForeignCartLineRejected(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 1, 5, "300.00", false)
	h.cartRepo.items[0].UserID = uuid.New()

	_, err := h.checkout(item.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Empty(t, h.orders.created)
}

func TestCheckoutQuotesOutsideTransaction(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 1, 5, "300.00", false)

	_, err := h.checkout()
	require.NoError(t, err)
	assert.Equal(t, 1, h.quoter.quotes)
	assert.False(t, h.quoter.quotedInTx)
}

func TestCheckoutDeliveryCarriesQuotationDetails(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 1, 5, "300.00", false)

	_, err := h.checkout()
	require.NoError(t, err)
	require.Len(t, h.delivery.deliveries, 1)

	booking := h.delivery.deliveries[0]
	assert.Equal(t, "STOP-1", booking.PickupStopID)
	assert.Equal(t, "STOP-2", booking.DropoffStopID)
	assert.Equal(t, int64(4200), booking.DistanceM)
	assert.False(t, booking.QuotationExpiresAt.IsZero())
	assert.True(t, booking.QuotationExpiresAt.After(booking.QuotedAt))
}

func TestCheckoutSplitsCartByArtisan(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 1, 5, "300.00", false)
	h.addItem(uuid.New(), 1, 5, "450.00", false)

	result, err := h.checkout()
	require.NoError(t, err)
	assert.Len(t, result.Orders, 2)
	assert.Equal(t, 2, h.quoter.quotes)
	assert.Len(t, h.delivery.deliveries, 2)
	assert.NotEqual(t, result.Orders[0].OrderNumber, result.Orders[1].OrderNumber)
}

func TestCheckoutSnapshotsSalesPrice(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 1, 5, "500.00", false)
	sale := price("420.00")
	item.Product.SalesPrice = &sale

	result, err := h.checkout()
	require.NoError(t, err)

	require.Len(t, h.orders.items, 1)
	assert.True(t, sale.Equal(h.orders.items[0].UnitPrice))
	assert.True(t, sale.Equal(result.Orders[0].ItemsSubtotal))
}

func TestCheckoutPreorderSkipsStockReservation(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 3, 0, "500.00", true)

	result, err := h.checkout()
	require.NoError(t, err)
	assert.True(t, result.Orders[0].ContainsPreorder)
	assert.True(t, result.Orders[0].DownpaymentRequired)
}

func TestCheckoutMixedCartNeedsDownpaymentForWholeOrder(t *testing.T) {
	h := newHarness(t)
	artisanID := uuid.New()
	shelf := h.addItem(artisanID, 1, 5, "300.00", false)
	h.addItem(artisanID, 1, 5, "500.00", true)

	result, err := h.checkout()
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, enums.PaymentMethodGcashDown, order.PaymentMethod)
	assert.True(t, order.DownpaymentRequired)

	// The in-stock line is still reserved even though the order as a whole
	// waits on a downpayment.
	assert.Equal(t, 4, h.catalog.stock[shelf.ProductID])
}

func TestCheckoutEmptySelection(t *testing.T) {
	h := newHarness(t)

	_, err := h.checkout(uuid.Nil)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutInactiveProduct(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 1, 5, "500.00", false)
	item.Product.IsActive = false

	_, err := h.checkout()
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutForeignAddressRejected(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 1, 5, "500.00", false)
	h.addresses.address.UserID = uuid.New()

	_, err := h.checkout()
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestCheckoutClearsSettledLinesAndWritesTimeline(t *testing.T) {
	h := newHarness(t)
	item := h.addItem(uuid.New(), 1, 5, "500.00", false)

	_, err := h.checkout()
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{item.ID}, h.cartRepo.deleted)
	require.Len(t, h.orders.timeline, 1)
	entry := h.orders.timeline[0]
	assert.Nil(t, entry.FromStatus)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, entry.ToStatus)
	assert.Equal(t, string(orders.ActorBuyer), entry.Actor)
}

func TestCheckoutNotifiesAfterCommit(t *testing.T) {
	h := newHarness(t)
	h.addItem(uuid.New(), 1, 5, "500.00", false)
	h.addItem(uuid.New(), 1, 5, "500.00", true)

	_, err := h.checkout()
	require.NoError(t, err)

	require.Len(t, h.notifier.events, 2)
	assert.Contains(t, h.notifier.events, enums.EventNewOrderCOD)
	assert.Contains(t, h.notifier.events, enums.EventNewOrderPreorder)
}
