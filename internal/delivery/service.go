package delivery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/lalamove"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/money"
)

// simulatedFee is the flat quote used when courier simulation is on.
var simulatedFee = decimal.RequireFromString("120.00")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// courierAPI is the slice of the Lalamove client the service depends on.
type courierAPI interface {
	GetQuotation(ctx context.Context, params lalamove.QuotationParams) (*lalamove.Quotation, error)
	PlaceOrder(ctx context.Context, params lalamove.OrderParams) (*lalamove.Order, error)
}

// AddressFinder resolves the buyer drop-off used as the delivery stop.
type AddressFinder interface {
	FindShippingAddress(ctx context.Context, id uuid.UUID) (*models.ShippingAddress, error)
}

// simulatedQuoteTTL mirrors the courier's real quotation validity window.
const simulatedQuoteTTL = 5 * time.Minute

// Quote is a priced courier route. Checkout attaches one to every order it
// creates. ExpiresAt bounds how long the quotation can be booked against.
type Quote struct {
	QuotationID   string
	PickupStopID  string
	DropoffStopID string
	Fee           decimal.Decimal
	DistanceM     int64
	QuotedAt      time.Time
	ExpiresAt     time.Time
}

// Quoter prices the route from an artisan's pickup point to the buyer's
// drop-off address.
type Quoter interface {
	Quote(ctx context.Context, artisan *models.Artisan, address *models.ShippingAddress) (*Quote, error)
}

// BookInput asks for a driver on a previously quoted order.
type BookInput struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
}

// CourierUpdateInput is a courier webhook payload after validation.
type CourierUpdateInput struct {
	CourierOrderID string
	Status         enums.DeliveryStatus
	DriverName     *string
	DriverPhone    *string
	ShareLink      *string
	PODImageURL    *string
}

// Service drives courier bookings and mirrors courier progress onto the
// order lifecycle.
type Service interface {
	Quoter
	Book(ctx context.Context, input BookInput) (*models.Delivery, error)
	HandleCourierUpdate(ctx context.Context, input CourierUpdateInput) error
	AdvanceSimulated(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	ordersRepo  orders.Repository
	catalogRepo catalog.Repository
	addresses   AddressFinder
	courier     courierAPI
	tx          txRunner
	notifier    orders.Notifier
	simulate    bool
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams collect the delivery dependencies. Courier may be nil only
// when Simulate is on.
type ServiceParams struct {
	Repo        Repository
	OrdersRepo  orders.Repository
	CatalogRepo catalog.Repository
	Addresses   AddressFinder
	Courier     courierAPI
	Tx          txRunner
	Notifier    orders.Notifier
	Simulate    bool
	Logger      *logger.Logger
}

// NewService builds a delivery service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address finder required")
	}
	if params.Courier == nil && !params.Simulate {
		return nil, fmt.Errorf("courier client required unless simulation is on")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        params.Repo,
		ordersRepo:  params.OrdersRepo,
		catalogRepo: params.CatalogRepo,
		addresses:   params.Addresses,
		courier:     params.Courier,
		tx:          params.Tx,
		notifier:    params.Notifier,
		simulate:    params.Simulate,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) Quote(ctx context.Context, artisan *models.Artisan, address *models.ShippingAddress) (*Quote, error) {
	if artisan == nil || address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and drop-off required")
	}

	if s.simulate {
		now := s.now().UTC()
		return &Quote{
			QuotationID:   "SIM-" + uuid.NewString(),
			PickupStopID:  "SIM-STOP-1",
			DropoffStopID: "SIM-STOP-2",
			Fee:           simulatedFee,
			QuotedAt:      now,
			ExpiresAt:     now.Add(simulatedQuoteTTL),
		}, nil
	}

	pickup, err := stopFor(artisan.Latitude, artisan.Longitude, artisan.AddressLine)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artisan pickup coordinates missing")
	}
	dropOff, err := stopFor(address.Latitude, address.Longitude, address.AddressLine)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drop-off coordinates missing")
	}

	quotation, err := s.courier.GetQuotation(ctx, lalamove.QuotationParams{
		Stops: []lalamove.Stop{pickup, dropOff},
	})
	if err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(quotation.PriceBreakdown.Total)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse quoted price")
	}
	if len(quotation.Stops) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quotation missing stop ids")
	}
	expiresAt, err := time.Parse(time.RFC3339, quotation.ExpiresAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse quotation expiry")
	}

	// Distance is informational; a malformed value is not worth failing
	// the quote over.
	distanceM, _ := strconv.ParseInt(quotation.Distance.Value, 10, 64)

	return &Quote{
		QuotationID:   quotation.QuotationID,
		PickupStopID:  quotation.Stops[0].StopID,
		DropoffStopID: quotation.Stops[len(quotation.Stops)-1].StopID,
		Fee:           money.Round(fee),
		DistanceM:     distanceM,
		QuotedAt:      s.now().UTC(),
		ExpiresAt:     expiresAt.UTC(),
	}, nil
}

// Book places a courier order against the quotation attached at checkout
// and moves the order to the ready to ship stage.
func (s *service) Book(ctx context.Context, input BookInput) (*models.Delivery, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ArtisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "artisan context missing")
	}

	order, err := s.ordersRepo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.ArtisanID != input.ArtisanID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to artisan")
	}
	if err := orders.EnsureTransition(order.Status, enums.OrderStatusReadyToShip); err != nil {
		return nil, err
	}

	booking, err := s.repo.FindByOrder(ctx, order.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery quotation for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	if booking.CourierOrderID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already booked")
	}
	// Simulated quotations never reach the courier, so staleness is
	// irrelevant for them.
	if !s.simulate && s.now().UTC().After(booking.QuotationExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery quotation expired").
			WithDetails(map[string]any{"expired_at": booking.QuotationExpiresAt})
	}

	courierOrder, err := s.placeCourierOrder(ctx, order, booking)
	if err != nil {
		return nil, err
	}

	bookedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		affected, err := ordersRepo.UpdateOrderGuarded(ctx, order.ID, order.Status,
			map[string]any{"status": enums.OrderStatusReadyToShip})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}

		from := order.Status
		if err := ordersRepo.AppendTimeline(ctx, &models.OrderTimeline{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   enums.OrderStatusReadyToShip,
			Actor:      string(orders.ActorArtisan),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		return repo.UpdateDelivery(ctx, booking.ID, map[string]any{
			"status":           enums.DeliveryStatusAssigningDriver,
			"courier_order_id": courierOrder.OrderID,
			"share_link":       courierOrder.ShareLink,
			"booked_at":        bookedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusReadyToShip
	booking.Status = enums.DeliveryStatusAssigningDriver
	booking.CourierOrderID = &courierOrder.OrderID
	if courierOrder.ShareLink != "" {
		booking.ShareLink = &courierOrder.ShareLink
	}
	booking.BookedAt = &bookedAt
	return booking, nil
}

// HandleCourierUpdate mirrors one courier webhook onto the booking and the
// order. Replays and stale out-of-order updates are absorbed, not errored.
func (s *service) HandleCourierUpdate(ctx context.Context, input CourierUpdateInput) error {
	if input.CourierOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "courier order id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}

	booking, err := s.repo.FindByCourierOrderID(ctx, input.CourierOrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	if booking.Status == input.Status {
		return nil
	}

	var notify *enums.NotificationEvent
	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		now := s.now().UTC()
		updates := map[string]any{"status": input.Status}
		if input.DriverName != nil {
			updates["driver_name"] = *input.DriverName
		}
		if input.DriverPhone != nil {
			updates["driver_phone"] = *input.DriverPhone
		}
		if input.ShareLink != nil {
			updates["share_link"] = *input.ShareLink
		}
		if input.PODImageURL != nil {
			updates["pod_image_url"] = *input.PODImageURL
		}
		if input.Status == enums.DeliveryStatusDelivered {
			updates["delivered_at"] = now
		}
		if err := repo.UpdateDelivery(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		target, ok := orderStatusFor(input.Status)
		if !ok {
			return nil
		}

		loaded, err := ordersRepo.FindOrder(ctx, booking.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		order = loaded
		if loaded.Status == target {
			return nil
		}
		if !orders.CanTransition(loaded.Status, target) {
			// Stale webhook relative to the order; the booking row above
			// still records the courier's view.
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id": loaded.ID,
				"from":     loaded.Status,
				"to":       target,
			})
			s.logg.Warn(logCtx, "courier update ignored for order status")
			return nil
		}

		orderUpdates := map[string]any{"status": target}
		if target == enums.OrderStatusDelivered {
			orderUpdates["delivered_at"] = now
		}
		affected, err := ordersRepo.UpdateOrderGuarded(ctx, loaded.ID, loaded.Status, orderUpdates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}

		from := loaded.Status
		if err := ordersRepo.AppendTimeline(ctx, &models.OrderTimeline{
			OrderID:    loaded.ID,
			FromStatus: &from,
			ToStatus:   target,
			Actor:      string(orders.ActorCourier),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}
		loaded.Status = target

		switch target {
		case enums.OrderStatusShipped:
			event := enums.EventOrderShipped
			notify = &event
		case enums.OrderStatusDelivered:
			event := enums.EventOrderDelivered
			notify = &event
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notify != nil && order != nil {
		s.notifier.Notify(ctx, *notify, order)
	}
	return nil
}

// AdvanceSimulated pushes every in-flight simulated booking one step along
// the courier lifecycle. It backs the dev courier cron and is a no-op when
// simulation is off. One failing booking does not stop the sweep.
func (s *service) AdvanceSimulated(ctx context.Context) (int, error) {
	if !s.simulate {
		return 0, nil
	}

	inProgress, err := s.repo.FindInProgress(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query in-progress deliveries")
	}

	advanced := 0
	var errs []error
	for i := range inProgress {
		booking := inProgress[i]
		if booking.CourierOrderID == nil {
			continue
		}
		next, ok := nextSimulatedStatus(booking.Status)
		if !ok {
			continue
		}
		if err := s.HandleCourierUpdate(ctx, CourierUpdateInput{
			CourierOrderID: *booking.CourierOrderID,
			Status:         next,
		}); err != nil {
			errs = append(errs, fmt.Errorf("advance delivery %s: %w", booking.ID, err))
			continue
		}
		advanced++
	}
	return advanced, multierr.Combine(errs...)
}

func (s *service) placeCourierOrder(ctx context.Context, order *models.Order, booking *models.Delivery) (*lalamove.Order, error) {
	if s.simulate {
		return &lalamove.Order{
			OrderID:     "SIM-" + uuid.NewString(),
			QuotationID: booking.QuotationID,
			Status:      "ASSIGNING_DRIVER",
		}, nil
	}

	artisan, err := s.catalogRepo.FindArtisan(ctx, order.ArtisanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artisan")
	}
	address, err := s.addresses.FindShippingAddress(ctx, order.ShippingAddressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping address")
	}

	sender := lalamove.Contact{StopID: booking.PickupStopID, Name: artisan.ShopName}
	if artisan.Phone != nil {
		sender.Phone = *artisan.Phone
	}
	recipient := lalamove.Contact{
		StopID: booking.DropoffStopID,
		Name:   address.RecipientName,
		Phone:  address.Phone,
	}

	remarks := ""
	if order.MessageToSeller != nil {
		remarks = *order.MessageToSeller
	}
	return s.courier.PlaceOrder(ctx, lalamove.OrderParams{
		QuotationID: booking.QuotationID,
		Sender:      sender,
		Recipients:  []lalamove.Contact{recipient},
		Remarks:     remarks,
	})
}

// orderStatusFor maps a courier status to the order status it implies.
// Driver assignment has no order-side effect.
func orderStatusFor(status enums.DeliveryStatus) (enums.OrderStatus, bool) {
	switch status {
	case enums.DeliveryStatusPickedUp:
		return enums.OrderStatusShipped, true
	case enums.DeliveryStatusOnGoingDelivery:
		return enums.OrderStatusInTransit, true
	case enums.DeliveryStatusDelivered:
		return enums.OrderStatusDelivered, true
	default:
		return "", false
	}
}

func nextSimulatedStatus(status enums.DeliveryStatus) (enums.DeliveryStatus, bool) {
	switch status {
	case enums.DeliveryStatusAssigningDriver:
		return enums.DeliveryStatusPickedUp, true
	case enums.DeliveryStatusPickedUp:
		return enums.DeliveryStatusOnGoingDelivery, true
	case enums.DeliveryStatusOnGoingDelivery:
		return enums.DeliveryStatusDelivered, true
	default:
		return "", false
	}
}

func stopFor(lat, lng *string, addressLine string) (lalamove.Stop, error) {
	if lat == nil || lng == nil {
		return lalamove.Stop{}, fmt.Errorf("coordinates missing")
	}
	return lalamove.Stop{
		Coordinates: lalamove.Coordinates{Lat: *lat, Lng: *lng},
		Address:     addressLine,
	}, nil
}
