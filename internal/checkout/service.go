package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tahanancrafts/marketplace-backend/internal/cart"
	"github.com/tahanancrafts/marketplace-backend/internal/catalog"
	"github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressFinder resolves a buyer's saved drop-off location.
type AddressFinder interface {
	FindShippingAddress(ctx context.Context, id uuid.UUID) (*models.ShippingAddress, error)
}

// Input is a buyer's settlement request for the selected cart lines. The
// payment method is not part of the request; it is derived from what the
// buyer is purchasing.
type Input struct {
	BuyerID           uuid.UUID
	ShippingAddressID uuid.UUID
	CartLineIDs       []uuid.UUID
	MessageToSeller   *string
}

// Result returns the orders created from the selection, one per artisan.
type Result struct {
	Orders []models.Order
}

// Service settles selected cart lines into per-artisan orders atomically.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	cartRepo     cart.Repository
	catalogRepo  catalog.Repository
	ordersRepo   orders.Repository
	deliveryRepo delivery.Repository
	addresses    AddressFinder
	quoter       delivery.Quoter
	tx           txRunner
	notifier     orders.Notifier
	logg         *logger.Logger
	now          func() time.Time
}

// ServiceParams collect the checkout dependencies.
type ServiceParams struct {
	CartRepo     cart.Repository
	CatalogRepo  catalog.Repository
	OrdersRepo   orders.Repository
	DeliveryRepo delivery.Repository
	Addresses    AddressFinder
	Quoter       delivery.Quoter
	Tx           txRunner
	Notifier     orders.Notifier
	Logger       *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.DeliveryRepo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address finder required")
	}
	if params.Quoter == nil {
		return nil, fmt.Errorf("shipping quoter required")
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
		cartRepo:     params.CartRepo,
		catalogRepo:  params.CatalogRepo,
		ordersRepo:   params.OrdersRepo,
		deliveryRepo: params.DeliveryRepo,
		addresses:    params.Addresses,
		quoter:       params.Quoter,
		tx:           params.Tx,
		notifier:     params.Notifier,
		logg:         params.Logger,
		now:          time.Now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ShippingAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	lineIDs := dedupIDs(input.CartLineIDs)
	if len(lineIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line selection required")
	}

	address, err := s.loadAddress(ctx, input)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.ListByIDs(ctx, input.BuyerID, lineIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}
	if len(items) != len(lineIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
			WithDetails(map[string]any{"selected": len(lineIDs), "found": len(items)})
	}

	groups := cart.GroupByArtisan(items)
	if len(groups) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection has no purchasable items")
	}

	// Courier quotations come from an external API, so they are fetched
	// before the settlement transaction opens. A stale quote costs one
	// retry; a long-held transaction costs everyone.
	quotes := make(map[uuid.UUID]*delivery.Quote, len(groups))
	for _, group := range groups {
		artisan, err := s.findArtisan(ctx, group.ArtisanID)
		if err != nil {
			return nil, err
		}
		quote, err := s.quoter.Quote(ctx, artisan, address)
		if err != nil {
			return nil, err
		}
		quotes[group.ArtisanID] = quote
	}

	var created []models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created = created[:0]
		cartRepo := s.cartRepo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		deliveryRepo := s.deliveryRepo.WithTx(tx)

		consumed := make([]uuid.UUID, 0, len(items))
		for _, group := range groups {
			order, err := s.settleGroup(ctx, catalogRepo, ordersRepo, deliveryRepo, input, address, group, quotes[group.ArtisanID])
			if err != nil {
				return err
			}
			created = append(created, *order)
			for _, item := range group.Items {
				consumed = append(consumed, item.ID)
			}
		}

		if err := cartRepo.DeleteByIDs(ctx, input.BuyerID, consumed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear settled cart lines")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		event := enums.EventNewOrderCOD
		if created[i].DownpaymentRequired {
			event = enums.EventNewOrderPreorder
		}
		s.notifier.Notify(ctx, event, &created[i])
	}
	return &Result{Orders: created}, nil
}

func (s *service) settleGroup(
	ctx context.Context,
	catalogRepo catalog.Repository,
	ordersRepo orders.Repository,
	deliveryRepo delivery.Repository,
	input Input,
	address *models.ShippingAddress,
	group cart.ArtisanGroup,
	quote *delivery.Quote,
) (*models.Order, error) {
	now := s.now().UTC()

	lines := make([]money.Line, 0, len(group.Items))
	orderItems := make([]models.OrderItem, 0, len(group.Items))
	containsPreorder := false
	downpaymentRequired := false

	for _, item := range group.Items {
		product := item.Product
		if product == nil || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if product.IsPreorder {
			containsPreorder = true
		}

		// A line is made-to-order when the product is flagged pre-order or
		// when shelf stock cannot cover the quantity. Either way the artisan
		// produces after payment, so only coverable stock is reserved.
		madeToOrder := product.IsPreorder
		if !madeToOrder {
			affected, err := catalogRepo.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if affected == 0 {
				madeToOrder = true
			}
		}
		if madeToOrder {
			downpaymentRequired = true
		}

		unitPrice := product.EffectivePrice()
		line := money.Line{UnitPrice: unitPrice, Quantity: item.Quantity}
		lines = append(lines, line)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   money.Round(unitPrice),
			Quantity:    item.Quantity,
			LineTotal:   money.LineTotal(line),
			IsPreorder:  madeToOrder,
		})
	}

	subtotal := money.ItemsSubtotal(lines)
	grandTotal := money.GrandTotal(subtotal, quote.Fee)

	// The payment method follows from the order contents. Made-to-order
	// work needs money up front; pure shelf stock collects on delivery.
	method := enums.PaymentMethodCOD
	if downpaymentRequired {
		method = enums.PaymentMethodGcashDown
	}

	order := &models.Order{
		OrderNumber:         newOrderNumber(now),
		BuyerID:             input.BuyerID,
		ArtisanID:           group.ArtisanID,
		ShippingAddressID:   address.ID,
		Status:              enums.OrderStatusAwaitingPayment,
		PaymentMethod:       method,
		ItemsSubtotal:       subtotal,
		ShippingFee:         money.Round(quote.Fee),
		GrandTotal:          grandTotal,
		DownpaymentRequired: downpaymentRequired,
		ContainsPreorder:    containsPreorder,
		MessageToSeller:     input.MessageToSeller,
	}
	if downpaymentRequired {
		order.DownpaymentDue = money.Downpayment(grandTotal)
		order.PartialPayment = order.DownpaymentDue
	}
	order.CODPayment = money.Round(grandTotal.Sub(order.PartialPayment))

	if _, err := ordersRepo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := ordersRepo.CreateOrderItems(ctx, orderItems); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
	}

	if _, err := deliveryRepo.CreateDelivery(ctx, &models.Delivery{
		OrderID:            order.ID,
		QuotationID:        quote.QuotationID,
		PickupStopID:       quote.PickupStopID,
		DropoffStopID:      quote.DropoffStopID,
		Status:             enums.DeliveryStatusQuotationAttached,
		Fee:                money.Round(quote.Fee),
		DistanceM:          quote.DistanceM,
		QuotedAt:           quote.QuotedAt,
		QuotationExpiresAt: quote.ExpiresAt,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach delivery quotation")
	}

	if err := ordersRepo.AppendTimeline(ctx, &models.OrderTimeline{
		OrderID:  order.ID,
		ToStatus: order.Status,
		Actor:    string(orders.ActorBuyer),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
	}

	order.Items = orderItems
	return order, nil
}

func (s *service) loadAddress(ctx context.Context, input Input) (*models.ShippingAddress, error) {
	address, err := s.addresses.FindShippingAddress(ctx, input.ShippingAddressID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping address")
	}
	if address.UserID != input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shipping address does not belong to buyer")
	}
	return address, nil
}

func (s *service) findArtisan(ctx context.Context, id uuid.UUID) (*models.Artisan, error) {
	artisan, err := s.catalogRepo.FindArtisan(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artisan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artisan")
	}
	return artisan, nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// newOrderNumber builds a human-readable unique order reference.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("THC-%s-%s", now.Format("20060102"), suffix)
}
