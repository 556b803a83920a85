package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/api/responses"
	"github.com/tahanancrafts/marketplace-backend/api/validators"
	checkoutsvc "github.com/tahanancrafts/marketplace-backend/internal/checkout"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

// Checkout settles the buyer's cart into one order per artisan.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			BuyerID:           buyerID,
			ShippingAddressID: payload.ShippingAddressID,
			CartLineIDs:       payload.CartLineIDs,
			MessageToSeller:   payload.MessageToSeller,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutRequest struct {
	ShippingAddressID uuid.UUID   `json:"shipping_address_id" validate:"required,uuid4"`
	CartLineIDs       []uuid.UUID `json:"cart_line_ids" validate:"required,min=1,dive,uuid4"`
	MessageToSeller   *string     `json:"message_to_seller,omitempty" validate:"omitempty,max=500"`
}

type checkoutResponse struct {
	Orders []orderResponse `json:"orders"`
}

type orderResponse struct {
	OrderID             uuid.UUID           `json:"order_id"`
	OrderNumber         string              `json:"order_number"`
	ArtisanID           uuid.UUID           `json:"artisan_id"`
	Status              string              `json:"status"`
	PaymentMethod       string              `json:"payment_method"`
	ItemsSubtotal       decimal.Decimal     `json:"items_subtotal"`
	ShippingFee         decimal.Decimal     `json:"shipping_fee"`
	GrandTotal          decimal.Decimal     `json:"grand_total"`
	DownpaymentRequired bool                `json:"downpayment_required"`
	DownpaymentDue      decimal.Decimal     `json:"downpayment_due"`
	TotalPayNow         decimal.Decimal     `json:"total_pay_now"`
	CODAmount           decimal.Decimal     `json:"cod_amount"`
	PaymentVerified     bool                `json:"payment_verified"`
	PlatformFee         *decimal.Decimal    `json:"platform_fee,omitempty"`
	ArtisanPayout       *decimal.Decimal    `json:"artisan_payout,omitempty"`
	ContainsPreorder    bool                `json:"contains_preorder"`
	DeliveredAt         *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	Items               []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsPreorder  bool            `json:"is_preorder"`
	IsReviewed  bool            `json:"is_reviewed"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	orders := make([]orderResponse, 0, len(result.Orders))
	for i := range result.Orders {
		orders = append(orders, newOrderResponse(&result.Orders[i]))
	}
	return checkoutResponse{Orders: orders}
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
			IsPreorder:  item.IsPreorder,
			IsReviewed:  item.IsReviewed,
		})
	}
	return orderResponse{
		OrderID:             order.ID,
		OrderNumber:         order.OrderNumber,
		ArtisanID:           order.ArtisanID,
		Status:              string(order.Status),
		PaymentMethod:       string(order.PaymentMethod),
		ItemsSubtotal:       order.ItemsSubtotal,
		ShippingFee:         order.ShippingFee,
		GrandTotal:          order.GrandTotal,
		DownpaymentRequired: order.DownpaymentRequired,
		DownpaymentDue:      order.DownpaymentDue,
		TotalPayNow:         order.PartialPayment,
		CODAmount:           order.CODPayment,
		PaymentVerified:     order.PaymentVerified,
		PlatformFee:         order.PlatformFee,
		ArtisanPayout:       order.ArtisanPayout,
		ContainsPreorder:    order.ContainsPreorder,
		DeliveredAt:         order.DeliveredAt,
		CreatedAt:           order.CreatedAt,
		Items:               items,
	}
}
