package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/api/responses"
	"github.com/tahanancrafts/marketplace-backend/api/validators"
	deliverysvc "github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

// BookDelivery places the courier order for a paid order and moves it
// to ready_to_ship.
func BookDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		artisanID, err := artisanIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Book(r.Context(), deliverysvc.BookInput{
			OrderID:   orderID,
			ArtisanID: artisanID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newDeliveryResponse(booking))
	}
}

// CourierWebhook ingests courier status callbacks. It always acknowledges
// known bookings so the courier stops retrying.
func CourierWebhook(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload courierWebhookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseDeliveryStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery status"))
			return
		}

		err = svc.HandleCourierUpdate(r.Context(), deliverysvc.CourierUpdateInput{
			CourierOrderID: payload.CourierOrderID,
			Status:         status,
			DriverName:     payload.DriverName,
			DriverPhone:    payload.DriverPhone,
			ShareLink:      payload.ShareLink,
			PODImageURL:    payload.PODImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "acknowledged"})
	}
}

type courierWebhookRequest struct {
	CourierOrderID string  `json:"courier_order_id" validate:"required"`
	Status         string  `json:"status" validate:"required"`
	DriverName     *string `json:"driver_name,omitempty"`
	DriverPhone    *string `json:"driver_phone,omitempty"`
	ShareLink      *string `json:"share_link,omitempty" validate:"omitempty,url"`
	PODImageURL    *string `json:"pod_image_url,omitempty" validate:"omitempty,url"`
}

type deliveryResponse struct {
	DeliveryID     uuid.UUID       `json:"delivery_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	QuotationID    string          `json:"quotation_id"`
	CourierOrderID *string         `json:"courier_order_id,omitempty"`
	Status         string          `json:"status"`
	Fee            decimal.Decimal `json:"fee"`
	DistanceM      int64           `json:"distance_m"`
	ShareLink      *string         `json:"share_link,omitempty"`
	PODImageURL    *string         `json:"pod_image_url,omitempty"`
	BookedAt       *time.Time      `json:"booked_at,omitempty"`
}

func newDeliveryResponse(booking *models.Delivery) deliveryResponse {
	return deliveryResponse{
		DeliveryID:     booking.ID,
		OrderID:        booking.OrderID,
		QuotationID:    booking.QuotationID,
		CourierOrderID: booking.CourierOrderID,
		Status:         string(booking.Status),
		Fee:            booking.Fee,
		DistanceM:      booking.DistanceM,
		ShareLink:      booking.ShareLink,
		PODImageURL:    booking.PODImageURL,
		BookedAt:       booking.BookedAt,
	}
}
