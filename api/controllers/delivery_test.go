package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/api/middleware"
	deliverysvc "github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
)

type stubDeliveryService struct {
	booking  *models.Delivery
	quote    *deliverysvc.Quote
	err      error
	bookIn   deliverysvc.BookInput
	updateIn deliverysvc.CourierUpdateInput
}

func (s *stubDeliveryService) Quote(ctx context.Context, artisan *models.Artisan, address *models.ShippingAddress) (*deliverysvc.Quote, error) {
	return s.quote, s.err
}

func (s *stubDeliveryService) Book(ctx context.Context, input deliverysvc.BookInput) (*models.Delivery, error) {
	s.bookIn = input
	return s.booking, s.err
}

func (s *stubDeliveryService) HandleCourierUpdate(ctx context.Context, input deliverysvc.CourierUpdateInput) error {
	s.updateIn = input
	return s.err
}

func (s *stubDeliveryService) AdvanceSimulated(ctx context.Context) (int, error) {
	return 0, s.err
}

func TestBookDeliveryCreated(t *testing.T) {
	t.Parallel()

	artisanID := uuid.New()
	orderID := uuid.New()
	bookedAt := time.Now()
	courierOrderID := "LM-100"
	svc := &stubDeliveryService{booking: &models.Delivery{
		ID:             uuid.New(),
		OrderID:        orderID,
		QuotationID:    "Q-1",
		CourierOrderID: &courierOrderID,
		Status:         enums.DeliveryStatusAssigningDriver,
		Fee:            decimal.RequireFromString("180.00"),
		BookedAt:       &bookedAt,
	}}
	handler := BookDelivery(svc, testLogger())

	req := authedRequest(http.MethodPost, "/api/v1/artisan/orders/"+orderID.String()+"/delivery", "", uuid.New())
	req = req.WithContext(middleware.WithArtisanID(withOrderParam(req.Context(), orderID.String()), artisanID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.bookIn.OrderID != orderID || svc.bookIn.ArtisanID != artisanID {
		t.Fatalf("identifiers not forwarded: %+v", svc.bookIn)
	}

	var envelope struct {
		Data deliveryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != string(enums.DeliveryStatusAssigningDriver) {
		t.Fatalf("unexpected status: %s", envelope.Data.Status)
	}
	if envelope.Data.CourierOrderID == nil || *envelope.Data.CourierOrderID != courierOrderID {
		t.Fatalf("courier order id missing")
	}
}

func TestBookDeliveryRequiresArtisan(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	handler := BookDelivery(&stubDeliveryService{}, testLogger())

	req := authedRequest(http.MethodPost, "/api/v1/artisan/orders/"+orderID.String()+"/delivery", "", uuid.New())
	req = req.WithContext(withOrderParam(req.Context(), orderID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCourierWebhookForwardsUpdate(t *testing.T) {
	t.Parallel()

	svc := &stubDeliveryService{}
	handler := CourierWebhook(svc, testLogger())

	body := `{"courier_order_id":"LM-100","status":"picked_up","driver_name":"Ramon","driver_phone":"+639171234567"}`
	req := authedRequest(http.MethodPost, "/api/v1/webhooks/courier", body, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.updateIn.CourierOrderID != "LM-100" {
		t.Fatalf("courier order id not forwarded: %s", svc.updateIn.CourierOrderID)
	}
	if svc.updateIn.Status != enums.DeliveryStatusPickedUp {
		t.Fatalf("status not forwarded: %s", svc.updateIn.Status)
	}
	if svc.updateIn.DriverName == nil || *svc.updateIn.DriverName != "Ramon" {
		t.Fatalf("driver name not forwarded")
	}
}

func TestCourierWebhookRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	handler := CourierWebhook(&stubDeliveryService{}, testLogger())

	body := `{"courier_order_id":"LM-100","status":"teleported"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/webhooks/courier", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCourierWebhookUnknownBooking(t *testing.T) {
	t.Parallel()

	svc := &stubDeliveryService{err: pkgerrors.New(pkgerrors.CodeNotFound, "unknown courier order")}
	handler := CourierWebhook(svc, testLogger())

	body := `{"courier_order_id":"LM-404","status":"picked_up"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/webhooks/courier", body, uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
