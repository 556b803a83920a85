package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/api/middleware"
	checkoutsvc "github.com/tahanancrafts/marketplace-backend/internal/checkout"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

type stubCheckoutService struct {
	result *checkoutsvc.Result
	err    error
	input  checkoutsvc.Input
}

func (s *stubCheckoutService) Checkout(ctx context.Context, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	s.input = input
	return s.result, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test"})
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCheckoutSuccess(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	addressID := uuid.New()
	lineID := uuid.New()
	order := models.Order{
		ID:                  uuid.New(),
		OrderNumber:         "THC-20260831-AB12CD34",
		BuyerID:             buyerID,
		ArtisanID:           uuid.New(),
		Status:              enums.OrderStatusAwaitingPayment,
		PaymentMethod:       enums.PaymentMethodGcashDown,
		ItemsSubtotal:       decimal.RequireFromString("1000.00"),
		ShippingFee:         decimal.RequireFromString("180.00"),
		GrandTotal:          decimal.RequireFromString("1180.00"),
		DownpaymentRequired: true,
		DownpaymentDue:      decimal.RequireFromString("590.00"),
		PartialPayment:      decimal.RequireFromString("590.00"),
		CODPayment:          decimal.RequireFromString("590.00"),
	}
	svc := &stubCheckoutService{result: &checkoutsvc.Result{Orders: []models.Order{order}}}
	handler := Checkout(svc, testLogger())

	body := `{"shipping_address_id":"` + addressID.String() + `","cart_line_ids":["` + lineID.String() + `"]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body, buyerID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.BuyerID != buyerID {
		t.Fatalf("buyer id not forwarded: %s", svc.input.BuyerID)
	}
	if len(svc.input.CartLineIDs) != 1 || svc.input.CartLineIDs[0] != lineID {
		t.Fatalf("cart line ids not forwarded: %v", svc.input.CartLineIDs)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(envelope.Data.Orders))
	}
	if envelope.Data.Orders[0].OrderNumber != order.OrderNumber {
		t.Fatalf("unexpected order number: %s", envelope.Data.Orders[0].OrderNumber)
	}
	if !envelope.Data.Orders[0].TotalPayNow.Equal(order.PartialPayment) {
		t.Fatalf("unexpected pay-now amount: %s", envelope.Data.Orders[0].TotalPayNow)
	}
	if !envelope.Data.Orders[0].CODAmount.Equal(order.CODPayment) {
		t.Fatalf("unexpected cod amount: %s", envelope.Data.Orders[0].CODAmount)
	}
}

func TestCheckoutRequiresCartSelection(t *testing.T) {
	t.Parallel()

	handler := Checkout(&stubCheckoutService{}, testLogger())
	body := `{"shipping_address_id":"` + uuid.NewString() + `","cart_line_ids":[]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	t.Parallel()

	handler := Checkout(&stubCheckoutService{}, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
