package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tahanancrafts/marketplace-backend/api/responses"
	"github.com/tahanancrafts/marketplace-backend/api/validators"
	internalorders "github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

// ListOrders returns the buyer's order page, newest first.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListBuyerOrders(r.Context(), buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderPage(list, params.Limit))
	}
}

// ListArtisanOrders returns the artisan's order page, newest first.
func ListArtisanOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		artisanID, err := artisanIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListArtisanOrders(r.Context(), artisanID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderPage(list, params.Limit))
	}
}

// OrderDetail returns one order for either of its parties.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.GetOrderInput{OrderID: orderID, UserID: userID}
		if artisanID, err := artisanIDFrom(r); err == nil {
			input.ArtisanID = &artisanID
		}

		order, err := svc.GetOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

// UploadPaymentProof accepts a buyer's GCash payment evidence.
func UploadPaymentProof(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload uploadProofRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		proofType, err := enums.ParsePaymentProofType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid proof type"))
			return
		}
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		proof, err := svc.UploadPaymentProof(r.Context(), internalorders.UploadProofInput{
			OrderID:       orderID,
			BuyerID:       buyerID,
			Type:          proofType,
			ImageURL:      payload.ImageURL,
			Amount:        amount,
			ReferenceNo:   payload.ReferenceNo,
			SenderAccount: payload.SenderAccount,
			PaymentSource: payload.PaymentSource,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"proof_id": proof.ID,
			"order_id": proof.OrderID,
			"type":     proof.Type,
			"amount":   proof.Amount,
		})
	}
}

// VerifyPayment records the artisan's approve or reject decision on a proof.
func VerifyPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.VerifyPayment(r.Context(), internalorders.VerifyPaymentInput{
			OrderID:   orderID,
			ProofID:   payload.ProofID,
			ArtisanID: artisanID,
			Approve:   payload.Decision == "approve",
			Note:      payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

// CancelOrder processes a buyer's cancellation request.
func CancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Cancel(r.Context(), internalorders.CancelInput{
			OrderID: orderID,
			BuyerID: buyerID,
			Reason:  payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancellation recorded"})
	}
}

// RequestRefund opens a refund on a delivered order.
func RequestRefund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.RequestRefund(r.Context(), internalorders.RequestRefundInput{
			OrderID: orderID,
			BuyerID: buyerID,
			Reason:  payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "refund requested"})
	}
}

// ResolveRefund records the artisan's decision on a pending refund.
func ResolveRefund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		var payload refundDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.RefundDecisionInput{
			OrderID:   orderID,
			ArtisanID: artisanID,
			Decision:  internalorders.RefundDecision(payload.Decision),
			ProofURL:  payload.ProofURL,
			Note:      payload.Note,
		}
		if payload.Amount != nil {
			amount, err := decimal.NewFromString(*payload.Amount)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund amount"))
				return
			}
			input.Amount = &amount
		}

		err = svc.ResolveRefund(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "refund decision recorded"})
	}
}

// ConfirmReceived acknowledges delivery on the buyer's side.
func ConfirmReceived(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ConfirmReceived(r.Context(), internalorders.ConfirmReceivedInput{
			OrderID: orderID,
			BuyerID: buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "receipt confirmed"})
	}
}

// MarkItemReviewed flags one order item as reviewed; the order completes
// once every item is.
func MarkItemReviewed(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuidParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.MarkItemReviewed(r.Context(), internalorders.MarkItemReviewedInput{
			OrderID: orderID,
			ItemID:  itemID,
			BuyerID: buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "review recorded"})
	}
}

type uploadProofRequest struct {
	Type          string  `json:"type" validate:"required,oneof=downpayment fullpayment cod_balance"`
	ImageURL      string  `json:"image_url" validate:"required,url"`
	Amount        string  `json:"amount" validate:"required"`
	ReferenceNo   *string `json:"reference_no,omitempty" validate:"omitempty,max=64"`
	SenderAccount *string `json:"sender_account,omitempty" validate:"omitempty,max=64"`
	PaymentSource *string `json:"payment_source,omitempty" validate:"omitempty,max=64"`
}

type verifyPaymentRequest struct {
	ProofID  uuid.UUID `json:"proof_id" validate:"required,uuid4"`
	Decision string    `json:"decision" validate:"required,oneof=approve reject"`
	Note     *string   `json:"note,omitempty" validate:"omitempty,max=500"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type refundRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type refundDecisionRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=process withdraw"`
	ProofURL *string `json:"proof_url,omitempty" validate:"required_if=Decision process,omitempty,url"`
	Amount   *string `json:"amount,omitempty" validate:"omitempty"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type orderDetailResponse struct {
	orderResponse
	MessageToSeller *string                 `json:"message_to_seller,omitempty"`
	Delivery        *deliveryResponse       `json:"delivery,omitempty"`
	Refund          *refundResponse         `json:"refund,omitempty"`
	PaymentProofs   []paymentProofResponse  `json:"payment_proofs,omitempty"`
	Timeline        []timelineEntryResponse `json:"timeline,omitempty"`
}

type refundResponse struct {
	RefundID    uuid.UUID       `json:"refund_id"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	ProofURL    *string         `json:"proof_url,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

type paymentProofResponse struct {
	ProofID       uuid.UUID       `json:"proof_id"`
	Type          string          `json:"type"`
	ImageURL      string          `json:"image_url"`
	Amount        decimal.Decimal `json:"amount"`
	ReferenceNo   *string         `json:"reference_no,omitempty"`
	SenderAccount *string         `json:"sender_account,omitempty"`
	PaymentSource *string         `json:"payment_source,omitempty"`
	Verified      bool            `json:"verified"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	RejectedAt    *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type timelineEntryResponse struct {
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newOrderDetailResponse(order *models.Order) orderDetailResponse {
	detail := orderDetailResponse{
		orderResponse:   newOrderResponse(order),
		MessageToSeller: order.MessageToSeller,
	}
	if order.Delivery != nil {
		booking := newDeliveryResponse(order.Delivery)
		detail.Delivery = &booking
	}
	if order.Refund != nil {
		detail.Refund = &refundResponse{
			RefundID:    order.Refund.ID,
			Status:      string(order.Refund.Status),
			Amount:      order.Refund.Amount,
			Reason:      order.Refund.Reason,
			ProofURL:    order.Refund.ProofURL,
			RequestedAt: order.Refund.RequestedAt,
			ProcessedAt: order.Refund.ProcessedAt,
		}
	}
	for _, proof := range order.PaymentProofs {
		detail.PaymentProofs = append(detail.PaymentProofs, paymentProofResponse{
			ProofID:       proof.ID,
			Type:          string(proof.Type),
			ImageURL:      proof.ImageURL,
			Amount:        proof.Amount,
			ReferenceNo:   proof.ReferenceNo,
			SenderAccount: proof.SenderAccount,
			PaymentSource: proof.PaymentSource,
			Verified:      proof.Verified,
			VerifiedAt:    proof.VerifiedAt,
			RejectedAt:    proof.RejectedAt,
			CreatedAt:     proof.CreatedAt,
		})
	}
	for _, entry := range order.Timeline {
		var from *string
		if entry.FromStatus != nil {
			s := string(*entry.FromStatus)
			from = &s
		}
		detail.Timeline = append(detail.Timeline, timelineEntryResponse{
			FromStatus: from,
			ToStatus:   string(entry.ToStatus),
			Actor:      entry.Actor,
			Note:       entry.Note,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return detail
}

type orderPage struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

// newOrderPage trims the lookahead row and encodes the cursor for the next
// page when one exists.
func newOrderPage(list []models.Order, limit int) orderPage {
	normalized := pagination.NormalizeLimit(limit)
	hasMore := len(list) > normalized
	if hasMore {
		list = list[:normalized]
	}

	page := orderPage{Orders: make([]orderResponse, 0, len(list))}
	for i := range list {
		page.Orders = append(page.Orders, newOrderResponse(&list[i]))
	}
	if hasMore && len(list) > 0 {
		last := list[len(list)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	return uuidParam(r, "orderId")
}

func uuidParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, key+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
