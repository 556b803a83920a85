package orders

import (
	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
)

// Actor identifies who drives a transition. It is recorded verbatim on the
// timeline row.
type Actor string

const (
	ActorBuyer   Actor = "buyer"
	ActorArtisan Actor = "artisan"
	ActorCourier Actor = "courier"
	ActorSystem  Actor = "system"
)

// transitions is the closed set of legal status moves. Everything not
// listed here is rejected, including moves out of the terminal states.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusAwaitingPayment: {
		enums.OrderStatusAwaitingVerification,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusAwaitingVerification: {
		enums.OrderStatusProcessing,
		enums.OrderStatusAwaitingPayment,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusReadyToShip,
		enums.OrderStatusRefund,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusReadyToShip: {
		enums.OrderStatusShipped,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusInTransit,
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusInTransit: {
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusToReview,
		enums.OrderStatusRefund,
	},
	enums.OrderStatusToReview: {
		enums.OrderStatusCompleted,
	},
	// refund is terminal once processed; the only moves out are the
	// withdrawn-request returns to where the order was.
	enums.OrderStatusRefund: {
		enums.OrderStatusProcessing,
		enums.OrderStatusDelivered,
	},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// EnsureTransition returns a state conflict error when from -> to is not a
// legal move.
func EnsureTransition(from, to enums.OrderStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order transition not allowed").
		WithDetails(map[string]any{"from": from, "to": to})
}
