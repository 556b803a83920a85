package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahanancrafts/marketplace-backend/pkg/enums"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from enums.OrderStatus
		to   enums.OrderStatus
		want bool
	}{
		{"proof upload", enums.OrderStatusAwaitingPayment, enums.OrderStatusAwaitingVerification, true},
		{"verification approved", enums.OrderStatusAwaitingVerification, enums.OrderStatusProcessing, true},
		{"verification rejected", enums.OrderStatusAwaitingVerification, enums.OrderStatusAwaitingPayment, true},
		{"cancel before payment", enums.OrderStatusAwaitingPayment, enums.OrderStatusCancelled, true},
		{"cancel during verification", enums.OrderStatusAwaitingVerification, enums.OrderStatusCancelled, true},
		{"cancel unpaid processing", enums.OrderStatusProcessing, enums.OrderStatusCancelled, true},
		{"refund from processing", enums.OrderStatusProcessing, enums.OrderStatusRefund, true},
		{"refund from delivered", enums.OrderStatusDelivered, enums.OrderStatusRefund, true},
		{"refund withdrawn", enums.OrderStatusRefund, enums.OrderStatusProcessing, true},
		{"refund withdrawn after delivery", enums.OrderStatusRefund, enums.OrderStatusDelivered, true},
		{"delivery booked", enums.OrderStatusProcessing, enums.OrderStatusReadyToShip, true},
		{"picked up", enums.OrderStatusReadyToShip, enums.OrderStatusShipped, true},
		{"en route", enums.OrderStatusShipped, enums.OrderStatusInTransit, true},
		{"delivered from transit", enums.OrderStatusInTransit, enums.OrderStatusDelivered, true},
		{"delivered without transit update", enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{"buyer confirms receipt", enums.OrderStatusDelivered, enums.OrderStatusToReview, true},
		{"all items reviewed", enums.OrderStatusToReview, enums.OrderStatusCompleted, true},

		{"skip verification", enums.OrderStatusAwaitingPayment, enums.OrderStatusProcessing, false},
		{"ship before booking", enums.OrderStatusProcessing, enums.OrderStatusShipped, false},
		{"cancel after shipping", enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{"refund while shipped", enums.OrderStatusShipped, enums.OrderStatusRefund, false},
		{"cancel out of refund", enums.OrderStatusRefund, enums.OrderStatusCancelled, false},
		{"reopen completed", enums.OrderStatusCompleted, enums.OrderStatusProcessing, false},
		{"reopen cancelled", enums.OrderStatusCancelled, enums.OrderStatusAwaitingPayment, false},
		{"backwards delivery", enums.OrderStatusDelivered, enums.OrderStatusInTransit, false},
		{"self transition", enums.OrderStatusProcessing, enums.OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusCancelled} {
		require.True(t, terminal.IsTerminal())
		assert.Empty(t, transitions[terminal])
	}
}

func TestEnsureTransitionReportsStateConflict(t *testing.T) {
	err := EnsureTransition(enums.OrderStatusCompleted, enums.OrderStatusProcessing)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, enums.OrderStatusCompleted, details["from"])
	assert.Equal(t, enums.OrderStatusProcessing, details["to"])

	assert.NoError(t, EnsureTransition(enums.OrderStatusProcessing, enums.OrderStatusReadyToShip))
}
