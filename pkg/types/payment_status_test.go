package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_CanTransitionFrom_AllEdges(t *testing.T) {
	all := []PaymentStatus{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled, PaymentStatusFailed}

	allowed := map[[2]PaymentStatus]bool{
		{PaymentStatusPending, PaymentStatusCompleted}:   true,
		{PaymentStatusPending, PaymentStatusCancelled}:   true,
		{PaymentStatusPending, PaymentStatusFailed}:      true,
		{PaymentStatusCompleted, PaymentStatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			got := to.CanTransitionFrom(from)
			assert.Equal(t, allowed[[2]PaymentStatus{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestPaymentStatus_Terminal(t *testing.T) {
	require.False(t, PaymentStatusPending.Terminal())
	// COMPLETED may still be cancelled, so it is not terminal
	require.False(t, PaymentStatusCompleted.Terminal())
	require.True(t, PaymentStatusCancelled.Terminal())
	require.True(t, PaymentStatusFailed.Terminal())
}

func TestPaymentStatus_Valid(t *testing.T) {
	require.True(t, PaymentStatusPending.Valid())
	require.False(t, PaymentStatus("REFUNDED").Valid())
	require.False(t, PaymentStatus("").Valid())
}
