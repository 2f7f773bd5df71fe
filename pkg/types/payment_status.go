package types

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// paymentTransitions maps a target status to the set of statuses it may be
// reached from. PENDING is the initial status and is never a target.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusCompleted: {PaymentStatusPending},
	PaymentStatusCancelled: {PaymentStatusPending, PaymentStatusCompleted},
	PaymentStatusFailed:    {PaymentStatusPending},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled, PaymentStatusFailed:
		return true
	}
	return false
}

// CanTransitionFrom reports whether a payment currently in `from` may move to s.
func (s PaymentStatus) CanTransitionFrom(from PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == from {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
// COMPLETED still allows cancellation, so only CANCELLED and FAILED are terminal.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCancelled || s == PaymentStatusFailed
}
