package types

// PointMovementType identifies the business event behind a ledger entry.
// Together with the reference id it forms the ledger idempotency key:
// at most one non-deleted entry may exist per (reference_id, movement_type).
type PointMovementType string

const (
	PointMovementPaymentEarned    PointMovementType = "PAYMENT_EARNED"
	PointMovementReviewEarned     PointMovementType = "REVIEW_EARNED"
	PointMovementPaymentCancelled PointMovementType = "PAYMENT_CANCELLED"
	PointMovementUsed             PointMovementType = "USED"
	PointMovementExpired          PointMovementType = "EXPIRED"
)

// Credit reports whether the movement adds points to a wallet.
// Non-credit movements record their amount as positive but subtract it.
func (t PointMovementType) Credit() bool {
	return t == PointMovementPaymentEarned || t == PointMovementReviewEarned
}
