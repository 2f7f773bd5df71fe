package point

import (
	"context"
	"time"

	models "github.com/fatflowers/loyalty/internal/models"
	types "github.com/fatflowers/loyalty/pkg/types"
)

// EarnRequest credits a wallet. ReferenceID plus MovementType form the
// idempotency key: replays of the same business event are silent no-ops.
type EarnRequest struct {
	UserID       int64                   `json:"user_id"`
	ReferenceID  string                  `json:"reference_id"`
	MovementType types.PointMovementType `json:"movement_type"`
	Amount       int64                   `json:"amount"`
	Description  string                  `json:"description"`
	ExpireAt     *time.Time              `json:"expire_at"`
}

// ReverseRequest claws back a prior accrual identified by
// (ReferenceID, OriginalType). The reversed amount is clamped to the wallet
// balance so a reversal can never drive it negative.
type ReverseRequest struct {
	UserID       int64                   `json:"user_id"`
	ReferenceID  string                  `json:"reference_id"`
	OriginalType types.PointMovementType `json:"original_type"`
	Description  string                  `json:"description"`
}

// Ledger is the wallet/ledger contract consumed by the reward reactor,
// the sweep scheduler and the HTTP handlers.
type Ledger interface {
	// Earn appends an accrual entry and raises the balance. Duplicate
	// (reference_id, movement_type) calls succeed without effect.
	Earn(ctx context.Context, req *EarnRequest) error
	// Reverse posts a PAYMENT_CANCELLED entry for a prior accrual and
	// returns the amount actually clawed back.
	Reverse(ctx context.Context, req *ReverseRequest) (int64, error)
	// GetWallet returns the user's wallet, creating an empty one on first read.
	GetWallet(ctx context.Context, userID int64) (*models.PointWallet, error)
	// GetHistory returns the user's ledger, active entries before inactive,
	// most recent first within each group.
	GetHistory(ctx context.Context, userID int64) ([]*models.PointHistory, error)
	// SweepExpired posts EXPIRED entries for earn entries past their deadline.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	// PurgeExpired soft-deletes expired entries past the retention window.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	// ScanHistory implements filtered/paginated admin listing.
	ScanHistory(ctx context.Context, req *ScanHistoryRequest) (*ScanHistoryResponse, error)
}

// Scan history request/response.
type ScanHistoryRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanHistoryResponse struct {
	Items []*models.PointHistory `json:"items"`
	Total int64                  `json:"total"`
}
