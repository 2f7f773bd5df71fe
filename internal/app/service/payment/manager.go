package payment

import (
	"context"

	models "github.com/fatflowers/loyalty/internal/models"
	types "github.com/fatflowers/loyalty/pkg/types"
)

type CreatePaymentRequest struct {
	UserID  int64                   `json:"-"`
	OrderID string                  `json:"order_id"`
	Card    *models.PaymentCardInfo `json:"card"`
}

// PaymentManager drives the payment state machine and exposes read paths.
type PaymentManager interface {
	// Create a PENDING payment for an order. The amount comes from the
	// order record; the core never computes order totals.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*models.Payment, error)
	// ChangeStatus validates the transition table, persists the change and
	// triggers the point reaction after commit. The returned payment holds
	// the committed state even when the reaction reports an error.
	ChangeStatus(ctx context.Context, paymentID string, target types.PaymentStatus) (*models.Payment, error)
	// Fetch a single payment.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	// Scan payments (used by admin list pages).
	ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error)
}

// Scan payment request/response.
type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}
