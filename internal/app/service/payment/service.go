package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/loyalty/internal/app/service/reward"
	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/logctx"
	"github.com/fatflowers/loyalty/pkg/tool"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	reactor *reward.Reactor
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, reactor *reward.Reactor) PaymentManager {
	return &Service{cfg: cfg, log: log, db: db, reactor: reactor}
}

func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*models.Payment, error) {
	if req == nil || req.OrderID == "" {
		return nil, fmt.Errorf("invalid create payment request")
	}

	var payment *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.WithContext(ctx).
			Where("id = ? AND deleted_at IS NULL", req.OrderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.UserID != req.UserID {
			return ErrOrderNotFound
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Payment{}).
			Where("order_id = ? AND deleted_at IS NULL", req.OrderID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePayment
		}

		now := time.Now()
		payment = &models.Payment{
			ID:        tool.GenerateUUIDV7(),
			PaymentNo: tool.GeneratePaymentNo(now),
			UserID:    req.UserID,
			OrderID:   order.ID,
			Amount:    order.Amount,
			Status:    types.PaymentStatusPending,
			Card:      datatypes.NewJSONType(req.Card),
		}
		if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("payment created",
		"payment_id", payment.ID, "payment_no", payment.PaymentNo, "amount", payment.Amount)
	return payment, nil
}

// ChangeStatus moves a payment along the transition table. The status write
// commits first; the point reaction runs after and relies on ledger
// idempotency, so a replayed call cannot double-credit.
func (s *Service) ChangeStatus(ctx context.Context, paymentID string, target types.PaymentStatus) (*models.Payment, error) {
	if !target.Valid() || target == types.PaymentStatusPending {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidTransition, target)
	}

	var payment models.Payment
	var from types.PaymentStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND deleted_at IS NULL", paymentID).
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to load payment: %w", err)
		}

		from = payment.Status
		if !target.CanTransitionFrom(from) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
		}

		now := time.Now()
		payment.Status = target
		payment.ProcessedAt = lo.ToPtr(now)
		if err := tx.WithContext(ctx).Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{"status": target, "processed_at": now}).Error; err != nil {
			return fmt.Errorf("failed to persist transition: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("payment transition committed",
		"payment_id", payment.ID, "from", from, "to", target)

	if err := s.react(ctx, &payment, from, target); err != nil {
		// The transition stays committed; the caller learns the reaction
		// outcome and a replay of the same change is a safe retry path.
		return &payment, err
	}
	return &payment, nil
}

func (s *Service) react(ctx context.Context, payment *models.Payment, from, to types.PaymentStatus) error {
	switch to {
	case types.PaymentStatusCompleted:
		return s.reactor.OnPaymentCompleted(ctx, payment)
	case types.PaymentStatusCancelled:
		// Only a completed payment has an accrual to claw back; cancelling
		// a pending payment needs no ledger work.
		if from == types.PaymentStatusCompleted {
			return s.reactor.OnPaymentCancelled(ctx, payment)
		}
	}
	return nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", paymentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// filtersAnd is a helper to combine multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanPayments implements paginated/admin listing with filters
func (s *Service) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment

	q := tx.Limit(req.Size)

	if req.From > 0 {
		q = q.Offset(req.From)
	}

	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}
