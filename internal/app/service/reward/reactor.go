package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/loyalty/internal/app/service/point"
	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/logctx"
	"github.com/fatflowers/loyalty/pkg/metrics"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Reactor translates committed payment transitions (and review events) into
// ledger operations. Callers invoke it only after the transition is durable;
// replays are safe because every ledger operation is idempotent.
type Reactor struct {
	cfg    *config.Config
	ledger point.Ledger
	log    *zap.SugaredLogger
	bpDur  *prometheus.HistogramVec
}

func NewReactor(cfg *config.Config, ledger point.Ledger, log *zap.SugaredLogger) *Reactor {
	return &Reactor{cfg: cfg, ledger: ledger, log: log, bpDur: metrics.BusinessProcess("loyalty")}
}

// EarnAmount 按基点比例取整计算支付返点，floor(amount * bps / 10000)
func EarnAmount(amount, rateBps int64) int64 {
	if amount <= 0 || rateBps <= 0 {
		return 0
	}
	return amount * rateBps / 10000
}

func (r *Reactor) expiry(now time.Time) *time.Time {
	if r.cfg.Point.ExpiryDays <= 0 {
		return nil
	}
	return lo.ToPtr(now.AddDate(0, 0, r.cfg.Point.ExpiryDays))
}

// OnPaymentCompleted credits floor(amount * earn_rate_bps / 10000) points,
// keyed by the payment id.
func (r *Reactor) OnPaymentCompleted(ctx context.Context, payment *models.Payment) error {
	start := time.Now()
	defer r.observe("payment_completed", start)

	earn := EarnAmount(payment.Amount, r.cfg.Point.EarnRateBps)
	if earn <= 0 {
		return nil
	}
	err := r.ledger.Earn(ctx, &point.EarnRequest{
		UserID:       payment.UserID,
		ReferenceID:  payment.ID,
		MovementType: types.PointMovementPaymentEarned,
		Amount:       earn,
		Description:  fmt.Sprintf("payment %s completed", payment.PaymentNo),
		ExpireAt:     r.expiry(start),
	})
	if err != nil {
		return r.wrap(ctx, err, "earn on payment completed", payment.ID)
	}
	return nil
}

// OnPaymentCancelled claws back the prior PAYMENT_EARNED accrual, clamped to
// the remaining balance.
func (r *Reactor) OnPaymentCancelled(ctx context.Context, payment *models.Payment) error {
	start := time.Now()
	defer r.observe("payment_cancelled", start)

	reversed, err := r.ledger.Reverse(ctx, &point.ReverseRequest{
		UserID:       payment.UserID,
		ReferenceID:  payment.ID,
		OriginalType: types.PointMovementPaymentEarned,
		Description:  fmt.Sprintf("payment %s cancelled", payment.PaymentNo),
	})
	if err != nil {
		// nothing-to-reverse is an expected domain outcome, not a failure
		// of the reaction machinery
		if errors.Is(err, point.ErrWalletNotFound) || errors.Is(err, point.ErrLedgerEntryNotFound) {
			return err
		}
		return r.wrap(ctx, err, "reverse on payment cancelled", payment.ID)
	}
	logctx.FromCtx(ctx, r.log).Infow("payment points reversed",
		"payment_id", payment.ID, "amount", reversed)
	return nil
}

// OnReviewCreated credits the fixed review reward, keyed by the review id.
func (r *Reactor) OnReviewCreated(ctx context.Context, reviewID string, authorUserID int64) error {
	start := time.Now()
	defer r.observe("review_created", start)

	if r.cfg.Point.ReviewReward <= 0 {
		return nil
	}
	err := r.ledger.Earn(ctx, &point.EarnRequest{
		UserID:       authorUserID,
		ReferenceID:  reviewID,
		MovementType: types.PointMovementReviewEarned,
		Amount:       r.cfg.Point.ReviewReward,
		Description:  "review reward",
		ExpireAt:     r.expiry(start),
	})
	if err != nil {
		return r.wrap(ctx, err, "earn on review created", reviewID)
	}
	return nil
}

func (r *Reactor) wrap(ctx context.Context, err error, op, refID string) error {
	logctx.FromCtx(ctx, r.log).Errorw("point processing failed",
		"op", op, "reference_id", refID, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrPointProcessingFailed, op, err)
}

func (r *Reactor) observe(subtype string, start time.Time) {
	if r.bpDur == nil {
		return
	}
	r.bpDur.WithLabelValues("reward", subtype).Observe(metrics.MillisecondsSince(start))
}
