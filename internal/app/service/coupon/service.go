package coupon

import (
	"context"
	"fmt"
	"time"

	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/logctx"
	types "github.com/fatflowers/loyalty/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

// PurgeCutoff returns the date-truncated deadline for the purge sweep:
// user-coupons whose parent coupon expired before it are old enough to drop.
func PurgeCutoff(now time.Time, retentionDays int) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -retentionDays)
}

// ExpireSweep marks ACTIVE user-coupons of expired coupons as EXPIRED, then
// soft-deletes the expired coupons themselves. Both are set-based monotonic
// updates; re-running against already-advanced rows changes nothing.
func (s *Service) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).Model(&models.UserCoupon{}).
			Where("status = ? AND deleted_at IS NULL AND coupon_id IN (?)",
				types.UserCouponStatusActive,
				tx.Model(&models.Coupon{}).Select("id").Where("expire_at <= ?", now)).
			Update("status", types.UserCouponStatusExpired)
		if res.Error != nil {
			return fmt.Errorf("failed to expire user coupons: %w", res.Error)
		}
		affected = res.RowsAffected

		res = tx.WithContext(ctx).Model(&models.Coupon{}).
			Where("expire_at <= ? AND deleted_at IS NULL", now).
			Update("deleted_at", now)
		if res.Error != nil {
			return fmt.Errorf("failed to soft-delete coupons: %w", res.Error)
		}
		affected += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	logctx.FromCtx(ctx, s.log).Infow("coupon expire sweep done", "rows", affected)
	return affected, nil
}

// PurgeSweep soft-deletes EXPIRED user-coupons whose parent coupon expired at
// least retention_days ago (date-truncated comparison).
func (s *Service) PurgeSweep(ctx context.Context, now time.Time) (int64, error) {
	// the cutoff day itself is old enough: date(expire) <= date(now) - retention
	deadline := PurgeCutoff(now, s.cfg.Point.RetentionDays).AddDate(0, 0, 1)

	res := s.db.WithContext(ctx).Model(&models.UserCoupon{}).
		Where("status = ? AND deleted_at IS NULL AND coupon_id IN (?)",
			types.UserCouponStatusExpired,
			s.db.Model(&models.Coupon{}).Select("id").Where("expire_at < ?", deadline)).
		Update("deleted_at", now)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge user coupons: %w", res.Error)
	}
	logctx.FromCtx(ctx, s.log).Infow("coupon purge sweep done", "rows", res.RowsAffected)
	return res.RowsAffected, nil
}
