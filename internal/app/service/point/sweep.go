package point

import (
	"context"
	"fmt"
	"time"

	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/logctx"
	"github.com/fatflowers/loyalty/pkg/tool"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

var earnMovementTypes = []types.PointMovementType{
	types.PointMovementPaymentEarned,
	types.PointMovementReviewEarned,
}

// RetentionCutoff returns the date-truncated deadline: entries that expired
// before it are old enough to purge.
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -retentionDays)
}

// SweepExpired posts one EXPIRED entry per expired earn entry, clamped to the
// wallet balance. The guard entry keyed by (originating entry id, EXPIRED)
// makes re-running the sweep a no-op.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	var candidates []*models.PointHistory
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL AND expire_at IS NOT NULL AND expire_at <= ? AND movement_type IN ?", now, earnMovementTypes).
		Where("NOT EXISTS (SELECT 1 FROM point_history x WHERE x.reference_id = point_history.id AND x.movement_type = ? AND x.deleted_at IS NULL)",
			types.PointMovementExpired).
		Order("created_at asc").
		Find(&candidates).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list expired entries: %w", err)
	}

	var swept int64
	for _, entry := range candidates {
		if err := s.expireEntry(ctx, entry); err != nil {
			// keep sweeping the rest; the entry stays eligible for the next run
			logctx.FromCtx(ctx, s.log).Errorw("failed to expire ledger entry",
				"entry_id", entry.ID, "err", err)
			continue
		}
		swept++
		s.invalidateWalletCache(ctx, entry.UserID)
	}
	return swept, nil
}

func (s *Service) expireEntry(ctx context.Context, entry *models.PointHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, entry.UserID, false)
		if err != nil {
			return err
		}

		// re-check under the wallet lock in case a concurrent sweep won
		guard, err := s.findEntry(ctx, tx, entry.ID, types.PointMovementExpired)
		if err != nil {
			return err
		}
		if guard != nil {
			return nil
		}

		expired := entry.Amount
		if wallet.Balance < expired {
			expired = wallet.Balance
		}

		if expired > 0 {
			wallet.Balance -= expired
			if err := tx.WithContext(ctx).Model(&models.PointWallet{}).
				Where("id = ?", wallet.ID).
				Update("balance", wallet.Balance).Error; err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		}

		record := &models.PointHistory{
			ID:           tool.GenerateUUIDV7(),
			WalletID:     wallet.ID,
			UserID:       entry.UserID,
			Amount:       expired,
			MovementType: types.PointMovementExpired,
			ReferenceID:  entry.ID,
			Description:  fmt.Sprintf("expired %s", entry.MovementType),
		}
		if err := tx.WithContext(ctx).Create(record).Error; err != nil {
			return fmt.Errorf("failed to append expired entry: %w", err)
		}
		return nil
	})
}

// PurgeExpired soft-deletes fully-expired entry pairs once the originating
// entry's deadline is past the retention window. Pairs whose EXPIRED amount
// was clamped stay in place so the balance remains reconstructable from the
// surviving entries.
func (s *Service) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	// the cutoff day itself is old enough: date(expire) <= date(now) - retention
	deadline := RetentionCutoff(now, s.cfg.Point.RetentionDays).AddDate(0, 0, 1)

	var originals []*models.PointHistory
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL AND expire_at IS NOT NULL AND expire_at < ? AND movement_type IN ?", deadline, earnMovementTypes).
		Where("EXISTS (SELECT 1 FROM point_history x WHERE x.reference_id = point_history.id AND x.movement_type = ? AND x.deleted_at IS NULL AND x.amount = point_history.amount)",
			types.PointMovementExpired).
		Find(&originals).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list purge candidates: %w", err)
	}
	if len(originals) == 0 {
		return 0, nil
	}

	ids := lo.Map(originals, func(o *models.PointHistory, _ int) string { return o.ID })

	var purged int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).Model(&models.PointHistory{}).
			Where("deleted_at IS NULL AND (id IN ? OR (reference_id IN ? AND movement_type = ?))",
				ids, ids, types.PointMovementExpired).
			Update("deleted_at", now)
		if res.Error != nil {
			return fmt.Errorf("failed to purge ledger entries: %w", res.Error)
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
