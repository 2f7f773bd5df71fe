package point

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/tool"
	types "github.com/fatflowers/loyalty/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.PointWallet{}, &models.PointHistory{}))

	cfg := &config.Config{}
	cfg.Point.RetentionDays = 7
	return &Service{cfg: cfg, db: db, log: zap.NewNop().Sugar()}
}

func earnReq(userID int64, refID string, amount int64, expireAt *time.Time) *EarnRequest {
	return &EarnRequest{
		UserID:       userID,
		ReferenceID:  refID,
		MovementType: types.PointMovementPaymentEarned,
		Amount:       amount,
		ExpireAt:     expireAt,
	}
}

func (s *Service) mustWallet(t *testing.T, userID int64) *models.PointWallet {
	t.Helper()
	var w models.PointWallet
	require.NoError(t, s.db.Where("user_id = ?", userID).First(&w).Error)
	return &w
}

func (s *Service) entries(t *testing.T, userID int64) []*models.PointHistory {
	t.Helper()
	var rows []*models.PointHistory
	require.NoError(t, s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error)
	return rows
}

func TestEarn_RedeliveryCreditsOnce(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, nil)))
	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, nil)))

	require.EqualValues(t, 100, s.mustWallet(t, 1).Balance)

	var count int64
	require.NoError(t, s.db.Model(&models.PointHistory{}).
		Where("reference_id = ? AND movement_type = ? AND deleted_at IS NULL", "pay-1", types.PointMovementPaymentEarned).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEarn_UniqueIndexBlocksRawDuplicate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, nil)))
	wallet := s.mustWallet(t, 1)

	dup := &models.PointHistory{
		ID:           tool.GenerateUUIDV7(),
		WalletID:     wallet.ID,
		UserID:       1,
		Amount:       100,
		MovementType: types.PointMovementPaymentEarned,
		ReferenceID:  "pay-1",
	}
	require.Error(t, s.db.Create(dup).Error, "second live entry for the same key must be rejected")

	// soft-deleted rows do not block a fresh entry for the key
	require.NoError(t, s.db.Model(&models.PointHistory{}).
		Where("reference_id = ?", "pay-1").
		Update("deleted_at", time.Now()).Error)
	dup.ID = tool.GenerateUUIDV7()
	require.NoError(t, s.db.Create(dup).Error)
}

func TestReverse_ClampsToRemainingBalance(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, nil)))
	wallet := s.mustWallet(t, 1)

	// simulate a spend of 60 points outside the core
	used := &models.PointHistory{
		ID:           tool.GenerateUUIDV7(),
		WalletID:     wallet.ID,
		UserID:       1,
		Amount:       60,
		MovementType: types.PointMovementUsed,
		ReferenceID:  "use-1",
	}
	require.NoError(t, s.db.Create(used).Error)
	require.NoError(t, s.db.Model(&models.PointWallet{}).
		Where("id = ?", wallet.ID).Update("balance", 40).Error)

	reversed, err := s.Reverse(ctx, &ReverseRequest{
		UserID:       1,
		ReferenceID:  "pay-1",
		OriginalType: types.PointMovementPaymentEarned,
	})
	require.NoError(t, err)
	require.EqualValues(t, 40, reversed)
	require.EqualValues(t, 0, s.mustWallet(t, 1).Balance)

	// replay reports the recorded amount without a second entry
	reversed, err = s.Reverse(ctx, &ReverseRequest{
		UserID:       1,
		ReferenceID:  "pay-1",
		OriginalType: types.PointMovementPaymentEarned,
	})
	require.NoError(t, err)
	require.EqualValues(t, 40, reversed)

	var count int64
	require.NoError(t, s.db.Model(&models.PointHistory{}).
		Where("movement_type = ?", types.PointMovementPaymentCancelled).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestReverse_MissingWalletAndEntry(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Reverse(ctx, &ReverseRequest{UserID: 9, ReferenceID: "pay-9", OriginalType: types.PointMovementPaymentEarned})
	require.ErrorIs(t, err, ErrWalletNotFound)

	require.NoError(t, s.Earn(ctx, earnReq(9, "pay-1", 10, nil)))
	_, err = s.Reverse(ctx, &ReverseRequest{UserID: 9, ReferenceID: "pay-other", OriginalType: types.PointMovementPaymentEarned})
	require.ErrorIs(t, err, ErrLedgerEntryNotFound)
}

func TestSweepExpired_Idempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, lo.ToPtr(now.Add(-time.Hour)))))
	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-2", 50, lo.ToPtr(now.Add(time.Hour)))))

	swept, err := s.SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)
	require.EqualValues(t, 50, s.mustWallet(t, 1).Balance)

	// re-run changes nothing
	swept, err = s.SweepExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, swept)
	require.EqualValues(t, 50, s.mustWallet(t, 1).Balance)

	var count int64
	require.NoError(t, s.db.Model(&models.PointHistory{}).
		Where("movement_type = ?", types.PointMovementExpired).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBalanceEqualsSumOfSurvivingEntries(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, lo.ToPtr(now.Add(-time.Hour)))))
	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-2", 70, nil)))
	_, err := s.SweepExpired(ctx, now)
	require.NoError(t, err)
	_, err = s.Reverse(ctx, &ReverseRequest{UserID: 1, ReferenceID: "pay-2", OriginalType: types.PointMovementPaymentEarned})
	require.NoError(t, err)

	var sum int64
	for _, e := range s.entries(t, 1) {
		if e.DeletedAt == nil {
			sum += e.Signed()
		}
	}
	require.Equal(t, s.mustWallet(t, 1).Balance, sum)
	require.GreaterOrEqual(t, s.mustWallet(t, 1).Balance, int64(0))
}

func TestPurgeExpired_RetentionBoundary(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	// expired exactly retention days ago (same day after truncation)
	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-old", 100, lo.ToPtr(now.AddDate(0, 0, -7)))))
	// expired one day inside the window
	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-recent", 50, lo.ToPtr(now.AddDate(0, 0, -6)))))

	_, err := s.SweepExpired(ctx, now)
	require.NoError(t, err)

	purged, err := s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	// the pay-old accrual and its EXPIRED counterpart, nothing else
	require.EqualValues(t, 2, purged)

	var live []*models.PointHistory
	require.NoError(t, s.db.Where("deleted_at IS NULL").Find(&live).Error)
	for _, e := range live {
		require.NotEqual(t, "pay-old", e.ReferenceID)
	}

	// re-run is a no-op
	purged, err = s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, purged)
}

func TestPurgeExpired_KeepsClampedPairs(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Earn(ctx, earnReq(1, "pay-1", 100, lo.ToPtr(now.AddDate(0, 0, -8)))))
	wallet := s.mustWallet(t, 1)

	// spend part of it so the expiry is clamped below the original amount
	require.NoError(t, s.db.Model(&models.PointWallet{}).
		Where("id = ?", wallet.ID).Update("balance", 30).Error)
	_, err := s.SweepExpired(ctx, now)
	require.NoError(t, err)

	purged, err := s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, purged, "clamped pairs must survive the purge")
}
