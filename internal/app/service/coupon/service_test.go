package coupon

import (
	"context"
	"testing"
	"time"

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
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Coupon{}, &models.UserCoupon{}))

	cfg := &config.Config{}
	cfg.Point.RetentionDays = 7
	return NewService(cfg, db, zap.NewNop().Sugar())
}

func (s *Service) seedCoupon(t *testing.T, expireAt time.Time, status types.UserCouponStatus) (string, string) {
	t.Helper()
	c := &models.Coupon{ID: tool.GenerateUUIDV7(), Name: "welcome", DiscountAmount: 500, ExpireAt: expireAt}
	require.NoError(t, s.db.Create(c).Error)
	uc := &models.UserCoupon{ID: tool.GenerateUUIDV7(), UserID: 1, CouponID: c.ID, Status: status}
	require.NoError(t, s.db.Create(uc).Error)
	return c.ID, uc.ID
}

func TestPurgeCutoff(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 8, 31, 23, 59, 59, 0, loc)

	require.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), PurgeCutoff(now, 7))

	// time of day never shifts the cutoff
	morning := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
	require.Equal(t, PurgeCutoff(now, 7), PurgeCutoff(morning, 7))
}

func TestExpireSweep_Idempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, expiredUC := s.seedCoupon(t, now.Add(-time.Hour), types.UserCouponStatusActive)
	_, liveUC := s.seedCoupon(t, now.Add(time.Hour), types.UserCouponStatusActive)

	affected, err := s.ExpireSweep(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, affected, "one user-coupon advanced plus one coupon soft-deleted")

	var uc models.UserCoupon
	require.NoError(t, s.db.First(&uc, "id = ?", expiredUC).Error)
	require.Equal(t, types.UserCouponStatusExpired, uc.Status)
	uc = models.UserCoupon{}
	require.NoError(t, s.db.First(&uc, "id = ?", liveUC).Error)
	require.Equal(t, types.UserCouponStatusActive, uc.Status)

	affected, err = s.ExpireSweep(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
}

func TestPurgeSweep_RetentionBoundary(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	// expired exactly retention days ago counts as old enough
	_, oldUC := s.seedCoupon(t, now.AddDate(0, 0, -7), types.UserCouponStatusExpired)
	// one day inside the window stays
	_, recentUC := s.seedCoupon(t, now.AddDate(0, 0, -6), types.UserCouponStatusExpired)

	purged, err := s.PurgeSweep(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	var uc models.UserCoupon
	require.NoError(t, s.db.First(&uc, "id = ?", oldUC).Error)
	require.NotNil(t, uc.DeletedAt)
	uc = models.UserCoupon{}
	require.NoError(t, s.db.First(&uc, "id = ?", recentUC).Error)
	require.Nil(t, uc.DeletedAt)

	// re-run is a no-op
	purged, err = s.PurgeSweep(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, purged)
}
