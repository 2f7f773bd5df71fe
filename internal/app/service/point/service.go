package point

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	models "github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/logctx"
	"github.com/fatflowers/loyalty/pkg/tool"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const walletCacheTTL = 30 * time.Second

type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	log   *zap.SugaredLogger
	cache *redis.Client
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, cache *redis.Client) Ledger {
	return &Service{cfg: cfg, db: db, log: log, cache: cache}
}

func walletCacheKey(userID int64) string {
	return fmt.Sprintf("point:wallet:%d", userID)
}

// lockWallet loads the user's wallet FOR UPDATE, creating it lazily when
// createIfAbsent is set. Per-wallet mutations serialize on this row lock.
func (s *Service) lockWallet(ctx context.Context, tx *gorm.DB, userID int64, createIfAbsent bool) (*models.PointWallet, error) {
	var wallet models.PointWallet
	q := tx.WithContext(ctx)
	// sqlite has no SELECT ... FOR UPDATE; its single-writer model already
	// serializes mutations
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if !createIfAbsent {
		return nil, ErrWalletNotFound
	}
	wallet = models.PointWallet{ID: tool.GenerateUUIDV7(), UserID: userID, Balance: 0}
	if err := tx.WithContext(ctx).Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return &wallet, nil
}

func (s *Service) findEntry(ctx context.Context, tx *gorm.DB, referenceID string, movementType types.PointMovementType) (*models.PointHistory, error) {
	var entry models.PointHistory
	err := tx.WithContext(ctx).
		Where("reference_id = ? AND movement_type = ? AND deleted_at IS NULL", referenceID, movementType).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query ledger entry: %w", err)
	}
	return &entry, nil
}

func (s *Service) Earn(ctx context.Context, req *EarnRequest) error {
	if req == nil || req.Amount <= 0 {
		return ErrInvalidAmount
	}

	var mutated bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, req.UserID, true)
		if err != nil {
			return err
		}

		// The duplicate check must run under the wallet lock: a concurrent
		// redelivery blocks on the lock until the first insert is committed
		// and visible. The partial unique index on (reference_id,
		// movement_type) backstops it at the storage layer.
		existing, err := s.findEntry(ctx, tx, req.ReferenceID, req.MovementType)
		if err != nil {
			return err
		}
		if existing != nil {
			logctx.FromCtx(ctx, s.log).Infow("duplicate accrual ignored",
				"reference_id", req.ReferenceID, "movement_type", req.MovementType)
			return nil
		}

		wallet.Balance += req.Amount
		if err := tx.WithContext(ctx).Model(&models.PointWallet{}).
			Where("id = ?", wallet.ID).
			Update("balance", wallet.Balance).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry := &models.PointHistory{
			ID:           tool.GenerateUUIDV7(),
			WalletID:     wallet.ID,
			UserID:       req.UserID,
			Amount:       req.Amount,
			MovementType: req.MovementType,
			ReferenceID:  req.ReferenceID,
			Description:  req.Description,
			ExpireAt:     req.ExpireAt,
		}
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		mutated = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to earn points: %w", err)
	}
	if mutated {
		s.invalidateWalletCache(ctx, req.UserID)
	}
	return nil
}

func (s *Service) Reverse(ctx context.Context, req *ReverseRequest) (int64, error) {
	if req == nil {
		return 0, ErrLedgerEntryNotFound
	}

	var reversed int64
	var mutated bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockWallet(ctx, tx, req.UserID, false)
		if err != nil {
			return err
		}

		original, err := s.findEntry(ctx, tx, req.ReferenceID, req.OriginalType)
		if err != nil {
			return err
		}
		if original == nil {
			return ErrLedgerEntryNotFound
		}

		prior, err := s.findEntry(ctx, tx, req.ReferenceID, types.PointMovementPaymentCancelled)
		if err != nil {
			return err
		}
		if prior != nil {
			// Already reversed; report the recorded amount.
			reversed = prior.Amount
			return nil
		}

		// Points already spent stay spent; only the remaining balance is
		// clawed back so the wallet never goes negative.
		reversed = original.Amount
		if wallet.Balance < reversed {
			reversed = wallet.Balance
		}

		wallet.Balance -= reversed
		if err := tx.WithContext(ctx).Model(&models.PointWallet{}).
			Where("id = ?", wallet.ID).
			Update("balance", wallet.Balance).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		entry := &models.PointHistory{
			ID:           tool.GenerateUUIDV7(),
			WalletID:     wallet.ID,
			UserID:       req.UserID,
			Amount:       reversed,
			MovementType: types.PointMovementPaymentCancelled,
			ReferenceID:  req.ReferenceID,
			Description:  req.Description,
		}
		if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append reversal entry: %w", err)
		}
		mutated = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) || errors.Is(err, ErrLedgerEntryNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to reverse points: %w", err)
	}
	if mutated {
		s.invalidateWalletCache(ctx, req.UserID)
	}
	return reversed, nil
}

func (s *Service) GetWallet(ctx context.Context, userID int64) (*models.PointWallet, error) {
	if wallet := s.walletFromCache(ctx, userID); wallet != nil {
		return wallet, nil
	}

	var wallet models.PointWallet
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Create-on-read keeps the caller contract simple: every user has
		// a wallet, possibly empty.
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			w, lockErr := s.lockWallet(ctx, tx, userID, true)
			if lockErr != nil {
				return lockErr
			}
			wallet = *w
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	s.storeWalletCache(ctx, &wallet)
	return &wallet, nil
}

func (s *Service) GetHistory(ctx context.Context, userID int64) ([]*models.PointHistory, error) {
	var entries []*models.PointHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger history: %w", err)
	}

	now := time.Now()
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := entries[i].ActiveAt(now), entries[j].ActiveAt(now)
		if ai != aj {
			return ai
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// ScanHistory implements paginated/admin listing with filters.
func (s *Service) ScanHistory(ctx context.Context, req *ScanHistoryRequest) (*ScanHistoryResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PointHistory{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var rows []*models.PointHistory

	q := tx.Limit(req.Size)

	if req.From > 0 {
		q = q.Offset(req.From)
	}

	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return &ScanHistoryResponse{Items: rows, Total: total}, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
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

func (s *Service) walletFromCache(ctx context.Context, userID int64) *models.PointWallet {
	if s.cache == nil {
		return nil
	}
	var wallet models.PointWallet
	data, err := s.cache.Get(ctx, walletCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	if err := wallet.UnmarshalBinary(data); err != nil {
		return nil
	}
	return &wallet
}

func (s *Service) storeWalletCache(ctx context.Context, wallet *models.PointWallet) {
	if s.cache == nil || wallet == nil {
		return
	}
	if err := s.cache.Set(ctx, walletCacheKey(wallet.UserID), wallet, walletCacheTTL).Err(); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("wallet cache set failed", "err", err)
	}
}

func (s *Service) invalidateWalletCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, walletCacheKey(userID)).Err(); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("wallet cache del failed", "err", err)
	}
}
