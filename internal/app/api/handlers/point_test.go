package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/internal/models"
	"github.com/fatflowers/loyalty/pkg/response"
	types "github.com/fatflowers/loyalty/pkg/types"
)

type stubLedger struct {
	walletFn  func(ctx context.Context, userID int64) (*models.PointWallet, error)
	historyFn func(ctx context.Context, userID int64) ([]*models.PointHistory, error)
}

func (s *stubLedger) Earn(_ context.Context, _ *point.EarnRequest) error { panic("not used") }

func (s *stubLedger) Reverse(_ context.Context, _ *point.ReverseRequest) (int64, error) {
	panic("not used")
}

func (s *stubLedger) GetWallet(ctx context.Context, userID int64) (*models.PointWallet, error) {
	return s.walletFn(ctx, userID)
}

func (s *stubLedger) GetHistory(ctx context.Context, userID int64) ([]*models.PointHistory, error) {
	return s.historyFn(ctx, userID)
}

func (s *stubLedger) SweepExpired(_ context.Context, _ time.Time) (int64, error) {
	panic("not used")
}

func (s *stubLedger) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	panic("not used")
}

func (s *stubLedger) ScanHistory(_ context.Context, _ *point.ScanHistoryRequest) (*point.ScanHistoryResponse, error) {
	panic("not used")
}

func TestApiGetWallet_ReturnsCallerWallet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ledger := &stubLedger{
		walletFn: func(_ context.Context, userID int64) (*models.PointWallet, error) {
			return &models.PointWallet{ID: "w-1", UserID: userID, Balance: 250}, nil
		},
	}
	r := gin.New()
	r.Use(asUser(42, "USER"))
	r.GET("/points/wallet", ApiGetWallet(ledger))

	req := httptest.NewRequest(http.MethodGet, "/points/wallet", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeOK, env.Code)

	var wallet models.PointWallet
	require.NoError(t, json.Unmarshal(env.Data, &wallet))
	require.EqualValues(t, 42, wallet.UserID)
	require.EqualValues(t, 250, wallet.Balance)
}

func TestApiGetPointHistory_KeepsLedgerOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ledger := &stubLedger{
		historyFn: func(_ context.Context, userID int64) ([]*models.PointHistory, error) {
			return []*models.PointHistory{
				{ID: "h-2", UserID: userID, Amount: 100, MovementType: types.PointMovementPaymentEarned},
				{ID: "h-1", UserID: userID, Amount: 50, MovementType: types.PointMovementReviewEarned},
			}, nil
		},
	}
	r := gin.New()
	r.Use(asUser(42, "USER"))
	r.GET("/points/history", ApiGetPointHistory(ledger))

	req := httptest.NewRequest(http.MethodGet, "/points/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeOK, env.Code)

	var entries []*models.PointHistory
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "h-2", entries[0].ID)
	require.Equal(t, "h-1", entries[1].ID)
}
