package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/internal/app/service/reward"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/response"
)

type recordingLedger struct {
	stubLedger
	earned []*point.EarnRequest
}

func (r *recordingLedger) Earn(_ context.Context, req *point.EarnRequest) error {
	r.earned = append(r.earned, req)
	return nil
}

func TestApiReviewCreated_CreditsAuthor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Point.ReviewReward = 100
	ledger := &recordingLedger{}
	reactor := reward.NewReactor(cfg, ledger, zap.NewNop().Sugar())

	r := gin.New()
	r.Use(asUser(42, "USER"))
	r.POST("/reviews/:id/events", ApiReviewCreated(reactor))

	do := func(body []byte) *response.APIResponse[json.RawMessage] {
		req := httptest.NewRequest(http.MethodPost, "/reviews/rev-1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return decodeEnvelope(t, w)
	}

	// author defaults to the caller when the body omits it
	env := do(nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	require.Len(t, ledger.earned, 1)
	require.EqualValues(t, 42, ledger.earned[0].UserID)
	require.Equal(t, "rev-1", ledger.earned[0].ReferenceID)
	require.EqualValues(t, 100, ledger.earned[0].Amount)

	// explicit author wins over the caller
	body, _ := json.Marshal(map[string]any{"author_user_id": 7})
	env = do(body)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	require.Len(t, ledger.earned, 2)
	require.EqualValues(t, 7, ledger.earned[1].UserID)
}
