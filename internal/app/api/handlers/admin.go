package handlers

import (
	"net/http"
	"strconv"

	"github.com/fatflowers/loyalty/internal/app/service/payment"
	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/pkg/response"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/gin-gonic/gin"
)

// @Summary      Scan payments
// @Description  Filtered, paginated payment listing for back-office pages.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payment.ScanPaymentsRequest true "Scan request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/payments/scan [post]
func ApiScanPayments(mgr payment.PaymentManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := mgr.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// ApiUserPaymentList lists one user's payments, newest first. Kept for
// back-office pages that only need a user_id query.
func ApiUserPaymentList(mgr payment.PaymentManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		uid, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid user_id"))
			return
		}

		from := 0
		if v := c.Query("from"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				from = n
			}
		}
		size := 100
		if v := c.Query("size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				size = n
			} else {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid size"))
				return
			}
		}

		req := &payment.ScanPaymentsRequest{
			Filters:   []*types.CommonFilter{{Field: "user_id", Operator: types.CommonFilterOperatorEq, Values: []any{uid}}},
			From:      from,
			Size:      size,
			SortBy:    "created_at",
			SortOrder: "desc",
		}
		res, err := mgr.ScanPayments(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res.Items))
	}
}

// @Summary      Scan ledger entries
// @Description  Filtered, paginated point history listing for back-office pages.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body point.ScanHistoryRequest true "Scan request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/points/scan [post]
func ApiScanPointHistory(ledger point.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req point.ScanHistoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := ledger.ScanHistory(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, mgr payment.PaymentManager, ledger point.Ledger) {
	r.POST("/payments/scan", ApiScanPayments(mgr))
	r.GET("/payments", ApiUserPaymentList(mgr))
	r.POST("/points/scan", ApiScanPointHistory(ledger))
}
