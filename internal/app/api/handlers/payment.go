package handlers

import (
	"errors"
	"net/http"

	"github.com/fatflowers/loyalty/internal/app/api/middleware"
	"github.com/fatflowers/loyalty/internal/app/service/payment"
	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/internal/app/service/reward"
	"github.com/fatflowers/loyalty/pkg/response"
	types "github.com/fatflowers/loyalty/pkg/types"

	"github.com/gin-gonic/gin"
)

type changeStatusRequest struct {
	Status types.PaymentStatus `json:"status"`
}

// @Summary      Create payment
// @Description  Creates a PENDING payment for an order owned by the caller.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.CreatePaymentRequest true "Payment creation request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments [post]
func ApiCreatePayment(mgr payment.PaymentManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		req.UserID = middleware.CurrentUserID(c)

		res, err := mgr.CreatePayment(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, payment.ErrOrderNotFound) || errors.Is(err, payment.ErrDuplicatePayment) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Change payment status
// @Description  Moves a payment along the PENDING/COMPLETED/CANCELLED/FAILED state machine and posts the matching point movement.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Payment id"
// @Param        request body changeStatusRequest true "Target status"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/{id}/status [post]
func ApiChangePaymentStatus(mgr payment.PaymentManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := mgr.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, payment.ErrInvalidTransition),
				errors.Is(err, payment.ErrPaymentNotFound),
				errors.Is(err, point.ErrWalletNotFound),
				errors.Is(err, point.ErrLedgerEntryNotFound):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, reward.ErrPointProcessingFailed):
				// the transition itself is committed; report the partial outcome
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get payment
// @Tags         Payment
// @Produce      json
// @Param        id path string true "Payment id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/{id} [get]
func ApiGetPayment(mgr payment.PaymentManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.GetPayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, payment.ErrPaymentNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if res.UserID != middleware.CurrentUserID(c) && middleware.CurrentRole(c) != middleware.RoleAdmin {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "payment not found"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr payment.PaymentManager) {
	r.POST("/payments", ApiCreatePayment(mgr))
	r.POST("/payments/:id/status", ApiChangePaymentStatus(mgr))
	r.GET("/payments/:id", ApiGetPayment(mgr))
}
