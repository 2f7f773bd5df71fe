package handlers

import (
	"net/http"

	"github.com/fatflowers/loyalty/internal/app/api/middleware"
	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Get point wallet
// @Description  Returns the caller's wallet, creating an empty one on first read.
// @Tags         Point
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/points/wallet [get]
func ApiGetWallet(ledger point.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := ledger.GetWallet(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(wallet))
	}
}

// @Summary      Get ledger history
// @Description  Returns the caller's point movements, active entries first, most recent first within each group.
// @Tags         Point
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/points/history [get]
func ApiGetPointHistory(ledger point.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ledger.GetHistory(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(entries))
	}
}

func RegisterPointRoutes(r gin.IRouter, ledger point.Ledger) {
	r.GET("/points/wallet", ApiGetWallet(ledger))
	r.GET("/points/history", ApiGetPointHistory(ledger))
}
