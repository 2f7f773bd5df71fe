package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/fatflowers/loyalty/internal/app/api/middleware"
	"github.com/fatflowers/loyalty/internal/app/service/reward"
	"github.com/fatflowers/loyalty/pkg/response"

	"github.com/gin-gonic/gin"
)

type reviewCreatedRequest struct {
	// AuthorUserID may be supplied by the review subsystem; defaults to the caller.
	AuthorUserID int64 `json:"author_user_id"`
}

// @Summary      Review created event
// @Description  Notification from the review subsystem; credits the fixed review reward once per review id.
// @Tags         Review
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Review id"
// @Param        request body reviewCreatedRequest false "Event payload"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/reviews/{id}/events [post]
func ApiReviewCreated(reactor *reward.Reactor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewCreatedRequest
		// an empty body is fine, the author then defaults to the caller
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		author := req.AuthorUserID
		if author == 0 {
			author = middleware.CurrentUserID(c)
		}

		if err := reactor.OnReviewCreated(c.Request.Context(), c.Param("id"), author); err != nil {
			if errors.Is(err, reward.ErrPointProcessingFailed) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterReviewRoutes(r gin.IRouter, reactor *reward.Reactor) {
	r.POST("/reviews/:id/events", ApiReviewCreated(reactor))
}
