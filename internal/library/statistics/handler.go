package statistics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to be behind auth.RequireAuth.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/statistics", h.GetStatistic)
}

// GetStatistic godoc
// @Summary  Return statistics
// @Description Users see their own numbers; only admins may look up somebody else.
// @Tags     statistics
// @Produce  json
// @Param    username query string false "username (admin only)"
// @Param    email query string false "email (admin only)"
// @Success  200 {object} StatisticResponse
// @Failure  204 "No Content"
// @Failure  403 {object} errorDTO
// @Security BearerAuth
// @Router   /statistics [get]
func (h *Handler) GetStatistic(c *gin.Context) {
	username := c.Query("username")
	email := c.Query("email")

	if !auth.IsAdmin(c) && (username != "" || email != "") {
		c.JSON(http.StatusForbidden, errorBody(CodeForbidden, "only admins may query other users"))
		return
	}

	var (
		res StatisticResponse
		err error
	)
	switch {
	case username != "":
		res, err = h.svc.ByUsername(c.Request.Context(), username)
	case email != "":
		res, err = h.svc.ByEmail(c.Request.Context(), email)
	default:
		res, err = h.svc.ByUsername(c.Request.Context(), auth.CurrentUsername(c))
	}
	if errors.Is(err, ErrStatisticNotFound) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorBody(api.Code, api.Message)
	}
	return errorBody(CodeInternal, err.Error())
}
