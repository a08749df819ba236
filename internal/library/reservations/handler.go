package reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to be behind auth.RequireAuth.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	admin := auth.RequireRole(auth.RoleAdmin)

	r.PATCH("/book/reservation/:bookId", h.Reserve)
	r.PATCH("/book/reservation/return/:bookId", admin, h.Return)

	r.GET("/book/reservation", h.ListOwn)
	r.GET("/book/reservation/all", admin, h.ListAll)
	r.GET("/book/reservation/id/:ulid", h.GetByULID)

	// manual trigger of the scheduled sweep
	r.POST("/book/reservation/sweep", admin, h.Sweep)
}

// Reserve godoc
// @Summary  Reserve a book
// @Tags     reservations
// @Produce  json
// @Param    bookId path int true "book id"
// @Success  200 {object} ReservationResponse
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /book/reservation/{bookId} [patch]
func (h *Handler) Reserve(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(CodeUnauthenticated, "no user in context"))
		return
	}
	res, err := h.svc.Reserve(c.Request.Context(), bookID, userID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Return godoc
// @Summary  Return a book (admin)
// @Tags     reservations
// @Produce  json
// @Param    bookId path int true "book id"
// @Success  200 {object} ReservationResponse
// @Failure  403 {object} errorDTO
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /book/reservation/return/{bookId} [patch]
func (h *Handler) Return(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.ReturnBook(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListOwn godoc
// @Summary  List own active reservations
// @Tags     reservations
// @Produce  json
// @Success  200 {array} ReservationResponse
// @Failure  204 "No Content"
// @Security BearerAuth
// @Router   /book/reservation [get]
func (h *Handler) ListOwn(c *gin.Context) {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(CodeUnauthenticated, "no user in context"))
		return
	}
	res, err := h.svc.ActiveUserReservations(c.Request.Context(), userID)
	writeList(c, res, err)
}

// ListAll godoc
// @Summary  List all active reservations (admin)
// @Tags     reservations
// @Produce  json
// @Success  200 {array} ReservationResponse
// @Failure  204 "No Content"
// @Failure  403 {object} errorDTO
// @Security BearerAuth
// @Router   /book/reservation/all [get]
func (h *Handler) ListAll(c *gin.Context) {
	res, err := h.svc.AllActiveReservations(c.Request.Context())
	writeList(c, res, err)
}

// GetByULID godoc
// @Summary  Get a reservation by id
// @Description Users may only look at their own reservations.
// @Tags     reservations
// @Produce  json
// @Param    ulid path string true "reservation ULID"
// @Success  200 {object} ReservationResponse
// @Failure  403 {object} errorDTO
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /book/reservation/id/{ulid} [get]
func (h *Handler) GetByULID(c *gin.Context) {
	res, err := h.svc.GetReservation(c.Request.Context(), c.Param("ulid"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	if uid, _ := auth.CurrentUserID(c); !auth.IsAdmin(c) && uid != res.UserID {
		c.JSON(http.StatusForbidden, errorBody(CodeForbidden, "not your reservation"))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Sweep godoc
// @Summary  Run the deadline sweep now (admin)
// @Tags     reservations
// @Produce  json
// @Success  200 {object} SweepReport
// @Failure  403 {object} errorDTO
// @Security BearerAuth
// @Router   /book/reservation/sweep [post]
func (h *Handler) Sweep(c *gin.Context) {
	report, err := h.svc.UpdateMissedDeadlines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ---------- helpers ----------

func writeList(c *gin.Context, res []ReservationResponse, err error) {
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	if len(res) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, res)
}

func bookIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("bookId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid book id"))
		return 0, false
	}
	return id, true
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
