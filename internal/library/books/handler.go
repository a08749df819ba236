package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to be behind auth.RequireAuth. Writes are admin only.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	admin := auth.RequireRole(auth.RoleAdmin)

	r.GET("/book/all", h.List)
	r.GET("/book/:bookId", h.Get)
	r.GET("/book", h.FindByTitle)

	r.POST("/book", admin, h.Create)
	r.PUT("/book/:bookId", admin, h.Update)
	r.DELETE("/book/:bookId", admin, h.Delete)
}

// List godoc
// @Summary  List all books
// @Tags     books
// @Produce  json
// @Success  200 {array} BookResponse
// @Failure  204 "No Content"
// @Security BearerAuth
// @Router   /book/all [get]
func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
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

// Get godoc
// @Summary  Get a book
// @Tags     books
// @Produce  json
// @Param    bookId path int true "book id"
// @Success  200 {object} BookResponse
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /book/{bookId} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// FindByTitle godoc
// @Summary  Find books by exact title
// @Description Exact title match; 404 when nothing matches.
// @Tags     books
// @Produce  json
// @Param    title query string true "title"
// @Success  200 {array} BookResponse
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /book [get]
func (h *Handler) FindByTitle(c *gin.Context) {
	title, ok := c.GetQuery("title")
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "title query required"))
		return
	}
	res, err := h.svc.FindByTitle(c.Request.Context(), title)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	if len(res) == 0 {
		c.JSON(http.StatusNotFound, errorBody(CodeNotFound, "no books with this title"))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Create godoc
// @Summary  Create a book (admin)
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    body body BookRequest true "payload"
// @Success  201 {object} BookResponse
// @Failure  403 {object} errorDTO
// @Failure  422 {object} errorDTO
// @Security BearerAuth
// @Router   /book [post]
func (h *Handler) Create(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/api/book/"+strconv.FormatUint(res.BookID, 10))
	c.JSON(http.StatusCreated, res)
}

// Update godoc
// @Summary  Replace book data (admin)
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    bookId path int true "book id"
// @Param    body body BookRequest true "payload"
// @Success  200 {object} BookResponse
// @Failure  404 {object} errorDTO
// @Failure  422 {object} errorDTO
// @Security BearerAuth
// @Router   /book/{bookId} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete godoc
// @Summary  Delete an unreserved book (admin)
// @Tags     books
// @Produce  json
// @Param    bookId path int true "book id"
// @Success  200
// @Failure  404 {object} errorDTO
// @Failure  409 {object} errorDTO
// @Security BearerAuth
// @Router   /book/{bookId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusOK)
}

// ---------- helpers ----------

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
