package books

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/logging"
)

func newTestRouter(store *memStore, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api", func(c *gin.Context) {
		c.Set(auth.CtxUserIDKey, uint64(1))
		c.Set(auth.CtxRoleKey, role)
	})
	RegisterRoutes(g, NewService(store, logging.Discard()))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const duneJSON = `{"title":"Dune","author":"Herbert","description":"desert planet"}`

func TestHandler_Catalog(t *testing.T) {
	store := newMemStore()
	admin := newTestRouter(store, auth.RoleAdmin)
	user := newTestRouter(store, auth.RoleUser)

	assert.Equal(t, http.StatusNoContent, do(user, http.MethodGet, "/api/book/all", "").Code)

	assert.Equal(t, http.StatusForbidden, do(user, http.MethodPost, "/api/book", duneJSON).Code)
	w := do(admin, http.MethodPost, "/api/book", duneJSON)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/book/1", w.Header().Get("Location"))

	assert.Equal(t, http.StatusUnprocessableEntity,
		do(admin, http.MethodPost, "/api/book", `{"title":null,"author":"a","description":"d"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPost, "/api/book", `{`).Code)

	assert.Equal(t, http.StatusOK, do(user, http.MethodGet, "/api/book/all", "").Code)
	assert.Equal(t, http.StatusOK, do(user, http.MethodGet, "/api/book/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(user, http.MethodGet, "/api/book/2", "").Code)
	assert.Equal(t, http.StatusOK, do(user, http.MethodGet, "/api/book?title=Dune", "").Code)
	assert.Equal(t, http.StatusNotFound, do(user, http.MethodGet, "/api/book?title=Solaris", "").Code)

	w = do(admin, http.MethodPut, "/api/book/1", `{"title":"Dune Messiah","author":"Herbert","description":"sequel"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Dune Messiah"`)
	assert.Equal(t, http.StatusNotFound, do(admin, http.MethodPut, "/api/book/9", duneJSON).Code)

	store.books[1].IsReserved = true
	assert.Equal(t, http.StatusConflict, do(admin, http.MethodDelete, "/api/book/1", "").Code)
	store.books[1].IsReserved = false
	assert.Equal(t, http.StatusForbidden, do(user, http.MethodDelete, "/api/book/1", "").Code)
	assert.Equal(t, http.StatusOK, do(admin, http.MethodDelete, "/api/book/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(admin, http.MethodDelete, "/api/book/1", "").Code)
}
