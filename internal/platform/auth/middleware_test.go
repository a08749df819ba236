package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(testSecret), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "name": CurrentUsername(c), "admin": IsAdmin(c)})
	})
	r.GET("/admin", RequireAuth(testSecret), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "7",
		"name": "alice",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAuth_Valid(t *testing.T) {
	r := newProtectedRouter()

	w := do(r, "/me", signToken(t, validClaims(RoleUser), jwt.SigningMethodHS256, testSecret))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"name":"alice","admin":false}`, w.Body.String())
}

func TestRequireAuth_Rejects(t *testing.T) {
	r := newProtectedRouter()

	expired := validClaims(RoleUser)
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	badSub := validClaims(RoleUser)
	badSub["sub"] = "alice"

	cases := map[string]string{
		"missing":    "",
		"garbage":    "not-a-jwt",
		"wrong key":  signToken(t, validClaims(RoleUser), jwt.SigningMethodHS256, []byte("other")),
		"wrong alg":  signToken(t, validClaims(RoleUser), jwt.SigningMethodHS512, testSecret),
		"expired":    signToken(t, expired, jwt.SigningMethodHS256, testSecret),
		"bad sub":    signToken(t, badSub, jwt.SigningMethodHS256, testSecret),
	}
	for name, token := range cases {
		w := do(r, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestRequireRole(t *testing.T) {
	r := newProtectedRouter()

	w := do(r, "/admin", signToken(t, validClaims(RoleUser), jwt.SigningMethodHS256, testSecret))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/admin", signToken(t, validClaims(RoleAdmin), jwt.SigningMethodHS256, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}
