package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc *Service }

// RegisterRoutes mounts signup and login. Admin signup needs an admin token.
func RegisterRoutes(r gin.IRoutes, svc *Service, secret []byte) {
	h := &AuthHandler{svc: svc}
	r.POST("/signup", h.Signup)
	r.POST("/admin/signup", RequireAuth(secret), RequireRole(RoleAdmin), h.AdminSignup)
	r.POST("/login", h.Login)
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(c *gin.Context)      { h.signup(c, RoleUser) }
func (h *AuthHandler) AdminSignup(c *gin.Context) { h.signup(c, RoleAdmin) }

func (h *AuthHandler) signup(c *gin.Context, role string) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, role)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error()})
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "username already taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": u.UserID, "username": u.Username, "role": u.Role})
}

// Login godoc
// @Summary  Issue a JWT
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "payload"
// @Success  200 {object} TokenResponse
// @Failure  401 {object} map[string]string
// @Router   /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
