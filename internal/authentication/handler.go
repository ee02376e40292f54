package authentication

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// TokenResponse contains the access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler handles authentication-related HTTP endpoints.
type AuthHandler struct {
	service AuthenticationService
	logger  *zap.Logger
}

// NewAuthHandler registers auth endpoints on the given router group. Extra
// middleware applies to the login endpoint only.
func NewAuthHandler(router *gin.RouterGroup, service AuthenticationService, logger *zap.Logger, loginMiddleware ...gin.HandlerFunc) *AuthHandler {
	h := &AuthHandler{service: service, logger: logger}
	router.POST("/admin/login", append(loginMiddleware, h.Login)...)
	router.POST("/admin/logout", h.Logout)
	return h
}

// Login godoc
// @Summary      Admin Login
// @Description  Authenticate the operator and issue an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	access, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, TokenResponse{AccessToken: access, TokenType: "Bearer"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, ErrAdminDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Login service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
	}
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the presented access token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
		return
	}
	err := h.service.Logout(c.Request.Context(), raw)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
	default:
		h.logger.Error("Logout service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
	}
}
