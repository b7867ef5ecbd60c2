// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users  *user.Service
	config *config.Config
	log    logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, cfg *config.Config, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: users, config: cfg, log: log}
}

type sessionResponse struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.Session.CookieName, token, maxAge, "/", h.config.Session.CookieDomain, h.config.Session.Secure, true)
}

func (h *AuthHandler) openSession(c *gin.Context, status int, message string, resp *user.AuthResponse) {
	h.setSessionCookie(c, resp.Token, int(time.Until(resp.ExpiresAt).Seconds()))
	respond(c, status, message, sessionResponse{User: resp.User, Token: resp.Token, ExpiresAt: resp.ExpiresAt})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.openSession(c, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.openSession(c, http.StatusOK, "Login successful", resp)
}

// Logout handles POST /auth/logout. It always clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)

	if err := h.users.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Profile retrieved successfully", u)
}
