// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

const (
	callerKey = "caller"
	claimsKey = "token_claims"
)

// Authenticator resolves a session token to its caller
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Caller, *auth.Claims, error)
}

// Session resolves the session cookie, or a Bearer token, into the request's
// caller. Requests without a valid session continue as anonymous.
func Session(cfg *config.Config, authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(callerKey, user.Anonymous)

		token := SessionToken(c, cfg)
		if token == "" {
			c.Next()
			return
		}

		caller, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			// Storage failures are not the client's fault; everything else is an expired session
			if apperr.IsKind(err, apperr.KindStorageUnavailable) {
				Abort(c, err)
				return
			}
			c.Next()
			return
		}

		c.Set(callerKey, caller)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// SessionToken reads the session cookie, falling back to the Authorization header
func SessionToken(c *gin.Context, cfg *config.Config) string {
	if token, err := c.Cookie(cfg.Session.CookieName); err == nil && token != "" {
		return token
	}
	return auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
}

// RequireAuth rejects anonymous callers
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CallerFrom(c).RequireAuthenticated(); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireSeller rejects callers that are not sellers
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CallerFrom(c).RequireSeller(); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

// CallerFrom returns the caller resolved by Session, or Anonymous
func CallerFrom(c *gin.Context) user.Caller {
	if value, ok := c.Get(callerKey); ok {
		if caller, ok := value.(user.Caller); ok {
			return caller
		}
	}
	return user.Anonymous
}

// ClaimsFrom returns the claims of the request's session, if any
func ClaimsFrom(c *gin.Context) *auth.Claims {
	if value, ok := c.Get(claimsKey); ok {
		if claims, ok := value.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// Abort stops the chain with the error response for err
func Abort(c *gin.Context, err error) {
	status, body := ErrorResponse(err)
	c.AbortWithStatusJSON(status, body)
}

// ErrorResponse maps an application error to its HTTP status and body
func ErrorResponse(err error) (int, gin.H) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, gin.H{"error": "internal server error", "code": apperr.KindInternal.String()}
	}
	return StatusOf(appErr.Kind), gin.H{"error": appErr.Message, "code": appErr.Code}
}

func callerID(value interface{}) string {
	if caller, ok := value.(user.Caller); ok {
		return caller.UserID
	}
	return ""
}
