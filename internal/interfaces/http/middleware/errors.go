// internal/interfaces/http/middleware/errors.go
package middleware

import (
	"net/http"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// StatusOf is the single place where error kinds become HTTP statuses
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotAuthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotAuthorized:
		return http.StatusForbidden
	case apperr.KindProductNotFound, apperr.KindLineItemNotFound, apperr.KindOrderNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindBillingUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
