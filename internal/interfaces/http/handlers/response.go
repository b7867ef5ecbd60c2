// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError writes the error body for err. Server-side failures are logged
// with the request id; the client only sees the short message.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, body := middleware.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	c.JSON(status, body)
}

// bindJSON decodes the body into dst and answers 400 when it cannot
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"code":    "invalid_request",
			"details": err.Error(),
		})
		return false
	}
	return true
}
