package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONSuccess writes the success envelope.
func JSONSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"error": false, "message": message, "data": data})
}

// JSONError writes the failure envelope. Handlers should prefer c.Error(err) and let
// middleware.ErrorEnvelope render it; this is for middleware that aborts early.
func JSONError(c *gin.Context, code int, message string, details interface{}) {
	body := gin.H{"error": true, "message": message, "status_code": code}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(code, body)
}

// Page is the list payload returned by paginated endpoints.
type Page struct {
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
