package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hiking-backend/utils"
)

// Recover logs a handler panic and answers with the generic 500 envelope.
func Recover() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("❌ [%s] panic on %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, recovered)
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error", nil)
	})
}

// ErrorEnvelope renders the last error a handler attached with c.Error. Anything that is not
// an *utils.AppError is logged and reported as a generic 500.
func ErrorEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		kind := utils.KindOf(err)
		if kind == utils.KindInternal {
			log.Printf("❌ [%s] %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, err)
			utils.JSONError(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		var appErr *utils.AppError
		errors.As(err, &appErr)
		utils.JSONError(c, utils.StatusFor(kind), appErr.Message, appErr.Details)
	}
}
