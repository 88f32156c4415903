package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hiking-backend/utils"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	IsStaffKey  = "isStaff"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[7:]), true
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(IsStaffKey, claims.IsStaff)
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			return
		}
		claims, err := utils.ParseJWT(secret, token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// StaffOnly must run after AuthRequired.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			utils.JSONError(c, http.StatusForbidden, "You do not have permission to perform this action.", nil)
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func IsStaff(c *gin.Context) bool {
	return c.GetBool(IsStaffKey)
}
