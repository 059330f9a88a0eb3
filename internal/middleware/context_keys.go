package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the caller's ID in the Gin context.
const userIDKey = contextKey("userID")

// UserIDHeader carries the id of the portal user making the call. The ledger
// only records it; the portals own authentication.
const UserIDHeader = "X-User-ID"

// CallerIdentity copies the caller id from UserIDHeader into the contexts.
// Requests without it are rejected.
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Caller identity header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UserIDHeader + " header required"})
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("user_id", userID))
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger))
		c.Set(string(userIDKey), userID)
		c.Set(string(loggerKey), logger)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the caller ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}

	return userID, true
}
