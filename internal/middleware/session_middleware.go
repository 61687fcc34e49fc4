package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/krishnakath/dairyshop-backend/config"
)

// SessionIDKey is the gin context key holding the guest cart session ID.
const SessionIDKey = "cart_session_id"

// SessionMiddleware gives every visitor a stable cart session cookie so
// guests can build a cart before logging in. The cookie is issued lazily
// and rotated only when absent.
func SessionMiddleware(cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL / time.Second)

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.CookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(cfg.CookieName, sessionID, maxAge, "/", "", false, true)

			log := GetLoggerFromContext(c)
			log.Debug("Issued new cart session cookie", map[string]interface{}{
				"session_id": sessionID,
			})
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID extracts the cart session ID from context.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := sessionID.(string)
	return id, ok && id != ""
}
