package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
	"taskboard/internal/logger"
	"taskboard/internal/service"
)

// SessionCookie holds the session token in browsers.
const SessionCookie = "app_session_id"

const userIDKey = "user_id"

// Session resolves the session token, if any, and attaches the caller to
// the request context. Requests without a valid session pass through
// anonymous; RequireUser rejects them where needed.
func Session(auths *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		u, err := auths.Resolve(ctx, token)
		if err != nil {
			if service.Classify(err) == service.KindInternal {
				logger.WithContext(ctx).Error("resolve session failed", "error", err)
			}
			c.Next()
			return
		}

		ctx = auth.WithIdentity(ctx, auth.FromUser(u))
		ctx = logger.NewContext(ctx, "user_id", u.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(userIDKey, u.ID)
		c.Next()
	}
}

// RequireUser aborts with 401 unless Session attached a caller.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// UserID returns the id set by Session.
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// sessionToken looks at the cookie, then the bearer header. Websocket
// upgrades may also pass ?token= since browsers cannot set headers there.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}
