package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// VisitorCookieName 保存匿名访客 ID，用于 UV 去重。
	VisitorCookieName   = "ss_visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// EnsureVisitorID 读取访客 cookie，不存在时生成新的 ID 并写回。
func EnsureVisitorID(c *gin.Context) string {
	if id, err := c.Cookie(VisitorCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id
	}

	visitorID := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     VisitorCookieName,
		Value:    visitorID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		MaxAge:   visitorCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
	return visitorID
}
