package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

const (
	sessionUserID = "user_id"
	sessionRole   = "role"
	contextUserID = "user_id"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 校验账号并建立会话，只有管理员角色可以登录后台。
func (a *API) Login(c *gin.Context) {
	user, ok := a.authenticate(c)
	if !ok {
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionRole, user.Role)
	if err := session.Save(); err != nil {
		a.logger.Error("save session failed", "error", err)
		respondError(c, http.StatusInternalServerError, locale.T(a.lang(c), locale.MsgSessionFailed))
		return
	}

	a.respondMessage(c, http.StatusOK, locale.MsgLoggedIn, gin.H{"user": user})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.logger.Warn("clear session failed", "error", err)
	}
	a.respondMessage(c, http.StatusOK, locale.MsgLoggedOut, nil)
}

// IssueToken 用账号密码换取 Bearer 令牌，供脚本与移动端调用后台 API。
func (a *API) IssueToken(c *gin.Context) {
	user, ok := a.authenticate(c)
	if !ok {
		return
	}
	token, expires, err := a.tokens.Issue(user)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": expires,
	})
}

// Me 返回当前登录的管理员。
func (a *API) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, locale.T(a.lang(c), locale.MsgUnauthorized))
		return
	}
	user, err := a.auth.GetUser(userID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) authenticate(c *gin.Context) (*db.User, bool) {
	var payload loginRequest
	if !a.bindJSON(c, &payload) {
		return nil, false
	}
	user, err := a.auth.Authenticate(payload.Email, payload.Password)
	if err != nil {
		a.respondServiceError(c, err)
		return nil, false
	}
	return user, true
}

// AuthRequired 接受会话或 Bearer 令牌，每次请求都回查账号，角色必须仍是管理员。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := a.bearerUser(c)
		if !ok {
			userID, ok = sessionUser(c)
		}
		if !ok {
			respondError(c, http.StatusUnauthorized, locale.T(a.lang(c), locale.MsgUnauthorized))
			c.Abort()
			return
		}

		user, err := a.auth.GetUser(userID)
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, locale.T(a.lang(c), locale.MsgUnauthorized))
			c.Abort()
			return
		}
		if err != nil {
			a.respondServiceError(c, err)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			respondError(c, http.StatusForbidden, locale.T(a.lang(c), locale.MsgNotAdmin))
			c.Abort()
			return
		}

		c.Set(contextUserID, user.ID)
		c.Next()
	}
}

func sessionUser(c *gin.Context) (uint, bool) {
	userID, ok := sessions.Default(c).Get(sessionUserID).(uint)
	return userID, ok && userID > 0
}

func (a *API) bearerUser(c *gin.Context) (uint, bool) {
	header := c.GetHeader("Authorization")
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return 0, false
	}
	claims, err := a.tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// currentUserID 读取 AuthRequired 写入的账号 ID。
func currentUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(contextUserID)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id > 0
}
