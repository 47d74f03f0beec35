package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/middleware"
	"github.com/schoolsite/internal/realtime"
	"github.com/schoolsite/internal/service"
)

type chatMessageRequest struct {
	Message     string `json:"message" binding:"required,max=2000"`
	SenderName  string `json:"sender_name" binding:"max=120"`
	SenderEmail string `json:"sender_email" binding:"omitempty,email,max=255"`
}

// StartChat 为访客分配新的会话 ID。
func (a *API) StartChat(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"session_id": a.chat.StartSession()})
}

// PostChatMessage 保存访客消息。
func (a *API) PostChatMessage(c *gin.Context) {
	var payload chatMessageRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	msg, err := a.chat.PostVisitorMessage(c.Request.Context(), service.ChatInput{
		SessionID:   c.Param("session"),
		Message:     payload.Message,
		SenderName:  payload.SenderName,
		SenderEmail: payload.SenderEmail,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": msg})
}

// ChatMessages 返回会话的全部消息，访客与后台共用。
func (a *API) ChatMessages(c *gin.Context) {
	messages, err := a.chat.Messages(c.Param("session"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": messages})
}

// chatStream 返回访客聊天 websocket 处理函数，入站消息与 REST 接口共用校验和限流。
func (a *API) chatStream(limiter *middleware.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session")
		if _, err := a.chat.Messages(sessionID); err != nil {
			a.respondServiceError(c, err)
			return
		}
		err := a.hub.Stream(c.Writer, c.Request, realtime.ChatTopic(sessionID), realtime.StreamOptions{
			OriginPatterns: a.originPatterns,
			Logger:         a.logger,
			OnMessage:      a.chatFrameHandler(sessionID, c.ClientIP(), limiter),
		})
		if err != nil {
			a.logger.Debug("chat websocket closed", "session", sessionID, "error", err)
		}
	}
}

var errChatRateLimited = errors.New("chat message rate limited")

// chatFrameHandler 处理单条 websocket 消息：解码、按 binding 标签校验，再按客户端 IP 限流。
func (a *API) chatFrameHandler(sessionID, clientIP string, limiter *middleware.IPRateLimiter) func(context.Context, []byte) error {
	return func(ctx context.Context, data []byte) error {
		var payload chatMessageRequest
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		if err := binding.Validator.ValidateStruct(&payload); err != nil {
			return err
		}
		if limiter != nil && !limiter.Allow(clientIP) {
			return errChatRateLimited
		}
		_, err := a.chat.PostVisitorMessage(ctx, service.ChatInput{
			SessionID:   sessionID,
			Message:     payload.Message,
			SenderName:  payload.SenderName,
			SenderEmail: payload.SenderEmail,
		})
		return err
	}
}

// ChatSessions 后台会话列表
func (a *API) ChatSessions(c *gin.Context) {
	sessions, err := a.chat.Sessions()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	unread, err := a.chat.UnreadCount()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sessions, "unread": unread})
}

type chatReplyRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ReplyChat 以当前管理员身份回复访客。
func (a *API) ReplyChat(c *gin.Context) {
	var payload chatReplyRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	msg, err := a.chat.Reply(c.Request.Context(), c.Param("session"), payload.Message, a.adminName(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": msg})
}

// MarkChatRead 将会话标记为已读。
func (a *API) MarkChatRead(c *gin.Context) {
	if err := a.chat.MarkSessionRead(c.Param("session")); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgSaved, nil)
}

// DeleteChat 删除整个会话。
func (a *API) DeleteChat(c *gin.Context) {
	if err := a.chat.DeleteSession(c.Param("session")); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// AdminChatStream 后台查看会话时订阅同一主题，只读。
func (a *API) AdminChatStream(c *gin.Context) {
	sessionID := c.Param("session")
	if _, err := a.chat.Messages(sessionID); err != nil {
		a.respondServiceError(c, err)
		return
	}
	if err := a.hub.Stream(c.Writer, c.Request, realtime.ChatTopic(sessionID), realtime.StreamOptions{
		OriginPatterns: a.originPatterns,
		Logger:         a.logger,
	}); err != nil {
		a.logger.Debug("admin chat websocket closed", "session", sessionID, "error", err)
	}
}

// adminName 优先使用全名，其次邮箱。
func (a *API) adminName(c *gin.Context) string {
	userID, ok := currentUserID(c)
	if !ok {
		return "Admin"
	}
	user, err := a.auth.GetUser(userID)
	if err != nil {
		return "Admin"
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.Email
}

// RegisterChatPublic 挂载访客聊天路由。
func (a *API) RegisterChatPublic(group *gin.RouterGroup, limiter *middleware.IPRateLimiter) {
	limited := middleware.RateLimit(limiter, a.TooManyRequests)
	group.POST("/chat/sessions", limited, a.StartChat)
	group.GET("/chat/sessions/:session/messages", a.ChatMessages)
	group.POST("/chat/sessions/:session/messages", limited, a.PostChatMessage)
	group.GET("/chat/sessions/:session/ws", a.chatStream(limiter))
}

// RegisterChatAdmin 挂载后台聊天路由。
func (a *API) RegisterChatAdmin(group *gin.RouterGroup) {
	group.GET("/chat/sessions", a.ChatSessions)
	group.GET("/chat/sessions/:session/messages", a.ChatMessages)
	group.POST("/chat/sessions/:session/reply", a.ReplyChat)
	group.POST("/chat/sessions/:session/read", a.MarkChatRead)
	group.DELETE("/chat/sessions/:session", a.DeleteChat)
	group.GET("/chat/sessions/:session/ws", a.AdminChatStream)
}
