package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/realtime"
	"gorm.io/gorm"
)

const maxChatMessageLength = 2000

// ErrInvalidSession 表示聊天会话 ID 不合法。
var ErrInvalidSession = errors.New("invalid chat session")

// ChatService 处理在线咨询。访客与管理员的消息都写入数据库并推送到会话主题。
type ChatService struct {
	db        *gorm.DB
	publisher realtime.Publisher
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// ChatInput 访客消息字段。
type ChatInput struct {
	SessionID   string
	Message     string
	SenderName  string
	SenderEmail string
}

// ChatSession 汇总某个会话的最新状态，供后台列表使用。
type ChatSession struct {
	SessionID   string    `json:"session_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	LastMessage string    `json:"last_message"`
	LastAt      time.Time `json:"last_at"`
	Unread      int       `json:"unread"`
	Total       int       `json:"total"`
}

// NewChatService 创建 ChatService。publisher 用于会话主题，notifier 用于后台提醒。
func NewChatService(gdb *gorm.DB, publisher realtime.Publisher, notifier Notifier, logger *slog.Logger) *ChatService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{db: gdb, publisher: publisher, notifier: notifier, logger: logger, now: time.Now}
}

// StartSession 生成新的会话 ID。
func (s *ChatService) StartSession() string {
	return uuid.NewString()
}

// PostVisitorMessage 保存访客消息并推送给会话与后台。
func (s *ChatService) PostVisitorMessage(ctx context.Context, input ChatInput) (*db.ChatMessage, error) {
	sessionID, err := parseSessionID(input.SessionID)
	if err != nil {
		return nil, err
	}
	text, err := chatText(input.Message)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(input.SenderEmail)
	if email != "" && !IsEmail(email) {
		return nil, invalid("sender_email", "must be a valid email address")
	}

	msg := db.ChatMessage{
		SessionID:   sessionID,
		Message:     text,
		SenderName:  strings.TrimSpace(input.SenderName),
		SenderEmail: email,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	s.publish(ctx, &msg)
	name := msg.SenderName
	if name == "" {
		name = "Visitor"
	}
	s.notifier.Notify(ctx, realtime.Event{
		Topic:    realtime.TopicAdmin,
		Type:     realtime.EventChat,
		Title:    "New chat message from " + name,
		Message:  msg.Message,
		RecordID: msg.ID,
		Data:     map[string]string{"session_id": msg.SessionID},
	})
	return &msg, nil
}

// Reply 保存管理员回复并推送到会话主题。
func (s *ChatService) Reply(ctx context.Context, sessionID, text, adminName string) (*db.ChatMessage, error) {
	sessionID, err := parseSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	text, err = chatText(text)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&db.ChatMessage{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	msg := db.ChatMessage{
		SessionID:   sessionID,
		Message:     text,
		SenderName:  strings.TrimSpace(adminName),
		IsFromAdmin: true,
		IsRead:      true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	s.publish(ctx, &msg)
	return &msg, nil
}

// Messages 返回会话内的全部消息，按时间升序。
func (s *ChatService) Messages(sessionID string) ([]db.ChatMessage, error) {
	sessionID, err := parseSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	var messages []db.ChatMessage
	if err := s.db.Where("session_id = ?", sessionID).
		Order("created_at asc").Order("id asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// Sessions 汇总所有会话，最近活跃的在前。
func (s *ChatService) Sessions() ([]ChatSession, error) {
	var messages []db.ChatMessage
	if err := s.db.Order("created_at asc").Order("id asc").Find(&messages).Error; err != nil {
		return nil, err
	}

	index := make(map[string]*ChatSession)
	for _, msg := range messages {
		session, ok := index[msg.SessionID]
		if !ok {
			session = &ChatSession{SessionID: msg.SessionID}
			index[msg.SessionID] = session
		}
		session.Total++
		session.LastMessage = msg.Message
		session.LastAt = msg.CreatedAt
		if msg.IsFromAdmin {
			continue
		}
		if !msg.IsRead {
			session.Unread++
		}
		if msg.SenderName != "" {
			session.SenderName = msg.SenderName
		}
		if msg.SenderEmail != "" {
			session.SenderEmail = msg.SenderEmail
		}
	}

	sessions := make([]ChatSession, 0, len(index))
	for _, session := range index {
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastAt.After(sessions[j].LastAt)
	})
	return sessions, nil
}

// MarkSessionRead 将会话内访客消息标为已读。
func (s *ChatService) MarkSessionRead(sessionID string) error {
	sessionID, err := parseSessionID(sessionID)
	if err != nil {
		return err
	}
	return s.db.Model(&db.ChatMessage{}).
		Where("session_id = ? AND is_from_admin = ? AND is_read = ?", sessionID, false, false).
		Update("is_read", true).Error
}

// DeleteSession 删除会话的全部消息。
func (s *ChatService) DeleteSession(sessionID string) error {
	sessionID, err := parseSessionID(sessionID)
	if err != nil {
		return err
	}
	result := s.db.Where("session_id = ?", sessionID).Delete(&db.ChatMessage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount 返回所有会话的未读访客消息数。
func (s *ChatService) UnreadCount() (int64, error) {
	var total int64
	err := s.db.Model(&db.ChatMessage{}).
		Where("is_from_admin = ? AND is_read = ?", false, false).
		Count(&total).Error
	return total, err
}

func (s *ChatService) publish(ctx context.Context, msg *db.ChatMessage) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, realtime.Event{
		Topic:     realtime.ChatTopic(msg.SessionID),
		Type:      realtime.EventChat,
		Message:   msg.Message,
		RecordID:  msg.ID,
		Data:      msg,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		s.logger.Warn("publish chat message failed", "session", msg.SessionID, "error", err)
	}
}

func parseSessionID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidSession
	}
	return id.String(), nil
}

func chatText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", invalid("message", "is required")
	}
	if len([]rune(text)) > maxChatMessageLength {
		return "", invalid("message", "is too long")
	}
	return text, nil
}
