package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/schoolsite/internal/db"
	mailer "github.com/schoolsite/internal/mail"
	"github.com/schoolsite/internal/realtime"
)

// Notifier 接收需要提醒后台的事件。实现不能阻塞调用方太久，失败只记录日志。
type Notifier interface {
	Notify(ctx context.Context, event realtime.Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, realtime.Event) {}

// NotificationService 把事件推送到 admin 主题，并为新申请和新留言发送提醒邮件。
type NotificationService struct {
	publisher     realtime.Publisher
	sender        mailer.Sender
	settings      *SystemSettingService
	fallbackEmail string
	logger        *slog.Logger
}

// NewNotificationService 创建 NotificationService。sender 与 settings 可以为空。
func NewNotificationService(publisher realtime.Publisher, sender mailer.Sender, settings *SystemSettingService, fallbackEmail string, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		publisher:     publisher,
		sender:        sender,
		settings:      settings,
		fallbackEmail: strings.TrimSpace(fallbackEmail),
		logger:        logger,
	}
}

// Notify 推送事件；发布失败不会影响已经成功的写入。
func (s *NotificationService) Notify(ctx context.Context, event realtime.Event) {
	if event.Topic == "" {
		event.Topic = realtime.TopicAdmin
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish notification failed", "type", event.Type, "error", err)
		}
	}

	if event.Type != realtime.EventApplication && event.Type != realtime.EventContact {
		return
	}
	if s.sender == nil {
		return
	}
	to := s.recipient()
	if to == "" {
		return
	}
	msg := mailer.Message{
		To:      []mail.Address{{Address: to}},
		Subject: event.Title,
		Text:    event.Message,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("notification mail failed", "type", event.Type, "error", err)
	}
}

func (s *NotificationService) recipient() string {
	if s.settings != nil {
		if settings, err := s.settings.GetSettings(); err == nil && settings.NotificationEmail != "" {
			return settings.NotificationEmail
		}
	}
	return s.fallbackEmail
}

func applicationEvent(app *db.StudentApplication) realtime.Event {
	return realtime.Event{
		Topic:    realtime.TopicAdmin,
		Type:     realtime.EventApplication,
		Title:    "New student application",
		Message:  fmt.Sprintf("%s applied for %s (%s)", app.ApplicantName, app.Program, app.GradeLevel),
		RecordID: app.ID,
	}
}

func contactEvent(msg *db.ContactMessage) realtime.Event {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	return realtime.Event{
		Topic:    realtime.TopicAdmin,
		Type:     realtime.EventContact,
		Title:    "New contact message",
		Message:  fmt.Sprintf("%s <%s>: %s\n\n%s", msg.Name, msg.Email, subject, msg.Message),
		RecordID: msg.ID,
	}
}

func newsletterEvent(sub *db.NewsletterSubscriber) realtime.Event {
	return realtime.Event{
		Topic:    realtime.TopicAdmin,
		Type:     realtime.EventNewsletter,
		Title:    "New newsletter subscriber",
		Message:  sub.Email,
		RecordID: sub.ID,
	}
}
