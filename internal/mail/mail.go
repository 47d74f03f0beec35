// Package mail sends notification emails to the school office.
package mail

import (
	"context"
	"log/slog"
	"net/mail"
	"sync"
)

// Message is a plain notification email.
type Message struct {
	To      []mail.Address
	Subject string
	Text    string
	HTML    string
}

// HasRecipients reports whether the message has at least one addressee.
func (m Message) HasRecipients() bool {
	return len(m.To) > 0
}

// Sender 发送邮件。实现需要并发安全。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender 把邮件写入日志而不外发，未配置 SendGrid 时使用。
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send records the message and logs its envelope.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	s.logger.Info("mail (not delivered)", "to", to, "subject", msg.Subject)

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of every recorded message.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
