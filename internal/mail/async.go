package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const sendTimeout = 15 * time.Second

// Async 在后台 goroutine 中发送，不阻塞请求。失败只记录日志，不重试。
type Async struct {
	next   Sender
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAsync wraps a Sender.
func NewAsync(next Sender, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{next: next, logger: logger}
}

// Send schedules delivery and returns immediately.
func (a *Async) Send(_ context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return nil
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := a.next.Send(ctx, msg); err != nil {
			a.logger.Error("send mail failed", "subject", msg.Subject, "error", err)
		}
	}()
	return nil
}

// Wait blocks until in-flight messages finish, used on shutdown and in tests.
func (a *Async) Wait() {
	a.wg.Wait()
}
