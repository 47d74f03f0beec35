// Package realtime fans change events out to admin dashboards and chat visitors.
// Delivery is best effort: slow subscribers lose events and nothing is replayed
// beyond the capped recent list of the admin topic.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TopicAdmin 承载新申请、新留言、新订阅以及访客聊天提醒。
	TopicAdmin = "admin"

	// RecentLimit 是 admin 主题保留的最近事件数。
	RecentLimit = 20

	defaultBuffer = 16
)

// 事件类型
const (
	EventApplication = "application"
	EventContact     = "contact"
	EventNewsletter  = "newsletter"
	EventChat        = "chat"
)

// ChatTopic 返回某个聊天会话的主题名。
func ChatTopic(sessionID string) string {
	return "chat:" + sessionID
}

// Event 是推送给订阅者的一条消息。
type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Type      string    `json:"type"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	RecordID  uint      `json:"record_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher 发布事件，Hub 与 RedisBroker 都实现该接口。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Hub 是进程内的主题订阅表。
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	recent []Event
	buffer int
	logger *slog.Logger
}

// NewHub 创建 Hub，logger 为空时使用 slog 默认实例。
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: defaultBuffer,
		logger: logger,
	}
}

// Publish 将事件投递给本进程内的订阅者。
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.Deliver(stamp(event))
	return nil
}

// Deliver 投递已补全 ID 与时间的事件。订阅者缓冲区满时丢弃。
func (h *Hub) Deliver(event Event) {
	h.mu.Lock()
	if event.Topic == TopicAdmin {
		h.recent = append([]Event{event}, h.recent...)
		if len(h.recent) > RecentLimit {
			h.recent = h.recent[:RecentLimit]
		}
	}
	targets := make([]*Subscription, 0, len(h.subs[event.Topic]))
	for sub := range h.subs[event.Topic] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- event:
		default:
			h.logger.Debug("realtime subscriber is slow, dropping event", "topic", event.Topic, "event_id", event.ID)
		}
	}
}

// Subscribe 订阅主题，调用方用完后必须 Close。
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic: topic,
		hub:   h,
		ch:    make(chan Event, h.buffer),
	}
	sub.C = sub.ch

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Recent 返回 admin 主题最近的事件，最新的在前。
func (h *Hub) Recent() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	result := make([]Event, len(h.recent))
	copy(result, h.recent)
	return result
}

// ClearRecent 清空最近事件列表。
func (h *Hub) ClearRecent() {
	h.mu.Lock()
	h.recent = nil
	h.mu.Unlock()
}

// SubscriberCount 返回主题当前的订阅数。
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subs[sub.topic]
	if subs == nil {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sub.topic)
	}
}

// Subscription 是一个主题上的缓冲订阅。
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	topic string
	hub   *Hub
	once  sync.Once
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Close 取消订阅。多次调用安全。
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

func stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return event
}
