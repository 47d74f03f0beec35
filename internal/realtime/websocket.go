package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// StreamOptions 控制 WebSocket 推送。
type StreamOptions struct {
	OriginPatterns []string
	// Backlog 在订阅后、实时事件前先发送的事件。
	Backlog []Event
	// OnMessage 处理客户端发来的文本消息，为空时忽略客户端输入。
	OnMessage func(ctx context.Context, data []byte) error
	Logger    *slog.Logger
}

// Stream 升级连接并把 topic 上的事件以 JSON 推送给客户端，直到连接关闭。
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request, topic string, opts StreamOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = h.logger
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  opts.OriginPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	sub := h.Subscribe(topic)
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if opts.OnMessage == nil {
				continue
			}
			if err := opts.OnMessage(ctx, data); err != nil {
				logger.Warn("websocket message rejected", "topic", topic, "error", err)
			}
		}
	}()

	for _, event := range opts.Backlog {
		if err := writeEvent(ctx, conn, event); err != nil {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case event := <-sub.C:
			if err := writeEvent(ctx, conn, event); err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
					logger.Debug("websocket write failed", "topic", topic, "error", err)
				}
				return nil
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, event)
}
