package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/realtime"
)

// RecentNotifications 返回 admin 主题最近的事件，最新的在前。
func (a *API) RecentNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.hub.Recent()})
}

// ClearNotifications 清空最近事件列表。
func (a *API) ClearNotifications(c *gin.Context) {
	a.hub.ClearRecent()
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// NotificationStream 先补发最近事件，再推送实时事件。
func (a *API) NotificationStream(c *gin.Context) {
	recent := a.hub.Recent()
	backlog := make([]realtime.Event, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		backlog = append(backlog, recent[i])
	}
	if err := a.hub.Stream(c.Writer, c.Request, realtime.TopicAdmin, realtime.StreamOptions{
		OriginPatterns: a.originPatterns,
		Backlog:        backlog,
		Logger:         a.logger,
	}); err != nil {
		a.logger.Debug("notification websocket closed", "error", err)
	}
}
