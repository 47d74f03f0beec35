package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

type calendarEventRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	EventType   string `json:"event_type" binding:"required,oneof=academic event holiday deadline"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
	IsAllDay    bool   `json:"is_all_day"`
	Location    string `json:"location" binding:"max=200"`
}

// toInput 日期接受 YYYY-MM-DD 或 RFC3339。
func (r calendarEventRequest) toInput(createdBy *uint) (service.CalendarEventInput, error) {
	start, ok := parseDateParam(r.StartDate, time.Time{})
	if !ok || start.IsZero() {
		return service.CalendarEventInput{}, &service.ValidationError{Field: "start_date", Reason: "must be YYYY-MM-DD or RFC3339"}
	}
	input := service.CalendarEventInput{
		Title:       r.Title,
		Description: r.Description,
		EventType:   r.EventType,
		StartDate:   start,
		IsAllDay:    r.IsAllDay,
		Location:    r.Location,
		CreatedBy:   createdBy,
	}
	if strings.TrimSpace(r.EndDate) != "" {
		end, ok := parseDateParam(r.EndDate, time.Time{})
		if !ok {
			return service.CalendarEventInput{}, &service.ValidationError{Field: "end_date", Reason: "must be YYYY-MM-DD or RFC3339"}
		}
		input.EndDate = &end
	}
	return input, nil
}

// AdminListCalendar 返回全部事件。
func (a *API) AdminListCalendar(c *gin.Context) {
	events, err := a.calendar.ListAll()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// AdminGetCalendarEvent 返回单个事件。
func (a *API) AdminGetCalendarEvent(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	event, err := a.calendar.Get(id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": event})
}

// CreateCalendarEvent 新建事件，created_by 记录当前管理员。
func (a *API) CreateCalendarEvent(c *gin.Context) {
	var payload calendarEventRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	var createdBy *uint
	if userID, ok := currentUserID(c); ok {
		createdBy = &userID
	}
	input, err := payload.toInput(createdBy)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	event, err := a.calendar.Create(input)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"item": event})
}

// UpdateCalendarEvent 更新事件，created_by 保持不变。
func (a *API) UpdateCalendarEvent(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	var payload calendarEventRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	input, err := payload.toInput(nil)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	event, err := a.calendar.Update(id, input)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"item": event})
}

// DeleteCalendarEvent 删除事件
func (a *API) DeleteCalendarEvent(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.calendar.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// RegisterCalendarAdmin 挂载后台日历路由。
func (a *API) RegisterCalendarAdmin(group *gin.RouterGroup) {
	group.GET("/calendar", a.AdminListCalendar)
	group.POST("/calendar", a.CreateCalendarEvent)
	group.GET("/calendar/:id", a.AdminGetCalendarEvent)
	group.PUT("/calendar/:id", a.UpdateCalendarEvent)
	group.DELETE("/calendar/:id", a.DeleteCalendarEvent)
}
