package db

import "time"

// 日历事件类型
const (
	EventTypeAcademic = "academic"
	EventTypeEvent    = "event"
	EventTypeHoliday  = "holiday"
	EventTypeDeadline = "deadline"
)

// EventTypes lists every accepted calendar event type.
var EventTypes = []string{EventTypeAcademic, EventTypeEvent, EventTypeHoliday, EventTypeDeadline}

// CalendarEvent 学校日历事件。EndDate 为空表示单日事件
type CalendarEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	EventType   string     `gorm:"size:20;index;not null" json:"event_type"`
	StartDate   time.Time  `gorm:"index;not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsAllDay    bool       `json:"is_all_day"`
	Location    string     `gorm:"size:200" json:"location"`
	CreatedBy   *uint      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EndsAt 返回事件的结束时间，单日事件回退到开始时间。
func (e CalendarEvent) EndsAt() time.Time {
	if e.EndDate != nil {
		return *e.EndDate
	}
	return e.StartDate
}
