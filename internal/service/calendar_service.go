package service

import (
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// CalendarService 管理学校日历。
type CalendarService struct {
	db *gorm.DB
}

// CalendarEventInput 日历事件字段。
type CalendarEventInput struct {
	Title       string
	Description string
	EventType   string
	StartDate   time.Time
	EndDate     *time.Time
	IsAllDay    bool
	Location    string
	CreatedBy   *uint
}

// NewCalendarService 创建 CalendarService。
func NewCalendarService(gdb *gorm.DB) *CalendarService {
	return &CalendarService{db: gdb}
}

// ListRange 返回与 [from, to] 有交集的事件，按开始时间排序。eventType 为空时不过滤。
func (s *CalendarService) ListRange(from, to time.Time, eventType string) ([]db.CalendarEvent, error) {
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	from, to = from.UTC(), to.UTC()
	query := s.db.Where("start_date <= ?", to).
		Where("((end_date IS NULL AND start_date >= ?) OR end_date >= ?)", from, from)
	if eventType = strings.ToLower(strings.TrimSpace(eventType)); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var events []db.CalendarEvent
	if err := query.Order("start_date asc").Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListUpcoming 返回尚未结束的事件。
func (s *CalendarService) ListUpcoming(now time.Time, limit int) ([]db.CalendarEvent, error) {
	if limit <= 0 {
		limit = 5
	}
	now = now.UTC()
	var events []db.CalendarEvent
	if err := s.db.Where("(end_date IS NULL AND start_date >= ?) OR end_date >= ?", now, now).
		Order("start_date asc").Order("id asc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListAll 返回全部事件。
func (s *CalendarService) ListAll() ([]db.CalendarEvent, error) {
	var events []db.CalendarEvent
	if err := s.db.Order("start_date desc").Order("id desc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Get 读取事件。
func (s *CalendarService) Get(id uint) (*db.CalendarEvent, error) {
	var event db.CalendarEvent
	if err := s.db.First(&event, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &event, nil
}

// Create 新增事件。
func (s *CalendarService) Create(input CalendarEventInput) (*db.CalendarEvent, error) {
	var event db.CalendarEvent
	if err := applyCalendarInput(&event, input); err != nil {
		return nil, err
	}
	event.CreatedBy = input.CreatedBy
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Update 更新事件，created_by 不变。
func (s *CalendarService) Update(id uint, input CalendarEventInput) (*db.CalendarEvent, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyCalendarInput(event, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Delete 删除事件。
func (s *CalendarService) Delete(id uint) error {
	result := s.db.Delete(&db.CalendarEvent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func applyCalendarInput(event *db.CalendarEvent, input CalendarEventInput) error {
	if err := required("title", input.Title); err != nil {
		return err
	}
	eventType := strings.ToLower(strings.TrimSpace(input.EventType))
	if !oneOf(eventType, db.EventTypes) {
		return invalid("event_type", "must be one of "+strings.Join(db.EventTypes, ", "))
	}
	if input.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.EventType = eventType
	event.StartDate = input.StartDate.UTC()
	event.EndDate = nil
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		event.EndDate = &end
	}
	event.IsAllDay = input.IsAllDay
	event.Location = strings.TrimSpace(input.Location)
	return nil
}
