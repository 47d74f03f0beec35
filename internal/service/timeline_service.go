package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// TimelineService 管理校史时间线。
type TimelineService struct {
	Collection[db.TimelineEvent]
}

// TimelineInput 时间线节点字段。
type TimelineInput struct {
	Year        int
	Title       string
	Description string
	Icon        string
	ImageURL    string
	IsMilestone bool
	OrderingInput
}

// NewTimelineService 创建 TimelineService。
func NewTimelineService(gdb *gorm.DB) *TimelineService {
	return &TimelineService{Collection: newCollection[db.TimelineEvent](gdb)}
}

// Create 新增节点。
func (s *TimelineService) Create(input TimelineInput) (*db.TimelineEvent, error) {
	var event db.TimelineEvent
	if err := s.apply(&event, input, true); err != nil {
		return nil, err
	}
	return s.create(&event)
}

// Update 更新节点。
func (s *TimelineService) Update(id uint, input TimelineInput) (*db.TimelineEvent, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(event, input, false); err != nil {
		return nil, err
	}
	return s.save(event)
}

func (s *TimelineService) apply(event *db.TimelineEvent, input TimelineInput, creating bool) error {
	if input.Year < 1800 || input.Year > 2200 {
		return invalid("year", "is out of range")
	}
	if err := firstError(
		required("title", input.Title),
		required("description", input.Description),
	); err != nil {
		return err
	}

	event.Year = input.Year
	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.Icon = strings.TrimSpace(input.Icon)
	event.ImageURL = strings.TrimSpace(input.ImageURL)
	event.IsMilestone = input.IsMilestone
	return s.applyOrdering(&event.Ordering, input.OrderingInput, creating)
}
