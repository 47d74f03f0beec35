package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// FAQService 管理常见问题。
type FAQService struct {
	Collection[db.FAQItem]
}

// FAQInput 常见问题字段。
type FAQInput struct {
	Question string
	Answer   string
	Category string
	OrderingInput
}

// NewFAQService 创建 FAQService。
func NewFAQService(gdb *gorm.DB) *FAQService {
	return &FAQService{Collection: newCollection[db.FAQItem](gdb)}
}

// ListActiveByCategory 返回某分类下的可见问题，分类为空时等同 ListActive。
func (s *FAQService) ListActiveByCategory(category string) ([]db.FAQItem, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return s.ListActive()
	}
	var items []db.FAQItem
	if err := s.ordered(s.db.Where("is_active = ? AND category = ?", true, category)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 新增问题。
func (s *FAQService) Create(input FAQInput) (*db.FAQItem, error) {
	var item db.FAQItem
	if err := s.apply(&item, input, true); err != nil {
		return nil, err
	}
	return s.create(&item)
}

// Update 更新问题。
func (s *FAQService) Update(id uint, input FAQInput) (*db.FAQItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input, false); err != nil {
		return nil, err
	}
	return s.save(item)
}

func (s *FAQService) apply(item *db.FAQItem, input FAQInput, creating bool) error {
	if err := firstError(
		required("question", input.Question),
		required("answer", input.Answer),
	); err != nil {
		return err
	}
	item.Question = strings.TrimSpace(input.Question)
	item.Answer = strings.TrimSpace(input.Answer)
	item.Category = strings.TrimSpace(input.Category)
	return s.applyOrdering(&item.Ordering, input.OrderingInput, creating)
}
