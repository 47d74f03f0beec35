package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

const defaultTestimonialRating = 5

// TestimonialService 管理评价展示。
type TestimonialService struct {
	Collection[db.Testimonial]
}

// TestimonialInput 为评价的可编辑字段，Rating 为 0 时取默认 5 分。
type TestimonialInput struct {
	Name           string
	Role           string
	Content        string
	AvatarURL      string
	Program        string
	GraduationYear *int
	Rating         int
	OrderingInput
}

// NewTestimonialService 创建 TestimonialService。
func NewTestimonialService(gdb *gorm.DB) *TestimonialService {
	return &TestimonialService{Collection: newCollection[db.Testimonial](gdb)}
}

// Create 新增评价。
func (s *TestimonialService) Create(input TestimonialInput) (*db.Testimonial, error) {
	var item db.Testimonial
	if err := s.apply(&item, input, true); err != nil {
		return nil, err
	}
	return s.create(&item)
}

// Update 更新评价。
func (s *TestimonialService) Update(id uint, input TestimonialInput) (*db.Testimonial, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input, false); err != nil {
		return nil, err
	}
	return s.save(item)
}

func (s *TestimonialService) apply(item *db.Testimonial, input TestimonialInput, creating bool) error {
	if err := firstError(
		required("name", input.Name),
		required("role", input.Role),
		required("content", input.Content),
	); err != nil {
		return err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Role = strings.TrimSpace(input.Role)
	item.Content = strings.TrimSpace(input.Content)
	item.AvatarURL = strings.TrimSpace(input.AvatarURL)
	item.Program = strings.TrimSpace(input.Program)
	item.GraduationYear = input.GraduationYear
	item.Rating = clampRating(input.Rating, defaultTestimonialRating)
	return s.applyOrdering(&item.Ordering, input.OrderingInput, creating)
}

// clampRating 将评分限制在 1..5，0 表示未填写并回退到 fallback。
func clampRating(rating, fallback int) int {
	switch {
	case rating == 0:
		return fallback
	case rating < 1:
		return 1
	case rating > 5:
		return 5
	default:
		return rating
	}
}
