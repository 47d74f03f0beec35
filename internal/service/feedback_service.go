package service

import (
	"math"
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// FeedbackService 处理访客评分。
type FeedbackService struct {
	db *gorm.DB
}

// FeedbackInput 评分字段，Rating 必须在 1..5。
type FeedbackInput struct {
	Category    string
	Rating      int
	Comment     string
	IsAnonymous bool
}

// FeedbackSummary 是某个分类的评分汇总。
type FeedbackSummary struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
}

// NewFeedbackService 创建 FeedbackService。
func NewFeedbackService(gdb *gorm.DB) *FeedbackService {
	return &FeedbackService{db: gdb}
}

// Submit 保存评分。
func (s *FeedbackService) Submit(input FeedbackInput) (*db.FeedbackRating, error) {
	if err := required("category", input.Category); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, invalid("rating", "must be between 1 and 5")
	}

	rating := db.FeedbackRating{
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Rating:      input.Rating,
		Comment:     strings.TrimSpace(input.Comment),
		IsAnonymous: input.IsAnonymous,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// List 返回评分，category 为空时返回全部。
func (s *FeedbackService) List(category string) ([]db.FeedbackRating, error) {
	query := s.db.Order("created_at desc").Order("id desc")
	if category = strings.ToLower(strings.TrimSpace(category)); category != "" {
		query = query.Where("category = ?", category)
	}
	var ratings []db.FeedbackRating
	if err := query.Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// Summary 按分类汇总数量与平均分（保留两位小数）。
func (s *FeedbackService) Summary() ([]FeedbackSummary, error) {
	var rows []FeedbackSummary
	if err := s.db.Model(&db.FeedbackRating{}).
		Select("category, COUNT(*) AS count, AVG(rating) AS average").
		Group("category").
		Order("category asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Average = math.Round(rows[i].Average*100) / 100
	}
	return rows, nil
}

// Delete 删除评分。
func (s *FeedbackService) Delete(id uint) error {
	result := s.db.Delete(&db.FeedbackRating{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
