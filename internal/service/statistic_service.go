package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// StatisticService 管理首页数字统计。
type StatisticService struct {
	Collection[db.Statistic]
}

// StatisticInput 统计项字段，StatKey 全局唯一。
type StatisticInput struct {
	StatKey     string
	Label       string
	Value       int
	Suffix      string
	Icon        string
	Color       string
	Description string
	OrderingInput
}

// NewStatisticService 创建 StatisticService。
func NewStatisticService(gdb *gorm.DB) *StatisticService {
	return &StatisticService{Collection: newCollection[db.Statistic](gdb)}
}

// GetByKey 按 stat_key 读取。
func (s *StatisticService) GetByKey(key string) (*db.Statistic, error) {
	var item db.Statistic
	if err := s.db.Where("stat_key = ?", normalizeStatKey(key)).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create 新增统计项，重复的 stat_key 返回 ErrDuplicate。
func (s *StatisticService) Create(input StatisticInput) (*db.Statistic, error) {
	var item db.Statistic
	if err := s.apply(&item, input, true); err != nil {
		return nil, err
	}
	return s.create(&item)
}

// Update 更新统计项。
func (s *StatisticService) Update(id uint, input StatisticInput) (*db.Statistic, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input, false); err != nil {
		return nil, err
	}
	return s.save(item)
}

func (s *StatisticService) apply(item *db.Statistic, input StatisticInput, creating bool) error {
	if err := firstError(
		required("stat_key", input.StatKey),
		required("label", input.Label),
	); err != nil {
		return err
	}

	key := normalizeStatKey(input.StatKey)
	var count int64
	if err := s.db.Model(&db.Statistic{}).
		Where("stat_key = ? AND id <> ?", key, item.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: stat_key %q", ErrDuplicate, key)
	}

	item.StatKey = key
	item.Label = strings.TrimSpace(input.Label)
	item.Value = input.Value
	item.Suffix = strings.TrimSpace(input.Suffix)
	item.Icon = strings.TrimSpace(input.Icon)
	item.Color = strings.TrimSpace(input.Color)
	item.Description = strings.TrimSpace(input.Description)
	return s.applyOrdering(&item.Ordering, input.OrderingInput, creating)
}

func normalizeStatKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
