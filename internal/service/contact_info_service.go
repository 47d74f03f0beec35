package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// ContactInfoService 管理联系方式卡片。
type ContactInfoService struct {
	Collection[db.ContactInfo]
}

// ContactInfoInput 联系方式字段，Details 中的空行会被丢弃。
type ContactInfoInput struct {
	InfoType string
	Title    string
	Details  []string
	Icon     string
	Color    string
	OrderingInput
}

// NewContactInfoService 创建 ContactInfoService。
func NewContactInfoService(gdb *gorm.DB) *ContactInfoService {
	return &ContactInfoService{Collection: newCollection[db.ContactInfo](gdb)}
}

// Create 新增联系方式。
func (s *ContactInfoService) Create(input ContactInfoInput) (*db.ContactInfo, error) {
	var info db.ContactInfo
	if err := s.apply(&info, input, true); err != nil {
		return nil, err
	}
	return s.create(&info)
}

// Update 更新联系方式。
func (s *ContactInfoService) Update(id uint, input ContactInfoInput) (*db.ContactInfo, error) {
	info, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(info, input, false); err != nil {
		return nil, err
	}
	return s.save(info)
}

func (s *ContactInfoService) apply(info *db.ContactInfo, input ContactInfoInput, creating bool) error {
	if err := firstError(
		required("info_type", input.InfoType),
		required("title", input.Title),
	); err != nil {
		return err
	}
	details := compactLines(input.Details)
	if len(details) == 0 {
		return invalid("details", "is required")
	}

	info.InfoType = strings.ToLower(strings.TrimSpace(input.InfoType))
	info.Title = strings.TrimSpace(input.Title)
	info.Details = details
	info.Icon = strings.TrimSpace(input.Icon)
	info.Color = strings.TrimSpace(input.Color)
	return s.applyOrdering(&info.Ordering, input.OrderingInput, creating)
}

func compactLines(lines []string) []string {
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
