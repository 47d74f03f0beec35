package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sectionKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,99}$`)

// SiteContentService 管理首页各区块的可编辑文本。
type SiteContentService struct {
	db *gorm.DB
}

// SiteContentInput 区块内容字段。
type SiteContentInput struct {
	SectionKey  string
	Content     string
	ContentType string
	UpdatedBy   *uint
}

// NewSiteContentService 创建 SiteContentService。
func NewSiteContentService(gdb *gorm.DB) *SiteContentService {
	return &SiteContentService{db: gdb}
}

// All 返回 section_key 到内容的映射。
func (s *SiteContentService) All() (map[string]string, error) {
	var records []db.SiteContent
	if err := s.db.Order("section_key asc").Find(&records).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(records))
	for _, record := range records {
		result[record.SectionKey] = record.Content
	}
	return result, nil
}

// List 返回全部区块记录，供后台编辑。
func (s *SiteContentService) List() ([]db.SiteContent, error) {
	var records []db.SiteContent
	if err := s.db.Order("section_key asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Get 按 section_key 读取。
func (s *SiteContentService) Get(key string) (*db.SiteContent, error) {
	var record db.SiteContent
	if err := s.db.Where("section_key = ?", normalizeSectionKey(key)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Upsert 以 section_key 为冲突键写入内容，最后一次写入生效。
func (s *SiteContentService) Upsert(input SiteContentInput) (*db.SiteContent, error) {
	key := normalizeSectionKey(input.SectionKey)
	if !sectionKeyPattern.MatchString(key) {
		return nil, invalid("section_key", "must be lower-case letters, digits, dot, dash or underscore")
	}

	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if contentType == "" {
		contentType = db.ContentTypeText
	}
	switch contentType {
	case db.ContentTypeText, db.ContentTypeMarkdown:
	case db.ContentTypeJSON:
		if !json.Valid([]byte(input.Content)) {
			return nil, invalid("content", "must be valid json")
		}
	default:
		return nil, invalid("content_type", "must be text, markdown or json")
	}

	record := db.SiteContent{
		SectionKey:  key,
		Content:     input.Content,
		ContentType: contentType,
		UpdatedBy:   input.UpdatedBy,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "content_type", "updated_by", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	return s.Get(key)
}

// Delete 删除区块。
func (s *SiteContentService) Delete(key string) error {
	result := s.db.Where("section_key = ?", normalizeSectionKey(key)).Delete(&db.SiteContent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeSectionKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
