package db

import "time"

// 内容类型
const (
	ContentTypeText     = "text"
	ContentTypeMarkdown = "markdown"
	ContentTypeJSON     = "json"
)

// SiteContent 保存首页各区块（hero、about 等）的可编辑文本，按 section_key 唯一
type SiteContent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SectionKey  string    `gorm:"size:100;uniqueIndex;not null" json:"section_key"`
	Content     string    `gorm:"type:text" json:"content"`
	ContentType string    `gorm:"size:20;default:text" json:"content_type"`
	UpdatedBy   *uint     `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定自定义表名。
func (SiteContent) TableName() string {
	return "site_content"
}
