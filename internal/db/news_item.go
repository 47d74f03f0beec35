package db

import "time"

// NewsItem 新闻与公告，正文为 Markdown
type NewsItem struct {
	Base
	Title       string     `gorm:"size:255;not null" json:"title"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Category    string     `gorm:"size:80;index" json:"category"`
	ImageURL    string     `gorm:"size:500" json:"image_url"`
	IsPublished bool       `gorm:"index" json:"is_published"`
	IsFeatured  bool       `json:"is_featured"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
}
