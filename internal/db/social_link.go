package db

// SocialLink 页脚的社交平台链接
type SocialLink struct {
	Base
	Ordering
	Platform string `gorm:"size:50;not null" json:"platform"`
	URL      string `gorm:"size:500;not null" json:"url"`
	Icon     string `gorm:"size:50" json:"icon"`
}
