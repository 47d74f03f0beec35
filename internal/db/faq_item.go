package db

// FAQItem 常见问题
type FAQItem struct {
	Base
	Ordering
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Category string `gorm:"size:80;index" json:"category"`
}

// TableName 保持与原有表名一致。
func (FAQItem) TableName() string {
	return "faq_items"
}
