package db

// TimelineEvent 记录学校历史上的节点
type TimelineEvent struct {
	Base
	Ordering
	Year        int    `gorm:"index;not null" json:"year"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Icon        string `gorm:"size:50" json:"icon"`
	ImageURL    string `gorm:"size:500" json:"image_url"`
	IsMilestone bool   `json:"is_milestone"`
}
