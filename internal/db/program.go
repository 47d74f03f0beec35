package db

// Program 为学校开设的专业方向
type Program struct {
	Base
	Ordering
	Title       string `gorm:"size:160;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:500" json:"image_url"`
	Color       string `gorm:"size:50" json:"color"`
}
