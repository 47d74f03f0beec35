package db

// Testimonial 记录学生、家长或校友的评价
type Testimonial struct {
	Base
	Ordering
	Name           string `gorm:"size:120;not null" json:"name"`
	Role           string `gorm:"size:120;not null" json:"role"`
	Content        string `gorm:"type:text;not null" json:"content"`
	AvatarURL      string `gorm:"size:500" json:"avatar_url"`
	Program        string `gorm:"size:120" json:"program"`
	GraduationYear *int   `json:"graduation_year"`
	Rating         int    `gorm:"default:5" json:"rating"`
}
