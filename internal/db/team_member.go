package db

// TeamMember 描述学校员工（教师、管理人员）
type TeamMember struct {
	Base
	Ordering
	FullName   string `gorm:"size:120;not null" json:"full_name"`
	Position   string `gorm:"size:120;not null" json:"position"`
	Department string `gorm:"size:120" json:"department"`
	Bio        string `gorm:"type:text" json:"bio"`
	Quote      string `gorm:"type:text" json:"quote"`
	PhotoURL   string `gorm:"size:500" json:"photo_url"`
}
