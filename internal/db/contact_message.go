package db

import "time"

// ContactMessage 前台联系表单提交的留言
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
