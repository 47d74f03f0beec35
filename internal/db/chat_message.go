package db

import "time"

// ChatMessage 在线咨询消息，按 session_id 归组
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:64;index;not null" json:"session_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	SenderName  string    `gorm:"size:120" json:"sender_name"`
	SenderEmail string    `gorm:"size:255" json:"sender_email"`
	IsFromAdmin bool      `json:"is_from_admin"`
	IsRead      bool      `gorm:"index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
