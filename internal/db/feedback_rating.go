package db

import "time"

// FeedbackRating 访客对网站或服务的打分（1-5）
type FeedbackRating struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Category    string    `gorm:"size:80;index;not null" json:"category"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}
