package db

import "time"

// NewsletterSubscriber 邮件订阅者，email 唯一且统一为小写
type NewsletterSubscriber struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName       string     `gorm:"size:120" json:"full_name"`
	IsActive       bool       `gorm:"index" json:"is_active"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at"`
}
