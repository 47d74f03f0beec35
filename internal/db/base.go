package db

import "time"

// Base 为所有表提供主键与时间戳，删除均为硬删除。
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ordering 控制前台是否展示以及展示顺序，sort_order 越小越靠前。
type Ordering struct {
	IsActive  bool `gorm:"index" json:"is_active"`
	SortOrder int  `gorm:"index" json:"sort_order"`
}
