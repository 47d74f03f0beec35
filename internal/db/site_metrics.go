package db

import "time"

// SiteHourlySnapshot 站点每小时的 PV/UV 汇总，hour 为 UTC 整点。
type SiteHourlySnapshot struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Hour           time.Time `gorm:"uniqueIndex" json:"hour"`
	PageViews      uint64    `gorm:"default:0" json:"page_views"`
	UniqueVisitors uint64    `gorm:"default:0" json:"unique_visitors"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName 指定自定义表名。
func (SiteHourlySnapshot) TableName() string {
	return "site_hourly_snapshots"
}

// SiteHourlyVisitor 每个访客 cookie 在每小时只记一行，用于小时 UV 去重和 24 小时去重访客统计。
type SiteHourlyVisitor struct {
	ID        uint      `gorm:"primaryKey"`
	Hour      time.Time `gorm:"uniqueIndex:idx_site_hour_visitor"`
	VisitorID string    `gorm:"size:64;uniqueIndex:idx_site_hour_visitor"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (SiteHourlyVisitor) TableName() string {
	return "site_hourly_visitors"
}
