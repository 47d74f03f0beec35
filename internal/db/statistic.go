package db

// Statistic 是首页成就区块展示的数字，例如学生人数
type Statistic struct {
	Base
	Ordering
	StatKey     string `gorm:"size:80;uniqueIndex;not null" json:"stat_key"`
	Label       string `gorm:"size:120;not null" json:"label"`
	Value       int    `json:"value"`
	Suffix      string `gorm:"size:20" json:"suffix"`
	Icon        string `gorm:"size:50" json:"icon"`
	Color       string `gorm:"size:50" json:"color"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName 避免自动复数化得到 statistic。
func (Statistic) TableName() string {
	return "statistics"
}
