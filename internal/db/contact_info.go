package db

// ContactInfo 联系方式卡片（地址、电话、邮箱、开放时间），Details 以 JSON 数组存储
type ContactInfo struct {
	Base
	Ordering
	InfoType string   `gorm:"size:50;not null" json:"info_type"`
	Title    string   `gorm:"size:120;not null" json:"title"`
	Details  []string `gorm:"serializer:json;type:text" json:"details"`
	Icon     string   `gorm:"size:50" json:"icon"`
	Color    string   `gorm:"size:50" json:"color"`
}

// TableName 返回自定义表名，避免复数化成 contact_infos
func (ContactInfo) TableName() string {
	return "contact_info"
}
