package db

// SystemSetting 后台可改的站点级键值对，key 唯一，写入走 upsert。
type SystemSetting struct {
	Base
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

// 服务层读写的设置键。
const (
	SettingKeySiteName          = "site_name"
	SettingKeySiteLogoURL       = "site_logo_url"
	SettingKeyNotificationEmail = "notification_email"
	SettingKeyDefaultLanguage   = "default_language"
)
