package service

import (
	"fmt"
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSiteName = "Shkolla Profesionale"

// 站点支持的语言，sq 为默认语言。
var supportedLanguages = []string{"sq", "en"}

// SystemSettings 描述后台可配置的系统信息。
type SystemSettings struct {
	SiteName          string `json:"site_name"`
	SiteLogoURL       string `json:"site_logo_url"`
	NotificationEmail string `json:"notification_email"`
	DefaultLanguage   string `json:"default_language"`
}

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	SiteName          string
	SiteLogoURL       string
	NotificationEmail string
	DefaultLanguage   string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeySiteLogoURL,
	db.SettingKeyNotificationEmail,
	db.SettingKeyDefaultLanguage,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{SiteName: defaultSiteName, DefaultLanguage: supportedLanguages[0]}

	var records []db.SystemSetting
	keys := make([]interface{}, len(settingKeys))
	for i, key := range settingKeys {
		keys[i] = key
	}
	// key 在 MySQL 中是保留字，交给 clause 按方言加引号
	if err := s.db.Clauses(clause.IN{Column: clause.Column{Name: "key"}, Values: keys}).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeySiteLogoURL:
			result.SiteLogoURL = record.Value
		case db.SettingKeyNotificationEmail:
			result.NotificationEmail = record.Value
		case db.SettingKeyDefaultLanguage:
			if lang := normalizeLanguage(record.Value); lang != "" {
				result.DefaultLanguage = lang
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写站点名称时回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	sanitized := SystemSettings{
		SiteName:          strings.TrimSpace(input.SiteName),
		SiteLogoURL:       strings.TrimSpace(input.SiteLogoURL),
		NotificationEmail: normalizeEmail(input.NotificationEmail),
		DefaultLanguage:   normalizeLanguage(input.DefaultLanguage),
	}
	if sanitized.SiteName == "" {
		sanitized.SiteName = defaultSiteName
	}
	if sanitized.NotificationEmail != "" && !IsEmail(sanitized.NotificationEmail) {
		return SystemSettings{}, invalid("notification_email", "must be a valid email address")
	}
	if sanitized.DefaultLanguage == "" {
		sanitized.DefaultLanguage = supportedLanguages[0]
	}

	values := map[string]string{
		db.SettingKeySiteName:          sanitized.SiteName,
		db.SettingKeySiteLogoURL:       sanitized.SiteLogoURL,
		db.SettingKeyNotificationEmail: sanitized.NotificationEmail,
		db.SettingKeyDefaultLanguage:   sanitized.DefaultLanguage,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func normalizeLanguage(lang string) string {
	trimmed := strings.ToLower(strings.TrimSpace(lang))
	for _, candidate := range supportedLanguages {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
