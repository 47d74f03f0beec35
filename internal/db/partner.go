package db

// Partner 为合作企业或机构
type Partner struct {
	Base
	Ordering
	Name        string `gorm:"size:160;not null" json:"name"`
	LogoURL     string `gorm:"size:500" json:"logo_url"`
	WebsiteURL  string `gorm:"size:500" json:"website_url"`
	Description string `gorm:"type:text" json:"description"`
}
