package service

import (
	"net/url"
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// PartnerService 管理合作伙伴。
type PartnerService struct {
	Collection[db.Partner]
}

// PartnerInput 合作伙伴字段。
type PartnerInput struct {
	Name        string
	LogoURL     string
	WebsiteURL  string
	Description string
	OrderingInput
}

// NewPartnerService 创建 PartnerService。
func NewPartnerService(gdb *gorm.DB) *PartnerService {
	return &PartnerService{Collection: newCollection[db.Partner](gdb)}
}

// Create 新增合作伙伴。
func (s *PartnerService) Create(input PartnerInput) (*db.Partner, error) {
	var partner db.Partner
	if err := s.apply(&partner, input, true); err != nil {
		return nil, err
	}
	return s.create(&partner)
}

// Update 更新合作伙伴。
func (s *PartnerService) Update(id uint, input PartnerInput) (*db.Partner, error) {
	partner, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(partner, input, false); err != nil {
		return nil, err
	}
	return s.save(partner)
}

func (s *PartnerService) apply(partner *db.Partner, input PartnerInput, creating bool) error {
	if err := required("name", input.Name); err != nil {
		return err
	}
	website := strings.TrimSpace(input.WebsiteURL)
	if website != "" && !isHTTPURL(website) {
		return invalid("website_url", "must be an http(s) url")
	}

	partner.Name = strings.TrimSpace(input.Name)
	partner.LogoURL = strings.TrimSpace(input.LogoURL)
	partner.WebsiteURL = website
	partner.Description = strings.TrimSpace(input.Description)
	return s.applyOrdering(&partner.Ordering, input.OrderingInput, creating)
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
