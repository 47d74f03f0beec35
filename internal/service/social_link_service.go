package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/view"
	"gorm.io/gorm"
)

// SocialLinkService 管理社交平台链接。
type SocialLinkService struct {
	Collection[db.SocialLink]
}

// SocialLinkInput 社交链接字段。
type SocialLinkInput struct {
	Platform string
	URL      string
	Icon     string
	OrderingInput
}

// NewSocialLinkService 创建 SocialLinkService。
func NewSocialLinkService(gdb *gorm.DB) *SocialLinkService {
	return &SocialLinkService{Collection: newCollection[db.SocialLink](gdb)}
}

// Create 新增链接。
func (s *SocialLinkService) Create(input SocialLinkInput) (*db.SocialLink, error) {
	var link db.SocialLink
	if err := s.apply(&link, input, true); err != nil {
		return nil, err
	}
	return s.create(&link)
}

// Update 更新链接。
func (s *SocialLinkService) Update(id uint, input SocialLinkInput) (*db.SocialLink, error) {
	link, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(link, input, false); err != nil {
		return nil, err
	}
	return s.save(link)
}

func (s *SocialLinkService) apply(link *db.SocialLink, input SocialLinkInput, creating bool) error {
	if err := firstError(
		required("platform", input.Platform),
		required("url", input.URL),
	); err != nil {
		return err
	}
	rawURL := strings.TrimSpace(input.URL)
	if !isHTTPURL(rawURL) {
		return invalid("url", "must be an http(s) url")
	}

	link.Platform = strings.ToLower(strings.TrimSpace(input.Platform))
	link.URL = rawURL
	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = link.Platform
	}
	link.Icon = view.SocialIconKey(icon)
	return s.applyOrdering(&link.Ordering, input.OrderingInput, creating)
}
