package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/schoolsite/internal/cache"
	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

const landingCacheKey = "landing:v1"

// LandingPayload 是首页一次性加载的全部公开内容。
type LandingPayload struct {
	Settings       SystemSettings     `json:"settings"`
	Sections       map[string]string  `json:"sections"`
	Programs       []db.Program       `json:"programs"`
	Team           []db.TeamMember    `json:"team"`
	Gallery        []db.GalleryItem   `json:"gallery"`
	Testimonials   []db.Testimonial   `json:"testimonials"`
	Statistics     []db.Statistic     `json:"statistics"`
	Timeline       []db.TimelineEvent `json:"timeline"`
	Partners       []db.Partner       `json:"partners"`
	FAQ            []db.FAQItem       `json:"faq"`
	ContactInfo    []db.ContactInfo   `json:"contact_info"`
	SocialLinks    []db.SocialLink    `json:"social_links"`
	FeaturedNews   []db.NewsItem      `json:"featured_news"`
	LatestNews     []db.NewsItem      `json:"latest_news"`
	UpcomingEvents []db.CalendarEvent `json:"upcoming_events"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// LandingService 聚合首页内容并缓存，后台任何写操作后调用 Invalidate。
type LandingService struct {
	settings     *SystemSettingService
	content      *SiteContentService
	programs     *ProgramService
	team         *TeamService
	gallery      *GalleryService
	testimonials *TestimonialService
	statistics   *StatisticService
	timeline     *TimelineService
	partners     *PartnerService
	faq          *FAQService
	contactInfo  *ContactInfoService
	socialLinks  *SocialLinkService
	news         *NewsService
	calendar     *CalendarService

	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewLandingService 创建 LandingService，store 为空时每次都重新查询。
func NewLandingService(gdb *gorm.DB, store cache.Store, ttl time.Duration, logger *slog.Logger) *LandingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LandingService{
		settings:     NewSystemSettingService(gdb),
		content:      NewSiteContentService(gdb),
		programs:     NewProgramService(gdb),
		team:         NewTeamService(gdb),
		gallery:      NewGalleryService(gdb),
		testimonials: NewTestimonialService(gdb),
		statistics:   NewStatisticService(gdb),
		timeline:     NewTimelineService(gdb),
		partners:     NewPartnerService(gdb),
		faq:          NewFAQService(gdb),
		contactInfo:  NewContactInfoService(gdb),
		socialLinks:  NewSocialLinkService(gdb),
		news:         NewNewsService(gdb),
		calendar:     NewCalendarService(gdb),
		store:        store,
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// Load 优先读缓存；缓存故障只记录日志并回退到数据库。
func (s *LandingService) Load(ctx context.Context) (*LandingPayload, error) {
	if s.store != nil {
		raw, found, err := s.store.Get(ctx, landingCacheKey)
		if err != nil {
			s.logger.Warn("landing cache read failed", "error", err)
		} else if found {
			var payload LandingPayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				return &payload, nil
			}
		}
	}

	payload, err := s.build()
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if raw, err := json.Marshal(payload); err == nil {
			if err := s.store.Set(ctx, landingCacheKey, raw, s.ttl); err != nil {
				s.logger.Warn("landing cache write failed", "error", err)
			}
		}
	}
	return payload, nil
}

// Invalidate 清除缓存。
func (s *LandingService) Invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, landingCacheKey); err != nil {
		s.logger.Warn("landing cache invalidate failed", "error", err)
	}
}

func (s *LandingService) build() (*LandingPayload, error) {
	payload := &LandingPayload{GeneratedAt: s.now().UTC()}
	var err error

	if payload.Settings, err = s.settings.GetSettings(); err != nil {
		return nil, err
	}
	// 通知邮箱只供后台使用
	payload.Settings.NotificationEmail = ""
	if payload.Sections, err = s.content.All(); err != nil {
		return nil, err
	}
	if payload.Programs, err = s.programs.ListActive(); err != nil {
		return nil, err
	}
	if payload.Team, err = s.team.ListActive(); err != nil {
		return nil, err
	}
	if payload.Gallery, err = s.gallery.ListActive(); err != nil {
		return nil, err
	}
	if payload.Testimonials, err = s.testimonials.ListActive(); err != nil {
		return nil, err
	}
	if payload.Statistics, err = s.statistics.ListActive(); err != nil {
		return nil, err
	}
	if payload.Timeline, err = s.timeline.ListActive(); err != nil {
		return nil, err
	}
	if payload.Partners, err = s.partners.ListActive(); err != nil {
		return nil, err
	}
	if payload.FAQ, err = s.faq.ListActive(); err != nil {
		return nil, err
	}
	if payload.ContactInfo, err = s.contactInfo.ListActive(); err != nil {
		return nil, err
	}
	if payload.SocialLinks, err = s.socialLinks.ListActive(); err != nil {
		return nil, err
	}
	if payload.FeaturedNews, err = s.news.ListFeatured(3); err != nil {
		return nil, err
	}
	latest, err := s.news.ListPublished(1, 3)
	if err != nil {
		return nil, err
	}
	payload.LatestNews = latest.Items
	if payload.UpcomingEvents, err = s.calendar.ListUpcoming(payload.GeneratedAt, 5); err != nil {
		return nil, err
	}
	return payload, nil
}
