package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/schoolsite/internal/cache"
	"github.com/schoolsite/internal/mail"
	"github.com/schoolsite/internal/realtime"
	"github.com/schoolsite/internal/service"
	"gorm.io/gorm"
)

// Options 描述 API 依赖的外部组件，零值可以直接用于测试。
type Options struct {
	Logger            *slog.Logger
	Hub               *realtime.Hub
	Publisher         realtime.Publisher
	Mailer            mail.Sender
	Cache             cache.Store
	CacheTTL          time.Duration
	UploadDir         string
	UploadURL         string
	JWTSecret         string
	JWTTTL            time.Duration
	NotificationEmail string
	AllowedOrigins    []string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	logger *slog.Logger
	hub    *realtime.Hub

	auth   *service.AuthService
	tokens *service.TokenService

	team         *service.TeamService
	gallery      *service.GalleryService
	testimonials *service.TestimonialService
	statistics   *service.StatisticService
	timeline     *service.TimelineService
	partners     *service.PartnerService
	programs     *service.ProgramService
	faq          *service.FAQService
	contactInfo  *service.ContactInfoService
	socialLinks  *service.SocialLinkService
	content      *service.SiteContentService
	news         *service.NewsService
	calendar     *service.CalendarService

	contacts     *service.ContactService
	newsletter   *service.NewsletterService
	applications *service.ApplicationService
	feedback     *service.FeedbackService
	chat         *service.ChatService

	analytics analyticsProvider
	system    *service.SystemSettingService
	media     *service.MediaService
	landing   *service.LandingService

	originPatterns []string
	now            func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	registerValidators()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(logger)
	}
	var publisher realtime.Publisher = hub
	if opts.Publisher != nil {
		publisher = opts.Publisher
	}
	store := opts.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}
	secret := opts.JWTSecret
	if secret == "" {
		secret = "schoolsite-dev-secret"
	}

	system := service.NewSystemSettingService(gdb)
	notifications := service.NewNotificationService(publisher, opts.Mailer, system, opts.NotificationEmail, logger)

	return &API{
		db:     gdb,
		logger: logger,
		hub:    hub,

		auth:   service.NewAuthService(gdb),
		tokens: service.NewTokenService(secret, opts.JWTTTL),

		team:         service.NewTeamService(gdb),
		gallery:      service.NewGalleryService(gdb),
		testimonials: service.NewTestimonialService(gdb),
		statistics:   service.NewStatisticService(gdb),
		timeline:     service.NewTimelineService(gdb),
		partners:     service.NewPartnerService(gdb),
		programs:     service.NewProgramService(gdb),
		faq:          service.NewFAQService(gdb),
		contactInfo:  service.NewContactInfoService(gdb),
		socialLinks:  service.NewSocialLinkService(gdb),
		content:      service.NewSiteContentService(gdb),
		news:         service.NewNewsService(gdb),
		calendar:     service.NewCalendarService(gdb),

		contacts:     service.NewContactService(gdb, notifications),
		newsletter:   service.NewNewsletterService(gdb, notifications),
		applications: service.NewApplicationService(gdb, notifications),
		feedback:     service.NewFeedbackService(gdb),
		chat:         service.NewChatService(gdb, publisher, notifications, logger),

		analytics: service.NewAnalyticsService(gdb),
		system:    system,
		media:     service.NewMediaService(opts.UploadDir, opts.UploadURL),
		landing:   service.NewLandingService(gdb, store, opts.CacheTTL, logger),

		originPatterns: originPatterns(opts.AllowedOrigins),
		now:            time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Hub exposes the realtime hub so the broker can deliver into it.
func (a *API) Hub() *realtime.Hub {
	return a.hub
}

// Media exposes the upload store for static file serving.
func (a *API) Media() *service.MediaService {
	return a.media
}

// contentChanged 在后台修改公开内容后清除首页缓存。
func (a *API) contentChanged(ctx context.Context) {
	a.landing.Invalidate(ctx)
}
