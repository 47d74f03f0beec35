package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/handler"
	"github.com/schoolsite/internal/middleware"
	"github.com/schoolsite/internal/report"
)

const sessionName = "schoolsite_session"

// Options 配置路由所需的中间件参数。
type Options struct {
	SessionSecret  string
	SecureCookie   bool
	UploadDir      string
	UploadURL      string
	AllowedOrigins []string
	// TrustedProxies 列出可信反向代理的 IP/CIDR，为空时忽略 X-Forwarded-For。
	TrustedProxies []string
	Logger         *slog.Logger
	Reporter       report.Reporter
	// Limiter 为公开表单限流，为空时按 RateLimitRate/RateLimitBurst 创建。
	Limiter        *middleware.IPRateLimiter
	RateLimitRate  float64
	RateLimitBurst int
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = report.New(report.Options{}, logger)
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewIPRateLimiter(opts.RateLimitRate, opts.RateLimitBurst)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, forwarded headers are ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.Recovery(reporter),
		middleware.RequestLogger(logger),
		middleware.ReportErrors(reporter),
		middleware.CORS(opts.AllowedOrigins),
	)

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "schoolsite-dev-session"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	// 上传文件
	uploadURL := "/" + strings.Trim(opts.UploadURL, "/")
	if uploadURL == "/" {
		uploadURL = api.Media().URLPath()
	}
	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = api.Media().Dir()
	}
	r.Static(uploadURL, uploadDir)

	r.GET("/healthz", api.HealthCheck)

	limited := middleware.RateLimit(limiter, api.TooManyRequests)

	public := r.Group("/api")
	{
		public.GET("/site", api.GetSite)
		public.POST("/visits", api.RecordVisit)
		public.GET("/content", api.GetContentMap)
		public.GET("/content/:key", api.GetSiteContent)
		public.GET("/gallery/categories", api.GalleryCategories)
		public.GET("/social-icons", api.SocialIcons)
		api.RegisterContentPublic(public)

		public.GET("/news", api.ListNews)
		public.GET("/news/featured", api.ListFeaturedNews)
		public.GET("/news/:id", api.GetNews)

		public.GET("/calendar", api.ListCalendar)
		public.GET("/calendar/upcoming", api.ListUpcomingEvents)

		public.POST("/contact", limited, api.SubmitContact)
		public.POST("/newsletter", limited, api.Subscribe)
		public.POST("/newsletter/unsubscribe", limited, api.Unsubscribe)
		public.POST("/applications", limited, api.SubmitApplication)
		public.POST("/applications/documents", limited, api.UploadApplicationDocument)
		public.POST("/feedback", limited, api.SubmitFeedback)

		api.RegisterChatPublic(public, limiter)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", limited, api.Login)
		admin.POST("/logout", api.Logout)
		admin.POST("/token", limited, api.IssueToken)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/me", api.Me)

			// API路由
			adminAPI := auth.Group("/api")
			{
				api.RegisterContentAdmin(adminAPI)
				adminAPI.GET("/social-icons", api.SocialIcons)

				adminAPI.GET("/site-content", api.ListSiteContent)
				adminAPI.GET("/site-content/:key", api.GetSiteContent)
				adminAPI.PUT("/site-content/:key", api.UpsertSiteContent)
				adminAPI.DELETE("/site-content/:key", api.DeleteSiteContent)

				api.RegisterNewsAdmin(adminAPI)
				api.RegisterCalendarAdmin(adminAPI)
				api.RegisterInboxAdmin(adminAPI)
				api.RegisterChatAdmin(adminAPI)

				adminAPI.GET("/dashboard", api.Dashboard)
				adminAPI.GET("/analytics/traffic", api.Traffic)

				adminAPI.GET("/notifications", api.RecentNotifications)
				adminAPI.DELETE("/notifications", api.ClearNotifications)
				adminAPI.GET("/notifications/ws", api.NotificationStream)

				adminAPI.POST("/uploads", api.UploadImage)
				adminAPI.DELETE("/uploads", api.DeleteUpload)

				adminAPI.GET("/settings", api.GetSystemSettings)
				adminAPI.PUT("/settings", api.UpdateSystemSettings)
			}
		}
	}

	return r
}
