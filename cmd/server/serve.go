package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/schoolsite/internal/cache"
	"github.com/schoolsite/internal/config"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/handler"
	"github.com/schoolsite/internal/logging"
	"github.com/schoolsite/internal/mail"
	"github.com/schoolsite/internal/middleware"
	"github.com/schoolsite/internal/realtime"
	"github.com/schoolsite/internal/report"
	"github.com/schoolsite/internal/router"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

func newServeCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, *configFile)
		},
	}
	cmd.Flags().String("port", "", "port to listen on")
	cmd.Flags().String("listen-addr", "", "full listen address, overrides --port")
	cmd.Flags().String("gin-mode", "", "debug, release or test")
	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, configFile string) error {
	v, cfg, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if configFile != "" {
		// 只有日志级别支持热更新，其余配置需要重启
		v.OnConfigChange(func(e fsnotify.Event) {
			level := v.GetString("log_level")
			logging.SetLevel(level)
			log.Info("config reloaded", "file", e.Name, "log_level", level)
		})
		v.WatchConfig()
	}

	gin.SetMode(cfg.GinMode)
	if cfg.UsesDefaultSecret() {
		log.Warn("session secret is the development default, set SCHOOLSITE_SESSION_SECRET")
	}

	if err := openDatabase(cfg); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := db.EnsureAdmin(db.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}

	reporter := report.New(report.Options{
		Token:       cfg.RollbarToken,
		Environment: cfg.Environment,
		CodeVersion: version,
		ServerHost:  hostname(),
	}, log)
	defer reporter.Close()

	mailer := newMailer(cfg, log)
	defer mailer.Wait()

	hub := realtime.NewHub(log)
	opts := handler.Options{
		Logger:            log,
		Hub:               hub,
		Mailer:            mailer,
		CacheTTL:          cfg.LandingCacheTTL,
		UploadDir:         cfg.UploadDir,
		UploadURL:         cfg.UploadURLPath,
		JWTSecret:         cfg.JWTSecret,
		JWTTTL:            cfg.JWTTTL,
		NotificationEmail: cfg.NotificationEmail,
		AllowedOrigins:    cfg.AllowedOrigins,
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("连接 redis 失败: %w", err)
		}

		broker := realtime.NewRedisBroker(client, hub, log)
		opts.Cache = cache.NewRedisStore(client, "schoolsite:")
		opts.Publisher = broker
		go func() {
			if err := broker.Run(ctx); err != nil {
				log.Error("realtime broker stopped", "error", err)
			}
		}()
		log.Info("redis enabled", "addr", cfg.RedisAddr)
	}

	api := handler.NewAPI(db.DB, opts)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRate, cfg.RateLimitBurst)
	go sweepLimiter(ctx, limiter)

	engine := router.SetupRouter(api, router.Options{
		SessionSecret:  cfg.SessionSecret,
		SecureCookie:   cfg.IsProduction(),
		UploadDir:      cfg.UploadDir,
		UploadURL:      cfg.UploadURLPath,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log,
		Reporter:       reporter,
		Limiter:        limiter,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newMailer 配置了 SendGrid 时异步发送，否则只写日志。
func newMailer(cfg config.AppConfig, log *slog.Logger) *mail.Async {
	var next mail.Sender
	if cfg.SendgridAPIKey != "" {
		next = mail.NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromAddress)
	} else {
		log.Info("sendgrid key not set, mail is logged only")
		next = mail.NewLogSender(log)
	}
	return mail.NewAsync(next, log)
}

func sweepLimiter(ctx context.Context, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}
