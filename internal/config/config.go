package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 是所有环境变量的可选前缀，例如 SCHOOLSITE_PORT。
const EnvPrefix = "SCHOOLSITE"

const defaultSecret = "schoolsite-dev-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	GinMode           string
	Environment       string
	DatabaseDriver    string
	DatabasePath      string
	DatabaseDSN       string
	SessionSecret     string
	JWTSecret         string
	JWTTTL            time.Duration
	UploadDir         string
	UploadURLPath     string
	AdminEmail        string
	AdminPassword     string
	SiteBaseURL       string
	AllowedOrigins    []string
	TrustedProxies    []string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SendgridAPIKey    string
	MailFromAddress   string
	MailFromName      string
	NotificationEmail string
	RollbarToken      string
	LogLevel          string
	LogFormat         string
	RateLimitRate     float64
	RateLimitBurst    int
	LandingCacheTTL   time.Duration
}

var defaults = map[string]interface{}{
	"port":               "8080",
	"listen_addr":        "",
	"gin_mode":           "release",
	"environment":        "development",
	"database_driver":    "sqlite",
	"database_path":      "schoolsite.db",
	"database_dsn":       "",
	"session_secret":     defaultSecret,
	"jwt_secret":         "",
	"jwt_ttl":            "12h",
	"upload_dir":         "web/static/uploads",
	"upload_url_path":    "/static/uploads",
	"admin_email":        "",
	"admin_password":     "",
	"site_base_url":      "http://localhost:8080",
	"allowed_origins":    "",
	"trusted_proxies":    "",
	"redis_addr":         "",
	"redis_password":     "",
	"redis_db":           0,
	"sendgrid_api_key":   "",
	"mail_from_address":  "no-reply@localhost",
	"mail_from_name":     "Shkolla Profesionale",
	"notification_email": "",
	"rollbar_token":      "",
	"log_level":          "info",
	"log_format":         "text",
	"rate_limit_rate":    0.5,
	"rate_limit_burst":   5,
	"landing_cache_ttl":  "5m",
}

// NewViper 构造带默认值与环境变量绑定的 viper 实例。
// configFile 为空时只读取默认值、.env 与环境变量。
func NewViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		upper := strings.ToUpper(key)
		if err := v.BindEnv(key, EnvPrefix+"_"+upper, upper); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path := strings.TrimSpace(configFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return v, nil
}

// Load 从 viper 读取应用配置，并为缺失项提供安全的默认值。
func Load(v *viper.Viper) AppConfig {
	port := strings.TrimSpace(v.GetString("port"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(v.GetString("listen_addr"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(v.GetString("database_path"))
	if databasePath == "" {
		databasePath = "schoolsite.db"
	}

	sessionSecret := strings.TrimSpace(v.GetString("session_secret"))
	if sessionSecret == "" {
		sessionSecret = defaultSecret
	}

	jwtSecret := strings.TrimSpace(v.GetString("jwt_secret"))
	if jwtSecret == "" {
		jwtSecret = sessionSecret
	}

	jwtTTL := v.GetDuration("jwt_ttl")
	if jwtTTL <= 0 {
		jwtTTL = 12 * time.Hour
	}

	ginMode := strings.TrimSpace(v.GetString("gin_mode"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(v.GetString("upload_dir"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(v.GetString("upload_url_path"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	rate := v.GetFloat64("rate_limit_rate")
	if rate <= 0 {
		rate = 0.5
	}
	burst := v.GetInt("rate_limit_burst")
	if burst <= 0 {
		burst = 5
	}

	landingTTL := v.GetDuration("landing_cache_ttl")
	if landingTTL <= 0 {
		landingTTL = 5 * time.Minute
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		GinMode:           ginMode,
		Environment:       strings.TrimSpace(v.GetString("environment")),
		DatabaseDriver:    strings.ToLower(strings.TrimSpace(v.GetString("database_driver"))),
		DatabasePath:      databasePath,
		DatabaseDSN:       strings.TrimSpace(v.GetString("database_dsn")),
		SessionSecret:     sessionSecret,
		JWTSecret:         jwtSecret,
		JWTTTL:            jwtTTL,
		UploadDir:         uploadDir,
		UploadURLPath:     uploadURLPath,
		AdminEmail:        strings.TrimSpace(v.GetString("admin_email")),
		AdminPassword:     strings.TrimSpace(v.GetString("admin_password")),
		SiteBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("site_base_url")), "/"),
		AllowedOrigins:    splitList(v.GetString("allowed_origins")),
		TrustedProxies:    splitList(v.GetString("trusted_proxies")),
		RedisAddr:         strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		SendgridAPIKey:    strings.TrimSpace(v.GetString("sendgrid_api_key")),
		MailFromAddress:   strings.TrimSpace(v.GetString("mail_from_address")),
		MailFromName:      strings.TrimSpace(v.GetString("mail_from_name")),
		NotificationEmail: strings.TrimSpace(v.GetString("notification_email")),
		RollbarToken:      strings.TrimSpace(v.GetString("rollbar_token")),
		LogLevel:          strings.TrimSpace(v.GetString("log_level")),
		LogFormat:         strings.TrimSpace(v.GetString("log_format")),
		RateLimitRate:     rate,
		RateLimitBurst:    burst,
		LandingCacheTTL:   landingTTL,
	}
}

// UsesDefaultSecret 报告会话密钥或 JWT 密钥是否仍是开发默认值。
func (c AppConfig) UsesDefaultSecret() bool {
	return c.SessionSecret == defaultSecret || c.JWTSecret == defaultSecret
}

// IsProduction 报告是否运行在生产环境。
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate 拒绝生产环境中仍使用公开默认密钥的配置。
func (c AppConfig) Validate() error {
	if c.IsProduction() && c.UsesDefaultSecret() {
		return errors.New("production requires SCHOOLSITE_SESSION_SECRET (and SCHOOLSITE_JWT_SECRET) to be set to a non-default value")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
