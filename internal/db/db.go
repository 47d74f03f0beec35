package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例，由 Init 设置，供命令行工具使用。
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options 描述打开数据库所需的参数。
type Options struct {
	Driver   string
	Path     string
	DSN      string
	LogLevel logger.LogLevel
}

// Init 打开数据库连接并执行自动迁移，成功后写入全局 DB。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 根据驱动选择 dialector。sqlite 路径为空时回退到 schoolsite.db。
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName(opts.Driver), err)
	}
	return gdb, nil
}

// Migrate 自动迁移模式，为全部模型创建表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&TeamMember{},
		&GalleryItem{},
		&Testimonial{},
		&Statistic{},
		&TimelineEvent{},
		&Partner{},
		&Program{},
		&FAQItem{},
		&ContactInfo{},
		&SocialLink{},
		&SiteContent{},
		&NewsItem{},
		&CalendarEvent{},
		&ContactMessage{},
		&NewsletterSubscriber{},
		&StudentApplication{},
		&FeedbackRating{},
		&ChatMessage{},
		&SystemSetting{},
		&SiteHourlySnapshot{},
		&SiteHourlyVisitor{},
	)
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch driverName(opts.Driver) {
	case DriverSQLite:
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "schoolsite.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		return sqlite.Open(path), nil
	case DriverPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		return postgres.Open(opts.DSN), nil
	case DriverMySQL:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("mysql driver requires a DSN")
		}
		return mysql.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func driverName(driver string) string {
	name := strings.ToLower(strings.TrimSpace(driver))
	switch name {
	case "", "sqlite3":
		return DriverSQLite
	case "postgresql", "pg":
		return DriverPostgres
	default:
		return name
	}
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
