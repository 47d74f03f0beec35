package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schoolsite/internal/config"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

// version 在构建时通过 -ldflags "-X main.version=..." 写入。
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "schoolsite",
		Short:         "Shkolla Profesionale website backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "", "override log level: debug, info, warn, error")
	root.PersistentFlags().String("database-driver", "", "sqlite, postgres or mysql")
	root.PersistentFlags().String("database-path", "", "sqlite database file")
	root.PersistentFlags().String("database-dsn", "", "postgres/mysql connection string")

	serveCmd := newServeCommand(&configFile)
	// 不带子命令时等同于 serve
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	}

	root.AddCommand(
		serveCmd,
		newMigrateCommand(&configFile),
		newSeedCommand(&configFile),
		newCreateAdminCommand(&configFile),
	)
	return root
}

// loadConfig 读取配置文件与环境变量，命令行中显式设置的参数优先。
func loadConfig(configFile string, flags ...*pflag.FlagSet) (*viper.Viper, config.AppConfig, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, config.AppConfig{}, err
	}
	for _, fs := range flags {
		if err := bindChangedFlags(v, fs); err != nil {
			return nil, config.AppConfig{}, err
		}
	}
	return v, config.Load(v), nil
}

// bindChangedFlags 把 --log-level 之类的参数映射到 log_level 配置项，只绑定用户显式设置过的参数。
func bindChangedFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}

// openDatabase 初始化全局 db.DB，debug 级别下打开 SQL 日志。
func openDatabase(cfg config.AppConfig) error {
	level := logger.Warn
	if logging.Level() <= slog.LevelDebug {
		level = logger.Info
	}
	return db.Init(db.Options{
		Driver:   cfg.DatabaseDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: level,
	})
}

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			log := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err := openDatabase(cfg); err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}
			log.Info("database migrated", "driver", cfg.DatabaseDriver)
			return nil
		},
	}
}
