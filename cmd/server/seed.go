package main

import (
	"fmt"
	"sort"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/logging"
	"github.com/schoolsite/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill empty content tables with the school's starting content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			log := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err := openDatabase(cfg); err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}

			result, err := seed.Run(db.DB, log)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(result))
			for name := range result {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", name, result[name])
			}
			return nil
		},
	}
}
