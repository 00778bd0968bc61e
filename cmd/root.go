package cmd

import (
	"fmt"
	"os"

	"github.com/jmehdipour/lunchly/cmd/worker"
	"github.com/jmehdipour/lunchly/internal/config"
	"github.com/jmehdipour/lunchly/internal/db"
	"github.com/jmehdipour/lunchly/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:          "lunchly",
		Short:        "Lunchly restaurant reservations CLI",
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd(bootstrap))
}

// bootstrap loads config, installs the global logger and opens the database.
func bootstrap() (config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}

	sqlDB, err := db.NewSQLConnection(db.SQLOpts{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		PingTimeout:     cfg.Database.PingTimeout,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	return cfg, sqlDB, nil
}
