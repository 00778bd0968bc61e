package cmd

import (
	"fmt"
	"strings"

	"github.com/jmehdipour/lunchly/internal/logger"
	"github.com/jmehdipour/lunchly/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sqlDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		script, err := migrations.InitSQL(sqlDB.DriverName())
		if err != nil {
			return err
		}

		// one statement per Exec: the MySQL driver rejects multi-statement
		// strings unless the DSN opts in
		for _, stmt := range strings.Split(script, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := sqlDB.ExecContext(cmd.Context(), stmt); err != nil {
				return fmt.Errorf("exec migration: %w", err)
			}
		}

		logger.Log.Info("migration complete", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
