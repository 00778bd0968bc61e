package worker

import (
	"github.com/jmehdipour/lunchly/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// Bootstrap loads config, the global logger and the database for a worker.
type Bootstrap func() (config.Config, *sqlx.DB, error)

// NewWorkerCmd returns the parent "worker" command.
func NewWorkerCmd(boot Bootstrap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background workers",
	}
	// attach subcommands
	cmd.AddCommand(newReservationsCmd(boot))

	return cmd
}
