package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmehdipour/lunchly/internal/kafka"
	"github.com/jmehdipour/lunchly/internal/logger"
	"github.com/jmehdipour/lunchly/internal/metrics"
	"github.com/jmehdipour/lunchly/internal/repository"
	"github.com/jmehdipour/lunchly/internal/service/customers"
	"github.com/jmehdipour/lunchly/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReservationsCmd(boot Bootstrap) *cobra.Command {
	return &cobra.Command{
		Use:   "reservations",
		Short: "Consume booked reservations from Kafka and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReservations(boot)
		},
	}
}

func runReservations(boot Bootstrap) error {
	// 1) config, logger, database
	cfg, sqlDB, err := boot()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	log := logger.Log

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) repositories + service; the worker never reads the ranking, so it
	// runs without a cache
	reservationsRepo := repository.NewReservationsRepository(sqlDB)
	svc := customers.New(
		repository.NewCustomersRepository(sqlDB, reservationsRepo),
		reservationsRepo,
		nil,
		log,
	)

	// 3) kafka reader
	reader, err := kafka.NewBookingReader(cfg.Kafka)
	if err != nil {
		return err
	}
	defer reader.Close()

	w := worker.NewBookingIntake(reader, svc, log)

	// 4) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("reservation intake started",
		zap.String("topic", reader.Topic()),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	return w.Run(ctx)
}
