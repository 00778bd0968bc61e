package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/lunchly/internal/cache"
	"github.com/jmehdipour/lunchly/internal/db"
	httpSrv "github.com/jmehdipour/lunchly/internal/http"
	"github.com/jmehdipour/lunchly/internal/logger"
	"github.com/jmehdipour/lunchly/internal/metrics"
	"github.com/jmehdipour/lunchly/internal/repository"
	"github.com/jmehdipour/lunchly/internal/service/customers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sqlDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		log := logger.Log

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			redisClient, err = db.NewRedisClient(db.RedisOpts{
				Addr:        cfg.Redis.Addr,
				Password:    cfg.Redis.Password,
				DB:          cfg.Redis.DB,
				DialTimeout: cfg.Redis.DialTimeout,
			})
			if err != nil {
				// the ranking cache is optional; serve straight from the database
				log.Warn("redis unavailable, ranking cache disabled", zap.Error(err))
				redisClient = nil
			} else {
				defer func() { _ = redisClient.Close() }()
			}
		}

		metrics.MustRegister(prometheus.DefaultRegisterer)

		reservationsRepo := repository.NewReservationsRepository(sqlDB)
		customersRepo := repository.NewCustomersRepository(sqlDB, reservationsRepo)
		svc := customers.New(
			customersRepo,
			reservationsRepo,
			cache.NewBestCustomers(redisClient, cfg.Cache.BestCustomersTTL),
			log,
		)

		server := httpSrv.NewServer(svc, log)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
