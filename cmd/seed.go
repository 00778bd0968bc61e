package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/lunchly/internal/logger"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo customers and reservations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sqlDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		n, err := seedDemo(cmd.Context(), sqlDB)
		if err != nil {
			return err
		}
		logger.Log.Info("seed completed", zap.Int("customers", n))
		return nil
	},
}

type demoCustomer struct {
	first, last, phone, notes string
	bookings                  int
}

var demoCustomers = []demoCustomer{
	{"Ava", "Stone", "555-0100", "prefers the window table", 5},
	{"Ben", "Moss", "555-0101", "", 3},
	{"Carla", "Reyes", "", "gluten free", 8},
	{"Dev", "Patel", "555-0103", "", 1},
	{"Elena", "Ito", "555-0104", "anniversary in May", 0},
}

// seedDemo inserts the demo rows in one transaction. It is a no-op when
// customers already exist.
func seedDemo(ctx context.Context, sqlDB *sqlx.DB) (int, error) {
	var existing int
	if err := sqlDB.GetContext(ctx, &existing, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := sqlDB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	reservations := repository.NewReservationsRepository(tx)
	customers := repository.NewCustomersRepository(tx, reservations)

	base := time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour)
	for _, d := range demoCustomers {
		c := model.NewCustomer(d.first, d.last, optional(d.phone), optional(d.notes))
		if err := customers.Save(ctx, c); err != nil {
			return 0, fmt.Errorf("insert customer %q: %w", c.FullName(), err)
		}
		for i := 0; i < d.bookings; i++ {
			r := &model.Reservation{
				CustomerID: c.ID,
				StartAt:    base.AddDate(0, 0, -7*(i+1)),
				NumGuests:  2 + i%4,
			}
			if err := reservations.Save(ctx, r); err != nil {
				return 0, fmt.Errorf("insert reservation for %q: %w", c.FullName(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(demoCustomers), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
