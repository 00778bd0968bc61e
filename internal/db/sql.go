package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type SQLOpts struct {
	Driver          string // postgres | mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// NewSQLConnection opens a *sqlx.DB with sensible pool/timeouts.
func NewSQLConnection(opts SQLOpts) (*sqlx.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("empty %s DSN", opts.Driver)
	}
	driver := opts.Driver
	if driver == "" {
		driver = "postgres"
	}

	dsn, err := driverDSN(driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

// driverDSN adjusts a DSN for the driver. MySQL only scans DATETIME columns
// into time.Time with parseTime enabled, so it is always switched on.
func driverDSN(driver, dsn string) (string, error) {
	if driver != "mysql" {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
