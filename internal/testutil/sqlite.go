// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE customers (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL,
    phone      TEXT,
    notes      TEXT
);

CREATE TABLE reservations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id INTEGER NOT NULL REFERENCES customers (id),
    start_at    DATETIME NOT NULL,
    num_guests  INTEGER NOT NULL,
    notes       TEXT,
    booking_ref TEXT UNIQUE
);
`

// NewSQLite opens an in-memory database with the lunchly schema. The pool is
// pinned to one connection since every sqlite memory connection is its own
// database.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

// InsertCustomer writes a customer row directly and returns its id.
func InsertCustomer(t testing.TB, db *sqlx.DB, first, last string) int64 {
	t.Helper()

	res, err := db.ExecContext(context.Background(),
		`INSERT INTO customers (first_name, last_name) VALUES (?, ?)`, first, last)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// InsertReservations books n reservations for a customer, one day apart.
func InsertReservations(t testing.TB, db *sqlx.DB, customerID int64, n int) {
	t.Helper()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := db.ExecContext(context.Background(),
			`INSERT INTO reservations (customer_id, start_at, num_guests) VALUES (?, ?, ?)`,
			customerID, base.AddDate(0, 0, i), 2)
		require.NoError(t, err)
	}
}

// CountCustomers returns the number of rows in customers.
func CountCustomers(t testing.TB, db *sqlx.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM customers`))
	return n
}

func StrPtr(s string) *string { return &s }

// Customer is a shorthand for an unsaved model.Customer.
func Customer(first, last string) *model.Customer {
	return model.NewCustomer(first, last, nil, nil)
}
