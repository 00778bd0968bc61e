package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmehdipour/lunchly/internal/metrics"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmoiron/sqlx"
)

// BestCustomersLimit caps the reservations ranking.
const BestCustomersLimit = 10

type CustomersRepository interface {
	All(ctx context.Context) ([]model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	FindAny(ctx context.Context, text string) ([]model.Customer, error)
	BestCustomers(ctx context.Context) ([]model.BestCustomer, error)
	Reservations(ctx context.Context, c *model.Customer) ([]model.Reservation, error)
	Save(ctx context.Context, c *model.Customer) error
}

type CustomersRepositoryImpl struct {
	db           sqlx.ExtContext // *sqlx.DB or *sqlx.Tx
	dialect      dialect
	reservations ReservationsRepository
}

func NewCustomersRepository(db sqlx.ExtContext, reservations ReservationsRepository) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{
		db:           db,
		dialect:      dialectOf(db.DriverName()),
		reservations: reservations,
	}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

const customerColumns = `
	id,
	first_name,
	last_name,
	phone,
	notes`

// All returns every customer ordered by last name, then first name.
func (r *CustomersRepositoryImpl) All(ctx context.Context) (_ []model.Customer, err error) {
	defer observe("customers", "all", time.Now(), &err)

	q := `SELECT` + customerColumns + `
		FROM customers
		ORDER BY last_name, first_name`

	customers := []model.Customer{}
	if err = sqlx.SelectContext(ctx, r.db, &customers, q); err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	return customers, nil
}

// Get fetches a customer by primary key.
func (r *CustomersRepositoryImpl) Get(ctx context.Context, id int64) (_ *model.Customer, err error) {
	defer observe("customers", "get", time.Now(), &err)

	q := r.db.Rebind(`SELECT` + customerColumns + `
		FROM customers
		WHERE id = ?`)

	var c model.Customer
	err = sqlx.GetContext(ctx, r.db, &c, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "customer", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &c, nil
}

// FindAny returns customers whose first name, last name or full name
// contains text, ignoring case.
func (r *CustomersRepositoryImpl) FindAny(ctx context.Context, text string) (_ []model.Customer, err error) {
	defer observe("customers", "find_any", time.Now(), &err)

	esc := r.dialect.likeEscape()
	q := r.db.Rebind(`SELECT` + customerColumns + `
		FROM customers
		WHERE LOWER(first_name) LIKE LOWER(?)` + esc + `
		   OR LOWER(last_name) LIKE LOWER(?)` + esc + `
		   OR LOWER(` + r.dialect.fullName("") + `) LIKE LOWER(?)` + esc + `
		ORDER BY last_name, first_name`)

	pattern := containsPattern(text)
	customers := []model.Customer{}
	if err = sqlx.SelectContext(ctx, r.db, &customers, q, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	if len(customers) == 0 {
		return nil, &NotFoundError{Resource: "customer", Key: text, Search: true}
	}
	return customers, nil
}

// BestCustomers ranks customers by reservation count. Customers without any
// reservation are never part of the ranking.
func (r *CustomersRepositoryImpl) BestCustomers(ctx context.Context) (_ []model.BestCustomer, err error) {
	defer observe("customers", "best", time.Now(), &err)

	q := r.db.Rebind(`
		SELECT c.id,
		       c.first_name,
		       c.last_name,
		       c.phone,
		       c.notes,
		       COUNT(r.id) AS res_number
		  FROM customers AS c
		  JOIN reservations AS r
		    ON r.customer_id = c.id
		 GROUP BY c.id, c.first_name, c.last_name, c.phone, c.notes
		 ORDER BY res_number DESC, c.id
		 LIMIT ?`)

	best := []model.BestCustomer{}
	if err = sqlx.SelectContext(ctx, r.db, &best, q, BestCustomersLimit); err != nil {
		return nil, fmt.Errorf("select best customers: %w", err)
	}
	return best, nil
}

// Reservations returns whatever the reservations repository holds for c.
func (r *CustomersRepositoryImpl) Reservations(ctx context.Context, c *model.Customer) ([]model.Reservation, error) {
	return r.reservations.GetForCustomer(ctx, c.ID)
}

// Save inserts c when it has no id yet (and stores the generated id back
// into c), otherwise it overwrites the stored row. Last write wins.
func (r *CustomersRepositoryImpl) Save(ctx context.Context, c *model.Customer) (err error) {
	if !c.Saved() {
		defer observe("customers", "insert", time.Now(), &err)

		var id int64
		id, err = insertReturningID(ctx, r.db, r.dialect, `
			INSERT INTO customers (first_name, last_name, phone, notes)
			VALUES (?, ?, ?, ?)`,
			c.FirstName, c.LastName, c.Phone, c.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		c.ID = id
		return nil
	}

	defer observe("customers", "update", time.Now(), &err)

	q := r.db.Rebind(`
		UPDATE customers
		   SET first_name = ?,
		       last_name  = ?,
		       phone      = ?,
		       notes      = ?
		 WHERE id = ?`)
	if _, err = r.db.ExecContext(ctx, q, c.FirstName, c.LastName, c.Phone, c.Notes, c.ID); err != nil {
		return fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	return nil
}

// insertReturningID runs an INSERT written with ? placeholders and returns
// the generated primary key.
func insertReturningID(ctx context.Context, db sqlx.ExtContext, d dialect, q string, args ...any) (int64, error) {
	if d.returning() {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(q+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := db.ExecContext(ctx, db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// observe records query metrics for the operation that set *errp.
func observe(repo, op string, started time.Time, errp *error) {
	outcome := "ok"
	if *errp != nil {
		outcome = "error"
		if errors.Is(*errp, ErrNotFound) {
			outcome = "not_found"
		}
	}
	metrics.ObserveQuery(repo, op, outcome, started)
}
