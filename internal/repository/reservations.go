package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmoiron/sqlx"
)

// ReservationsRepository defines persistence for the reservations table.
type ReservationsRepository interface {
	GetForCustomer(ctx context.Context, customerID int64) ([]model.Reservation, error)
	Get(ctx context.Context, id int64) (*model.Reservation, error)
	Save(ctx context.Context, r *model.Reservation) error
}

type ReservationsRepositoryImpl struct {
	db      sqlx.ExtContext
	dialect dialect
}

func NewReservationsRepository(db sqlx.ExtContext) *ReservationsRepositoryImpl {
	return &ReservationsRepositoryImpl{db: db, dialect: dialectOf(db.DriverName())}
}

var _ ReservationsRepository = (*ReservationsRepositoryImpl)(nil)

const reservationColumns = `
	id,
	customer_id,
	start_at,
	num_guests,
	notes,
	booking_ref`

// GetForCustomer lists a customer's reservations, earliest first.
func (r *ReservationsRepositoryImpl) GetForCustomer(ctx context.Context, customerID int64) (_ []model.Reservation, err error) {
	defer observe("reservations", "for_customer", time.Now(), &err)

	q := r.db.Rebind(`SELECT` + reservationColumns + `
		FROM reservations
		WHERE customer_id = ?
		ORDER BY start_at`)

	res := []model.Reservation{}
	if err = sqlx.SelectContext(ctx, r.db, &res, q, customerID); err != nil {
		return nil, fmt.Errorf("select reservations of customer %d: %w", customerID, err)
	}
	return res, nil
}

func (r *ReservationsRepositoryImpl) Get(ctx context.Context, id int64) (_ *model.Reservation, err error) {
	defer observe("reservations", "get", time.Now(), &err)

	q := r.db.Rebind(`SELECT` + reservationColumns + `
		FROM reservations
		WHERE id = ?`)

	var res model.Reservation
	err = sqlx.GetContext(ctx, r.db, &res, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "reservation", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return &res, nil
}

// Save inserts or updates res depending on whether it already has an id.
// Inserting a second reservation with the same BookingRef returns a
// DuplicateError. BookingRef is never changed by an update.
func (r *ReservationsRepositoryImpl) Save(ctx context.Context, res *model.Reservation) (err error) {
	if !res.Saved() {
		defer observe("reservations", "insert", time.Now(), &err)

		var id int64
		id, err = insertReturningID(ctx, r.db, r.dialect, `
			INSERT INTO reservations (customer_id, start_at, num_guests, notes, booking_ref)
			VALUES (?, ?, ?, ?, ?)`,
			res.CustomerID, res.StartAt, res.NumGuests, res.Notes, res.BookingRef,
		)
		if err != nil && res.BookingRef != nil && isUniqueViolation(err) {
			return &DuplicateError{Resource: "reservation", Key: *res.BookingRef}
		}
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		res.ID = id
		return nil
	}

	defer observe("reservations", "update", time.Now(), &err)

	q := r.db.Rebind(`
		UPDATE reservations
		   SET customer_id = ?,
		       start_at    = ?,
		       num_guests  = ?,
		       notes       = ?
		 WHERE id = ?`)
	if _, err = r.db.ExecContext(ctx, q, res.CustomerID, res.StartAt, res.NumGuests, res.Notes, res.ID); err != nil {
		return fmt.Errorf("update reservation %d: %w", res.ID, err)
	}
	return nil
}
