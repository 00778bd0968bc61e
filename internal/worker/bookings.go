package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmehdipour/lunchly/internal/kafka"
	"github.com/jmehdipour/lunchly/internal/metrics"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/repository"
	"go.uber.org/zap"
)

// Source is the subset of *kafka.BookingReader the intake needs.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// BookingStore persists a reservation for an existing customer.
type BookingStore interface {
	AddReservation(ctx context.Context, r *model.Reservation) error
}

// BookingIntake:
// - fetches booking envelopes from Kafka,
// - stores each one as a reservation,
// - commits the offset once the booking is stored or known to be unusable.
type BookingIntake struct {
	Source Source
	Store  BookingStore
	Log    *zap.Logger

	RetryBackoff time.Duration // wait between storage retries and fetch errors
}

// NewBookingIntake builds a worker with sane defaults.
func NewBookingIntake(src Source, store BookingStore, log *zap.Logger) *BookingIntake {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingIntake{
		Source:       src,
		Store:        store,
		Log:          log,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// Run consumes until ctx is cancelled.
func (w *BookingIntake) Run(ctx context.Context) error {
	if w.RetryBackoff <= 0 {
		w.RetryBackoff = 500 * time.Millisecond
	}

	for {
		m, err := w.Source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.Log.Warn("kafka fetch failed", zap.Error(err))
			if !w.sleep(ctx) {
				return nil
			}
			continue
		}

		if !w.handle(ctx, m) {
			return nil
		}

		if err := w.Source.Commit(ctx, m); err != nil {
			w.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// handle stores one message, retrying storage errors until ctx ends.
// It returns false only when ctx was cancelled before the booking was settled.
func (w *BookingIntake) handle(ctx context.Context, m kafka.Message) bool {
	env, err := decodeBooking(m.Value)
	if err != nil {
		metrics.BookingsConsumedTotal.WithLabelValues("skipped").Inc()
		w.Log.Warn("bad booking payload", zap.Int64("offset", m.Offset), zap.Error(err))
		return true
	}

	for {
		err := w.Store.AddReservation(ctx, env.Reservation())
		switch {
		case err == nil:
			metrics.BookingsConsumedTotal.WithLabelValues("stored").Inc()
			w.Log.Info("booking stored", zap.String("booking_id", env.ID), zap.Int64("customer_id", env.CustomerID))
			return true
		case errors.Is(err, repository.ErrDuplicate):
			// stored by an earlier delivery whose commit never landed
			metrics.BookingsConsumedTotal.WithLabelValues("duplicate").Inc()
			w.Log.Info("booking already stored", zap.String("booking_id", env.ID))
			return true
		case errors.Is(err, repository.ErrNotFound):
			metrics.BookingsConsumedTotal.WithLabelValues("skipped").Inc()
			w.Log.Warn("booking for unknown customer", zap.String("booking_id", env.ID), zap.Int64("customer_id", env.CustomerID))
			return true
		}

		metrics.BookingsConsumedTotal.WithLabelValues("failed").Inc()
		w.Log.Error("store booking failed", zap.String("booking_id", env.ID), zap.Error(err))
		if !w.sleep(ctx) {
			return false
		}
	}
}

var errIncompleteBooking = errors.New("booking needs id, customer_id, start_at and num_guests")

func decodeBooking(raw []byte) (model.BookingEnvelope, error) {
	var env model.BookingEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, err
	}
	if env.ID == "" || env.CustomerID <= 0 || env.StartAt.IsZero() || env.NumGuests <= 0 {
		return env, errIncompleteBooking
	}
	return env, nil
}

func (w *BookingIntake) sleep(ctx context.Context) bool {
	t := time.NewTimer(w.RetryBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
