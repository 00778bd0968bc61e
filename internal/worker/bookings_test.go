package worker

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jmehdipour/lunchly/internal/kafka"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/repository"
	"github.com/jmehdipour/lunchly/internal/service/customers"
	"github.com/jmehdipour/lunchly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource hands out queued messages, then blocks until ctx is done.
type fakeSource struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeSource(payloads ...string) *fakeSource {
	s := &fakeSource{drained: make(chan struct{})}
	for i, p := range payloads {
		s.msgs = append(s.msgs, kafka.Message{Offset: int64(i), Value: []byte(p)})
	}
	return s
}

func (s *fakeSource) Fetch(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if len(s.msgs) > 0 {
		m := s.msgs[0]
		s.msgs = s.msgs[1:]
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (s *fakeSource) Commit(_ context.Context, m kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, m.Offset)
	if len(s.msgs) == 0 {
		select {
		case <-s.drained:
		default:
			close(s.drained)
		}
	}
	return nil
}

type fakeStore struct {
	mu       sync.Mutex
	stored   []*model.Reservation
	failures int // transient failures before succeeding
	calls    int
}

func (f *fakeStore) AddReservation(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if r.CustomerID == 404 {
		return &repository.NotFoundError{Resource: "customer", Key: "404"}
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	f.stored = append(f.stored, r)
	return nil
}

func runUntilDrained(t *testing.T, src *fakeSource, store BookingStore) {
	t.Helper()
	w := NewBookingIntake(src, store, nil)
	w.RetryBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-src.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain the source")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestBookingIntake_StoresAndSkips(t *testing.T) {
	src := newFakeSource(
		`{"id":"b1","customer_id":1,"start_at":"2026-06-01T18:00:00Z","num_guests":4,"notes":"terrace"}`,
		`not json`,
		`{"id":"b2","customer_id":1,"num_guests":2}`,
		`{"id":"b3","customer_id":404,"start_at":"2026-06-01T18:00:00Z","num_guests":2}`,
		`{"id":"b4","customer_id":2,"start_at":"2026-06-02T19:00:00Z","num_guests":2}`,
	)
	store := &fakeStore{}

	runUntilDrained(t, src, store)

	assert.Equal(t, []int64{0, 1, 2, 3, 4}, src.committed)
	require.Len(t, store.stored, 2)
	assert.Equal(t, int64(1), store.stored[0].CustomerID)
	assert.Equal(t, 4, store.stored[0].NumGuests)
	require.NotNil(t, store.stored[0].Notes)
	assert.Equal(t, "terrace", *store.stored[0].Notes)
	assert.Equal(t, int64(2), store.stored[1].CustomerID)
}

func TestBookingIntake_RetriesStorageErrors(t *testing.T) {
	src := newFakeSource(`{"id":"b1","customer_id":1,"start_at":"2026-06-01T18:00:00Z","num_guests":4}`)
	store := &fakeStore{failures: 2}

	runUntilDrained(t, src, store)

	assert.Equal(t, 3, store.calls)
	assert.Len(t, store.stored, 1)
	assert.Equal(t, []int64{0}, src.committed)
}

func TestBookingIntake_StopsOnCancel(t *testing.T) {
	w := NewBookingIntake(newFakeSource(), &fakeStore{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
}

func TestDecodeBooking(t *testing.T) {
	env, err := decodeBooking([]byte(`{"id":"b1","customer_id":7,"start_at":"2026-06-01T18:00:00Z","num_guests":3}`))
	require.NoError(t, err)

	r := env.Reservation()
	assert.Zero(t, r.ID)
	assert.Equal(t, int64(7), r.CustomerID)
	assert.Equal(t, 3, r.NumGuests)
	assert.True(t, r.StartAt.Equal(time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)))

	require.NotNil(t, r.BookingRef)
	assert.Equal(t, "b1", *r.BookingRef)

	_, err = decodeBooking([]byte(`{"customer_id":7,"start_at":"2026-06-01T18:00:00Z"}`))
	require.ErrorIs(t, err, errIncompleteBooking)

	_, err = decodeBooking([]byte(`{"customer_id":7,"start_at":"2026-06-01T18:00:00Z","num_guests":3}`))
	require.ErrorIs(t, err, errIncompleteBooking)
}

func TestBookingIntake_RedeliveredBookingStoredOnce(t *testing.T) {
	db := testutil.NewSQLite(t)
	res := repository.NewReservationsRepository(db)
	svc := customers.New(repository.NewCustomersRepository(db, res), res, nil, nil)
	ava := testutil.InsertCustomer(t, db, "Ava", "Stone")

	booking := `{"id":"bk-1","customer_id":` + strconv.FormatInt(ava, 10) + `,"start_at":"2026-06-01T18:00:00Z","num_guests":4}`
	src := newFakeSource(booking, booking)

	runUntilDrained(t, src, svc)

	assert.Equal(t, []int64{0, 1}, src.committed)
	list, err := res.GetForCustomer(context.Background(), ava)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].BookingRef)
	assert.Equal(t, "bk-1", *list[0].BookingRef)
}
