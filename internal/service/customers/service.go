package customers

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jmehdipour/lunchly/internal/cache"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/repository"
	"go.uber.org/zap"
)

// Input holds the mutable customer fields accepted from callers.
type Input struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
	Notes     *string `json:"notes"`
}

// RankingCache stores the best customers ranking between reads.
type RankingCache interface {
	Get(ctx context.Context) ([]model.BestCustomer, bool, error)
	Set(ctx context.Context, best []model.BestCustomer) error
	Invalidate(ctx context.Context) error
}

// Service wires the customer and reservation repositories with the ranking cache.
type Service struct {
	customers    repository.CustomersRepository
	reservations repository.ReservationsRepository
	best         RankingCache
	log          *zap.Logger

	// bestGen is bumped after every write that can change the ranking.
	bestGen atomic.Uint64
}

// New constructs the customers service. best and log may be nil.
func New(
	customersRepo repository.CustomersRepository,
	reservationsRepo repository.ReservationsRepository,
	best RankingCache,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if best == nil {
		best = cache.NewBestCustomers(nil, 0)
	}
	return &Service{
		customers:    customersRepo,
		reservations: reservationsRepo,
		best:         best,
		log:          log,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Customer, error) {
	return s.customers.All(ctx)
}

// Search matches q against customer names; a blank query lists everyone.
func (s *Service) Search(ctx context.Context, q string) ([]model.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.customers.All(ctx)
	}
	return s.customers.FindAny(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customers.Get(ctx, id)
}

// Best returns the reservations ranking, served from cache when possible.
// Cache failures only cost a database round trip. A ranking read while a
// write from this process was invalidating the cache is returned but not
// cached.
func (s *Service) Best(ctx context.Context) ([]model.BestCustomer, error) {
	best, ok, err := s.best.Get(ctx)
	if err != nil {
		s.log.Warn("best customers cache read failed", zap.Error(err))
	}
	if ok {
		return best, nil
	}

	gen := s.bestGen.Load()
	best, err = s.customers.BestCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if s.bestGen.Load() != gen {
		return best, nil
	}
	if err := s.best.Set(ctx, best); err != nil {
		s.log.Warn("best customers cache write failed", zap.Error(err))
	}
	return best, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Customer, error) {
	c := model.NewCustomer(in.FirstName, in.LastName, in.Phone, in.Notes)
	if err := s.customers.Save(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("customer created", zap.Int64("customer_id", c.ID))
	return c, nil
}

// Update overwrites the mutable fields of an existing customer.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*model.Customer, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Phone = in.Phone
	c.Notes = in.Notes
	if err := s.customers.Save(ctx, c); err != nil {
		return nil, err
	}

	s.invalidateBest(ctx)
	return c, nil
}

func (s *Service) Reservations(ctx context.Context, customerID int64) ([]model.Reservation, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.customers.Reservations(ctx, c)
}

// AddReservation books r for an existing customer and drops the cached ranking.
func (s *Service) AddReservation(ctx context.Context, r *model.Reservation) error {
	if _, err := s.customers.Get(ctx, r.CustomerID); err != nil {
		return err
	}
	if err := s.reservations.Save(ctx, r); err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}

	s.invalidateBest(ctx)
	return nil
}

func (s *Service) invalidateBest(ctx context.Context) {
	s.bestGen.Add(1)
	if err := s.best.Invalidate(ctx); err != nil {
		s.log.Warn("best customers cache invalidate failed", zap.Error(err))
	}
}
