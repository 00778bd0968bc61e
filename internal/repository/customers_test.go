package repository_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/repository"
	"github.com/jmehdipour/lunchly/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) (*sqlx.DB, *repository.CustomersRepositoryImpl) {
	t.Helper()
	db := testutil.NewSQLite(t)
	return db, repository.NewCustomersRepository(db, repository.NewReservationsRepository(db))
}

func TestCustomers_All_OrderedByLastThenFirstName(t *testing.T) {
	db, repo := newRepos(t)
	testutil.InsertCustomer(t, db, "Ben", "Stone")
	testutil.InsertCustomer(t, db, "Zoe", "Adams")
	testutil.InsertCustomer(t, db, "Ava", "Stone")
	testutil.InsertCustomer(t, db, "Carl", "Moss")

	got, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)

	var names []string
	for _, c := range got {
		names = append(names, c.FullName())
	}
	assert.Equal(t, []string{"Zoe Adams", "Carl Moss", "Ava Stone", "Ben Stone"}, names)

	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		ordered := a.LastName < b.LastName || (a.LastName == b.LastName && a.FirstName <= b.FirstName)
		assert.True(t, ordered, "%s before %s", a.FullName(), b.FullName())
	}
}

func TestCustomers_All_Empty(t *testing.T) {
	_, repo := newRepos(t)

	got, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCustomers_Get(t *testing.T) {
	db, repo := newRepos(t)
	id := testutil.InsertCustomer(t, db, "Ava", "Stone")

	t.Run("existing id", func(t *testing.T) {
		c, err := repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
		assert.Equal(t, "Ava", c.FirstName)
		assert.Equal(t, "Stone", c.LastName)
		assert.Nil(t, c.Phone)
		assert.Nil(t, c.Notes)
	})

	t.Run("unknown id", func(t *testing.T) {
		c, err := repo.Get(context.Background(), id+100)
		assert.Nil(t, c)
		require.ErrorIs(t, err, repository.ErrNotFound)

		var nf *repository.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, http.StatusNotFound, nf.HTTPStatus())
		assert.Contains(t, err.Error(), "no such customer")
	})
}

func TestCustomers_FindAny(t *testing.T) {
	db, repo := newRepos(t)
	testutil.InsertCustomer(t, db, "Ava", "Stone")
	testutil.InsertCustomer(t, db, "Ben", "Stoner")
	testutil.InsertCustomer(t, db, "Avery", "Brooks")
	testutil.InsertCustomer(t, db, "Ann", "Lee_Smith")

	ctx := context.Background()
	cases := []struct {
		text string
		want []string
	}{
		{"Stone", []string{"Ava Stone", "Ben Stoner"}},
		{"stone", []string{"Ava Stone", "Ben Stoner"}},
		{"Av", []string{"Avery Brooks", "Ava Stone"}},
		{"Ava Stone", []string{"Ava Stone"}},
		{"a stone", []string{"Ava Stone"}},
		{"Lee_", []string{"Ann Lee_Smith"}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := repo.FindAny(ctx, tc.text)
			require.NoError(t, err)

			var names []string
			for _, c := range got {
				names = append(names, c.FullName())
			}
			assert.Equal(t, tc.want, names)
		})
	}

	t.Run("no match", func(t *testing.T) {
		got, err := repo.FindAny(ctx, "Zed")
		assert.Nil(t, got)
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.Contains(t, err.Error(), "Zed")
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		_, err := repo.FindAny(ctx, "%")
		require.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.FindAny(ctx, "A_a")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCustomers_BestCustomers(t *testing.T) {
	db, repo := newRepos(t)

	// 12 customers with 1..12 reservations, plus one without any.
	ids := make([]int64, 0, 12)
	for i := 1; i <= 12; i++ {
		id := testutil.InsertCustomer(t, db, "Guest", string(rune('A'+i)))
		testutil.InsertReservations(t, db, id, i)
		ids = append(ids, id)
	}
	lonely := testutil.InsertCustomer(t, db, "No", "Shows")

	best, err := repo.BestCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, best, repository.BestCustomersLimit)

	assert.Equal(t, ids[11], best[0].ID)
	assert.EqualValues(t, 12, best[0].ReservationCount)
	assert.EqualValues(t, 3, best[9].ReservationCount)

	for i, b := range best {
		assert.NotEqual(t, lonely, b.ID)
		assert.GreaterOrEqual(t, b.ReservationCount, int64(1))
		if i > 0 {
			assert.GreaterOrEqual(t, best[i-1].ReservationCount, b.ReservationCount)
		}
	}
}

func TestCustomers_BestCustomers_ExcludesCustomersWithoutReservations(t *testing.T) {
	db, repo := newRepos(t)
	a := testutil.InsertCustomer(t, db, "Ava", "Stone")
	b := testutil.InsertCustomer(t, db, "Ben", "Moss")
	testutil.InsertCustomer(t, db, "Carl", "Idle")
	testutil.InsertReservations(t, db, a, 2)
	testutil.InsertReservations(t, db, b, 2)

	best, err := repo.BestCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, best, 2)

	// equal counts fall back to id order
	assert.Equal(t, a, best[0].ID)
	assert.Equal(t, b, best[1].ID)
}

func TestCustomers_Save_InsertAssignsID(t *testing.T) {
	db, repo := newRepos(t)
	ctx := context.Background()

	c := model.NewCustomer("Ava", "Stone", testutil.StrPtr("555-0100"), testutil.StrPtr("window seat"))
	require.NoError(t, repo.Save(ctx, c))
	require.NotZero(t, c.ID)
	assert.Equal(t, 1, testutil.CountCustomers(t, db))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCustomers_Save_UpdateKeepsRowCount(t *testing.T) {
	_, repo := newRepos(t)
	ctx := context.Background()

	c := testutil.Customer("Ava", "Stone")
	require.NoError(t, repo.Save(ctx, c))
	id := c.ID

	c.LastName = "Rivers"
	c.Notes = testutil.StrPtr("allergic to nuts")
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, id, c.ID)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Rivers", all[0].LastName)
	require.NotNil(t, all[0].Notes)
	assert.Equal(t, "allergic to nuts", *all[0].Notes)
}

func TestCustomers_Save_RoundTripUnchanged(t *testing.T) {
	db, repo := newRepos(t)
	ctx := context.Background()
	id := testutil.InsertCustomer(t, db, "Ava", "Stone")

	before, err := repo.Get(ctx, id)
	require.NoError(t, err)

	c := *before
	require.NoError(t, repo.Save(ctx, &c))

	after, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, testutil.CountCustomers(t, db))
}

func TestCustomers_Reservations_Delegates(t *testing.T) {
	db, repo := newRepos(t)
	ctx := context.Background()
	ava := testutil.InsertCustomer(t, db, "Ava", "Stone")
	ben := testutil.InsertCustomer(t, db, "Ben", "Moss")
	testutil.InsertReservations(t, db, ava, 3)
	testutil.InsertReservations(t, db, ben, 1)

	c, err := repo.Get(ctx, ava)
	require.NoError(t, err)

	res, err := repo.Reservations(ctx, c)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.Equal(t, ava, r.CustomerID)
	}
}

type stubReservations struct {
	repository.ReservationsRepository
	gotID int64
	out   []model.Reservation
}

func (s *stubReservations) GetForCustomer(_ context.Context, customerID int64) ([]model.Reservation, error) {
	s.gotID = customerID
	return s.out, nil
}

func TestCustomers_Reservations_ReturnsCollaboratorResultAsIs(t *testing.T) {
	db := testutil.NewSQLite(t)
	stub := &stubReservations{out: []model.Reservation{{ID: 9, CustomerID: 4}, {ID: 3, CustomerID: 4}}}
	repo := repository.NewCustomersRepository(db, stub)

	res, err := repo.Reservations(context.Background(), &model.Customer{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stub.gotID)
	assert.Equal(t, stub.out, res)
}
