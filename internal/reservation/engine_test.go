package reservation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-booking/internal/model"
	"github.com/iliyamo/movie-show-booking/internal/repository"
)

// fakeCatalog serves shows from a map, mirroring ShowRepo's not-found
// behavior.
type fakeCatalog struct {
	shows map[uint64]model.Show
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	s, ok := f.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &s, nil
}

// fakeLedger is an in-memory booking store. Like the real table it rejects
// an insert for a seat that already has an active booking, atomically under
// its own mutex, so it can lose races the same way the unique index does.
type fakeLedger struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Booking
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[uint64]model.Booking)}
}

func (f *fakeLedger) FindActive(_ context.Context, showID uint64, seat uint32) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if b.ShowID == showID && b.SeatNumber == seat && b.Status == model.StatusBooked {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) Insert(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.ShowID == b.ShowID && existing.SeatNumber == b.SeatNumber && existing.Status == model.StatusBooked {
			return repository.ErrSeatConflict
		}
	}
	f.nextID++
	b.ID = f.nextID
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := b
	return &cp, nil
}

func (f *fakeLedger) MarkCancelled(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status != model.StatusBooked {
		return nil, repository.ErrAlreadyCancelled
	}
	b.Status = model.StatusCancelled
	f.rows[id] = b
	cp := b
	return &cp, nil
}

func (f *fakeLedger) CountActive(_ context.Context, showID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.rows {
		if b.ShowID == showID && b.Status == model.StatusBooked {
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) ListForShow(_ context.Context, showID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range f.rows {
		if b.ShowID == showID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListForUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestEngine(shows ...model.Show) (*Engine, *fakeLedger) {
	cat := &fakeCatalog{shows: make(map[uint64]model.Show)}
	for _, s := range shows {
		cat.shows[s.ID] = s
	}
	ledger := newFakeLedger()
	return NewEngine(cat, ledger), ledger
}

func TestCreateBooking(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	b, err := e.CreateBooking(context.Background(), 7, 1, 12)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, uint64(1), b.ShowID)
	assert.Equal(t, uint32(12), b.SeatNumber)
	assert.Equal(t, model.StatusBooked, b.Status)
	assert.NotZero(t, b.ID)
}

func TestCreateBookingUnknownShow(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.CreateBooking(context.Background(), 7, 99, 1)
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestCreateBookingSeatOutOfRange(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	_, err := e.CreateBooking(context.Background(), 7, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidSeat)

	_, err = e.CreateBooking(context.Background(), 7, 1, 51)
	assert.ErrorIs(t, err, ErrInvalidSeat)

	// Boundary seats are valid.
	_, err = e.CreateBooking(context.Background(), 7, 1, 1)
	assert.NoError(t, err)
	_, err = e.CreateBooking(context.Background(), 7, 1, 50)
	assert.NoError(t, err)
}

func TestCreateBookingSeatConflict(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	_, err := e.CreateBooking(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	// Another user hitting the same seat conflicts.
	_, err = e.CreateBooking(context.Background(), 8, 1, 5)
	assert.ErrorIs(t, err, repository.ErrSeatConflict)

	// So does a double-submit by the same user.
	_, err = e.CreateBooking(context.Background(), 7, 1, 5)
	assert.ErrorIs(t, err, repository.ErrSeatConflict)
}

func TestInvalidSeatNeverReportedAsConflict(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 10})

	// Range check runs before any occupancy check, so out-of-range wins
	// even when the ledger has rows.
	_, err := e.CreateBooking(context.Background(), 7, 1, 10)
	require.NoError(t, err)
	_, err = e.CreateBooking(context.Background(), 8, 1, 11)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestCancelBooking(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	b, err := e.CreateBooking(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	cancelled, err := e.CancelBooking(context.Background(), 7, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	// Second cancel is a conflict, never silent success.
	_, err = e.CancelBooking(context.Background(), 7, b.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)
}

func TestCancelBookingNotOwner(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	b, err := e.CreateBooking(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	_, err = e.CancelBooking(context.Background(), 8, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// The booking is untouched.
	got, err := e.GetBookingForUser(context.Background(), 7, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, got.Status)
}

func TestCancelUnknownBooking(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	_, err := e.CancelBooking(context.Background(), 7, 999)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestRebookCancelledSeatCreatesNewBooking(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	first, err := e.CreateBooking(context.Background(), 7, 1, 5)
	require.NoError(t, err)
	_, err = e.CancelBooking(context.Background(), 7, first.ID)
	require.NoError(t, err)

	second, err := e.CreateBooking(context.Background(), 8, 1, 5)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.StatusBooked, second.Status)

	// The cancelled row stays put as history.
	old, err := e.GetBookingForUser(context.Background(), 7, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, old.Status)
}

func TestAvailableSeatsAccounting(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})
	ctx := context.Background()

	n, err := e.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	var last *model.Booking
	for seat := uint32(1); seat <= 3; seat++ {
		last, err = e.CreateBooking(ctx, 7, 1, seat)
		require.NoError(t, err)
	}
	n, err = e.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 47, n)

	_, err = e.CancelBooking(ctx, 7, last.ID)
	require.NoError(t, err)
	n, err = e.AvailableSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 48, n)
}

func TestTwoSeatShowLifecycle(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 2})
	ctx := context.Background()

	b1, err := e.CreateBooking(ctx, 10, 1, 1)
	require.NoError(t, err)
	_, err = e.CreateBooking(ctx, 11, 1, 2)
	require.NoError(t, err)

	full, err := e.IsFullyBooked(ctx, 1)
	require.NoError(t, err)
	assert.True(t, full)

	_, err = e.CreateBooking(ctx, 12, 1, 1)
	assert.ErrorIs(t, err, repository.ErrSeatConflict)

	_, err = e.CancelBooking(ctx, 10, b1.ID)
	require.NoError(t, err)

	full, err = e.IsFullyBooked(ctx, 1)
	require.NoError(t, err)
	assert.False(t, full)

	// The freed seat is bookable again.
	_, err = e.CreateBooking(ctx, 12, 1, 1)
	assert.NoError(t, err)
}

func TestGetBookingForUserHidesForeignBookings(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})

	b, err := e.CreateBooking(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	// Foreign bookings read as not-found, not forbidden.
	_, err = e.GetBookingForUser(context.Background(), 8, b.ID)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	got, err := e.GetBookingForUser(context.Background(), 7, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestListShowBookingsUnknownShow(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.ListShowBookings(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestListShowBookingsIncludesCancelled(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 50})
	ctx := context.Background()

	b, err := e.CreateBooking(ctx, 7, 1, 1)
	require.NoError(t, err)
	_, err = e.CreateBooking(ctx, 7, 1, 2)
	require.NoError(t, err)
	_, err = e.CancelBooking(ctx, 7, b.ID)
	require.NoError(t, err)

	items, err := e.ListShowBookings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestConcurrentSameSeatExactlyOneWinner(t *testing.T) {
	e, ledger := newTestEngine(model.Show{ID: 1, TotalSeats: 100})

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateBooking(context.Background(), uint64(i+1), 1, 7)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, repository.ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, winners)

	active, err := ledger.FindActive(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, active)
}

func TestConcurrentDistinctSeatsAllSucceed(t *testing.T) {
	e, _ := newTestEngine(model.Show{ID: 1, TotalSeats: 100})

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateBooking(context.Background(), uint64(i+1), 1, uint32(i+1))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	n2, err := e.AvailableSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100-n, n2)
}
