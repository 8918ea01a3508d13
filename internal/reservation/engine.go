// Package reservation implements the seat-reservation engine: the single
// write path for bookings. It decides, under concurrent requests, whether a
// seat-booking attempt succeeds, fails as a conflict, or fails as invalid,
// and keeps the derived availability numbers consistent with the ledger.
package reservation

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/movie-show-booking/internal/model"
	"github.com/iliyamo/movie-show-booking/internal/repository"
)

// ErrInvalidSeat is returned when a requested seat number lies outside
// 1..show.TotalSeats. It is never reported as a conflict.
var ErrInvalidSeat = errors.New("seat number out of range")

// Catalog provides the read access to shows the engine needs; it is
// satisfied by *repository.ShowRepo. Implementations return
// repository.ErrShowNotFound for unknown IDs.
type Catalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
}

// Ledger is the booking store consulted and mutated by the engine. The
// production implementation is repository.BookingRepo; tests substitute an
// in-memory store. Insert must reject a seat that already has an active
// booking with repository.ErrSeatConflict, evaluated atomically at write
// time.
type Ledger interface {
	FindActive(ctx context.Context, showID uint64, seatNumber uint32) (*model.Booking, error)
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	MarkCancelled(ctx context.Context, id uint64) (*model.Booking, error)
	CountActive(ctx context.Context, showID uint64) (int, error)
	ListForShow(ctx context.Context, showID uint64) ([]model.Booking, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// Engine mediates all booking mutations. The check-then-insert sequence of
// CreateBooking is serialized per show by a striped mutex, so two racing
// requests for the same seat cannot both observe it free; requests for
// different shows proceed in parallel. The storage-level unique index on
// (show_id, active_seat) backs the same invariant a second time for writers
// outside this process.
type Engine struct {
	catalog Catalog
	ledger  Ledger

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex // one lock per show, created lazily
}

// NewEngine constructs an Engine. Both dependencies must be non-nil.
func NewEngine(catalog Catalog, ledger Ledger) *Engine {
	if catalog == nil || ledger == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{
		catalog: catalog,
		ledger:  ledger,
		locks:   make(map[uint64]*sync.Mutex),
	}
}

// showLock returns the mutex serializing mutations for one show. Locks are
// never removed; the map grows with the number of distinct shows booked,
// which is bounded by the catalog size.
func (e *Engine) showLock(showID uint64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[showID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[showID] = l
	}
	return l
}

// CreateBooking books one seat on one show for the given principal.
// Validation short-circuits in order: unknown show -> ErrShowNotFound,
// seat outside 1..TotalSeats -> ErrInvalidSeat, occupied seat ->
// ErrSeatConflict. A race lost at insert time is also reported as
// ErrSeatConflict, never as a generic failure. Double-submits by the same
// user are treated the same as conflicts with other users.
func (e *Engine) CreateBooking(ctx context.Context, principalID, showID uint64, seatNumber uint32) (*model.Booking, error) {
	show, err := e.catalog.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	if seatNumber < 1 || seatNumber > show.TotalSeats {
		return nil, ErrInvalidSeat
	}

	l := e.showLock(show.ID)
	l.Lock()
	defer l.Unlock()

	existing, err := e.ledger.FindActive(ctx, show.ID, seatNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrSeatConflict
	}
	b := &model.Booking{
		UserID:     principalID,
		ShowID:     show.ID,
		SeatNumber: seatNumber,
		Status:     model.StatusBooked,
	}
	if err := e.ledger.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelBooking transitions a booking to CANCELLED on behalf of its owner.
// Failure order: unknown booking -> ErrBookingNotFound, foreign booking ->
// ErrForbidden, repeated cancel -> ErrAlreadyCancelled. Cancelling frees
// the seat implicitly: availability is derived from the absence of a BOOKED
// row, so no counter is touched here.
func (e *Engine) CancelBooking(ctx context.Context, principalID, bookingID uint64) (*model.Booking, error) {
	b, err := e.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !Authorize(principalID, b) {
		return nil, repository.ErrForbidden
	}
	if !b.Active() {
		return nil, repository.ErrAlreadyCancelled
	}

	l := e.showLock(b.ShowID)
	l.Lock()
	defer l.Unlock()

	// MarkCancelled guards on the current status again, so a cancel that
	// lost a race past the check above still reports ErrAlreadyCancelled.
	return e.ledger.MarkCancelled(ctx, bookingID)
}

// AvailableSeats computes total_seats minus the number of active bookings.
// The value is recomputed from the ledger on every call; it is never
// cached, so it cannot drift.
func (e *Engine) AvailableSeats(ctx context.Context, showID uint64) (int, error) {
	show, err := e.catalog.GetByID(ctx, showID)
	if err != nil {
		return 0, err
	}
	booked, err := e.ledger.CountActive(ctx, show.ID)
	if err != nil {
		return 0, err
	}
	return int(show.TotalSeats) - booked, nil
}

// IsFullyBooked reports whether no seats remain for the show.
func (e *Engine) IsFullyBooked(ctx context.Context, showID uint64) (bool, error) {
	n, err := e.AvailableSeats(ctx, showID)
	if err != nil {
		return false, err
	}
	return n <= 0, nil
}

// GetBookingForUser returns a booking visible to the principal. Bookings
// owned by other users are reported as ErrBookingNotFound rather than
// ErrForbidden so their existence is not leaked.
func (e *Engine) GetBookingForUser(ctx context.Context, principalID, bookingID uint64) (*model.Booking, error) {
	b, err := e.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !Authorize(principalID, b) {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

// ListUserBookings returns the principal's bookings, newest first.
func (e *Engine) ListUserBookings(ctx context.Context, principalID uint64) ([]model.Booking, error) {
	return e.ledger.ListForUser(ctx, principalID)
}

// ListShowBookings returns every booking of a show, active and cancelled.
// It verifies the show exists so unknown IDs surface as ErrShowNotFound.
func (e *Engine) ListShowBookings(ctx context.Context, showID uint64) ([]model.Booking, error) {
	if _, err := e.catalog.GetByID(ctx, showID); err != nil {
		return nil, err
	}
	return e.ledger.ListForShow(ctx, showID)
}
