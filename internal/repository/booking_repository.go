package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-show-booking/internal/model"
)

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo is the seat ledger: the set of booking rows per show is the
// source of truth for seat occupancy. Rows are inserted through the
// reservation engine and transition BOOKED -> CANCELLED exactly once; they
// are never deleted, so cancelled rows remain as history.
//
// The uq_bookings_active_seat unique index (show_id, active_seat) backs the
// no-double-booking invariant at storage level: active_seat mirrors
// seat_number while status is BOOKED and is NULL otherwise, so a racing
// insert for an occupied seat fails with a duplicate-key error which is
// translated to ErrSeatConflict here.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, user_id, show_id, seat_number, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	return row.Scan(&b.ID, &b.UserID, &b.ShowID, &b.SeatNumber, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// FindActive returns the BOOKED booking occupying the given seat of a show,
// or (nil, nil) when the seat is free.
func (r *BookingRepo) FindActive(ctx context.Context, showID uint64, seatNumber uint32) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE show_id = ? AND seat_number = ? AND status = 'BOOKED' LIMIT 1`
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx, q, showID, seatNumber), &b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapStorage(err)
	}
	return &b, nil
}

// Insert creates a new booking row with status BOOKED and reads back the
// generated ID and timestamps. When the unique active-seat index rejects
// the insert because the seat is already occupied, ErrSeatConflict is
// returned.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, show_id, seat_number, status) VALUES (?, ?, ?, 'BOOKED')`
	res, err := r.db.ExecContext(ctx, q, b.UserID, b.ShowID, b.SeatNumber)
	if err != nil {
		if isDuplicate(err) {
			return ErrSeatConflict
		}
		return wrapStorage(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, sel, b.ID), b)
}

// GetByID retrieves a booking by its ID. It returns ErrBookingNotFound if
// there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx, q, id), &b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, wrapStorage(err)
	}
	return &b, nil
}

// MarkCancelled transitions a booking from BOOKED to CANCELLED and bumps
// its updated_at. The UPDATE is guarded on the current status, so a
// concurrent or repeated cancel affects zero rows and is reported as
// ErrAlreadyCancelled; a missing row is ErrBookingNotFound. The updated
// row is returned.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `UPDATE bookings SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = 'BOOKED'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return nil, wrapStorage(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish "missing" from "already cancelled".
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrBookingNotFound
			}
			return nil, wrapStorage(err)
		}
		return nil, ErrAlreadyCancelled
	}
	return r.GetByID(ctx, id)
}

// CountActive returns the number of BOOKED rows for a show. The derived
// available-seat count is computed from this on every call; it is never
// cached or stored.
func (r *BookingRepo) CountActive(ctx context.Context, showID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE show_id = ? AND status = 'BOOKED'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, showID).Scan(&n); err != nil {
		return 0, wrapStorage(err)
	}
	return n, nil
}

// CountActiveByShows returns active booking counts for several shows in one
// query. Shows without active bookings are absent from the result map.
func (r *BookingRepo) CountActiveByShows(ctx context.Context, showIDs []uint64) (map[uint64]int, error) {
	counts := make(map[uint64]int, len(showIDs))
	if len(showIDs) == 0 {
		return counts, nil
	}
	args := make([]interface{}, 0, len(showIDs))
	placeholders := make([]string, 0, len(showIDs))
	for _, id := range showIDs {
		args = append(args, id)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT show_id, COUNT(*) FROM bookings
	      WHERE status = 'BOOKED' AND show_id IN (` + strings.Join(placeholders, ",") + `)
	      GROUP BY show_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStorage(err)
	}
	defer rows.Close()
	for rows.Next() {
		var showID uint64
		var n int
		if err := rows.Scan(&showID, &n); err != nil {
			return nil, err
		}
		counts[showID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListForShow returns all bookings of a show, active and cancelled,
// ordered by creation time descending (newest first).
func (r *BookingRepo) ListForShow(ctx context.Context, showID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE show_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, showID)
}

// ListForUser returns all bookings made by a user ordered by creation time
// descending (newest first).
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, wrapStorage(err)
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
