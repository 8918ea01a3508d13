package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/movie-show-booking/internal/model"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrShowSlotTaken indicates another show already occupies the same screen
// at the same instant.
var ErrShowSlotTaken = errors.New("screen already booked at that time")

// ShowRepo manages persistence for shows. A show references a movie and
// carries a fixed seat capacity; the (screen_name, date_time) pair is kept
// unique by the uq_shows_screen_slot index.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a new show after validating the seat capacity range.
// A duplicate (screen_name, date_time) slot is reported as
// ErrShowSlotTaken; a dangling movie reference as ErrMovieNotFound. On
// success the generated ID and DB-default timestamps are populated.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	if s.TotalSeats < model.MinTotalSeats || s.TotalSeats > model.MaxTotalSeats {
		return fmt.Errorf("%w: total_seats must be %d..%d",
			ErrValidation, model.MinTotalSeats, model.MaxTotalSeats)
	}
	// Verify the movie exists up front so the caller gets a clean
	// not-found instead of a foreign key failure.
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, s.MovieID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return wrapStorage(err)
	}
	const q = `INSERT INTO shows (movie_id, screen_name, date_time, total_seats) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.ScreenName, s.DateTime.UTC(), s.TotalSeats)
	if err != nil {
		if isDuplicate(err) {
			return ErrShowSlotTaken
		}
		return wrapStorage(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT id, movie_id, screen_name, date_time, total_seats, created_at, updated_at FROM shows WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(
		&s.ID, &s.MovieID, &s.ScreenName, &s.DateTime, &s.TotalSeats, &s.CreatedAt, &s.UpdatedAt,
	)
}

// GetByID retrieves a show by its ID. It returns ErrShowNotFound if there
// is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, screen_name, date_time, total_seats, created_at, updated_at FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.ScreenName, &s.DateTime, &s.TotalSeats, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, wrapStorage(err)
	}
	return &s, nil
}

// ListByMovie returns all shows for a movie ordered by start time
// ascending. When no shows exist it returns an empty slice and nil error.
func (r *ShowRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Show, error) {
	const q = `SELECT id, movie_id, screen_name, date_time, total_seats, created_at, updated_at
	           FROM shows WHERE movie_id = ? ORDER BY date_time ASC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	defer rows.Close()
	shows := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.MovieID, &s.ScreenName, &s.DateTime, &s.TotalSeats, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shows, nil
}
