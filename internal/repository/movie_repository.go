// Package repository contains data access logic for the movie catalog. A
// Movie is leaf data: the repository enforces field ranges and title
// uniqueness on write but carries no further business logic.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-show-booking/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrDuplicateTitle indicates a movie with the same title already exists.
var ErrDuplicateTitle = errors.New("movie title already exists")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// validateMovie checks the documented field ranges before any write.
func validateMovie(title string, durationMinutes uint32) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if durationMinutes < model.MinDurationMinutes || durationMinutes > model.MaxDurationMinutes {
		return fmt.Errorf("%w: duration_minutes must be %d..%d",
			ErrValidation, model.MinDurationMinutes, model.MaxDurationMinutes)
	}
	return nil
}

// Create inserts a new movie and populates the generated ID and DB-default
// timestamps on the given struct. A duplicate title is reported as
// ErrDuplicateTitle.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if err := validateMovie(m.Title, m.DurationMinutes); err != nil {
		return err
	}
	const q = `INSERT INTO movies (title, duration_minutes) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.DurationMinutes)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateTitle
		}
		return wrapStorage(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, title, duration_minutes, created_at, updated_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(
		&m.ID, &m.Title, &m.DurationMinutes, &m.CreatedAt, &m.UpdatedAt,
	)
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound if
// there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, duration_minutes, created_at, updated_at FROM movies WHERE id = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.DurationMinutes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, wrapStorage(err)
	}
	return &m, nil
}

// List returns all movies ordered by title ascending. When the catalog is
// empty it returns an empty slice and nil error.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, duration_minutes, created_at, updated_at FROM movies ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrapStorage(err)
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.DurationMinutes, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// Update edits a movie's attributes. It validates ranges, reports a
// duplicate title as ErrDuplicateTitle and a missing row as
// ErrMovieNotFound. The updated row is read back into m.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	if err := validateMovie(m.Title, m.DurationMinutes); err != nil {
		return err
	}
	const q = `UPDATE movies SET title = ?, duration_minutes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.DurationMinutes, m.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateTitle
		}
		return wrapStorage(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the row is missing or the values are identical; check which.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, m.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return wrapStorage(err)
		}
	}
	const sel = `SELECT id, title, duration_minutes, created_at, updated_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(
		&m.ID, &m.Title, &m.DurationMinutes, &m.CreatedAt, &m.UpdatedAt,
	)
}
