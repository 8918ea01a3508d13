package model

import "time"

// Seat capacity bounds enforced by the catalog on write.
const (
	MinTotalSeats = 1
	MaxTotalSeats = 1000
)

// Show represents a scheduled screening of a movie on a screen at a given
// time.  Two shows can never occupy the same screen at the same instant;
// the (screen_name, date_time) pair is unique.  Seats are abstract numbers
// 1..TotalSeats with no layout attached.
//
// Fields:
//
//	ID         – primary key identifier.
//	MovieID    – movie being screened.
//	ScreenName – name of the screen/auditorium.
//	DateTime   – when the show starts (UTC).
//	TotalSeats – fixed seat capacity, 1..1000.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Show struct {
	ID         uint64    `json:"id"`          // shows.id
	MovieID    uint64    `json:"movie_id"`    // shows.movie_id
	ScreenName string    `json:"screen_name"` // shows.screen_name
	DateTime   time.Time `json:"date_time"`   // shows.date_time
	TotalSeats uint32    `json:"total_seats"` // shows.total_seats
	CreatedAt  time.Time `json:"created_at"`  // shows.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // shows.updated_at
}
