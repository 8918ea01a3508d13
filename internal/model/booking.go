package model

import "time"

// Booking status values.  A booking starts as BOOKED and may transition to
// CANCELLED exactly once; CANCELLED is terminal.  A cancelled seat becomes
// available again through the absence of a BOOKED row, never by flipping a
// cancelled booking back.
const (
	StatusBooked    = "BOOKED"    // seat is actively claimed
	StatusCancelled = "CANCELLED" // terminal; row is retained as history
)

// Booking is a claim on one numbered seat for one show by one user.
// For a given show at most one booking with status BOOKED may exist per
// seat number; cancelled rows do not count toward that constraint.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – user who holds the claim.
//	ShowID     – show the seat belongs to.
//	SeatNumber – seat within 1..show.TotalSeats.
//	Status     – BOOKED or CANCELLED.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp (bumped on cancel).
type Booking struct {
	ID         uint64    `json:"id"`          // bookings.id
	UserID     uint64    `json:"user_id"`     // bookings.user_id
	ShowID     uint64    `json:"show_id"`     // bookings.show_id
	SeatNumber uint32    `json:"seat_number"` // bookings.seat_number
	Status     string    `json:"status"`      // bookings.status
	CreatedAt  time.Time `json:"created_at"`  // bookings.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // bookings.updated_at
}

// Active reports whether the booking currently occupies its seat.
func (b *Booking) Active() bool { return b.Status == StatusBooked }
