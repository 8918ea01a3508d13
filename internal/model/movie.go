package model

import "time"

// Movie duration bounds enforced by the catalog on write.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 600
)

// Movie represents a film that can be scheduled for shows.  Titles are
// unique across the catalog.
//
// Fields:
//
//	ID              – primary key identifier.
//	Title           – unique, non-empty movie title.
//	DurationMinutes – running time, 1..600 minutes.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Movie struct {
	ID              uint64    `json:"id"`               // movies.id
	Title           string    `json:"title"`            // movies.title
	DurationMinutes uint32    `json:"duration_minutes"` // movies.duration_minutes
	CreatedAt       time.Time `json:"created_at"`       // movies.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // movies.updated_at
}
