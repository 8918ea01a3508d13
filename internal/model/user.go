package model

import "time"

// Roles recognised by the API.  CUSTOMER can browse and book; ADMIN can
// additionally manage the movie/show catalog.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Handlers define separate response types; this struct is used by
// the repository layer.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
