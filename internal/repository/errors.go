// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation engine and handlers to distinguish between failure
// scenarios without inspecting driver errors. For example, ErrSeatConflict
// signals that a seat is already actively booked, while
// ErrStorageUnavailable marks transient connectivity failures that are
// safe to retry.
package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSeatConflict is returned when a booking cannot be created because the
// seat already has an active booking for the show. This covers both the
// pre-insert check and races resolved by the unique index at insert time.
// Handlers should translate this into an HTTP 409 response. Retrying will
// deterministically fail again while the conflicting booking stays active.
var ErrSeatConflict = errors.New("seat already booked")

// ErrAlreadyCancelled is returned when cancelling a booking that has
// already been cancelled. Cancellation is not idempotent-success; callers
// always see this error on the second attempt.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrValidation is returned when a catalog field is outside its documented
// range. Wrapped messages carry the offending field.
var ErrValidation = errors.New("validation failed")

// ErrStorageUnavailable marks transient storage failures (connectivity,
// bad connections). Unlike the other sentinels it is safe to retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// mysqlErrDupEntry is the MySQL error number for a duplicate key violation.
const mysqlErrDupEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}

// wrapStorage classifies driver-level connectivity failures as
// ErrStorageUnavailable and passes every other error through unchanged.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.As(err, &ne) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}
