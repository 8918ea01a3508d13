package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-show-booking/internal/repository"
	"github.com/iliyamo/movie-show-booking/internal/reservation"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT claims decode numbers as float64, so several representations
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// writeDomainError maps the typed outcomes of the reservation core onto
// stable HTTP status codes. Every error kind here is expected and scoped
// to the single operation; only ErrStorageUnavailable is retryable.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, reservation.ErrInvalidSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat number out of range"})
	case errors.Is(err, repository.ErrSeatConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateTitle):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie title already exists"})
	case errors.Is(err, repository.ErrShowSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "screen already booked at that time"})
	case errors.Is(err, repository.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable, retry later"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
