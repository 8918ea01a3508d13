package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-show-booking/internal/queue"
	"github.com/iliyamo/movie-show-booking/internal/reservation"
	"github.com/iliyamo/movie-show-booking/internal/service"
)

// BookingHandler exposes the reservation engine over HTTP. All methods
// assume JWT authentication has been performed by middleware and may return
// 401 Unauthorized if the user ID cannot be extracted from the context.
// The handler itself holds no booking logic: validation order, conflict
// detection and the status machine live in the engine.
type BookingHandler struct {
	Engine *reservation.Engine
}

// NewBookingHandler constructs a BookingHandler. The engine must be non-nil.
func NewBookingHandler(engine *reservation.Engine) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine}
}

type createBookingReq struct {
	SeatNumber uint32 `json:"seat_number"`
}

// Create handles POST /v1/shows/:id/bookings. It books one numbered seat
// on the show for the authenticated user. Responses: 201 with the booking,
// 404 for an unknown show, 400 for a seat outside 1..total_seats and 409
// when the seat is already actively booked (including races resolved at
// insert time).
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Engine.CreateBooking(c.Request().Context(), userID, showID, req.SeatNumber)
	if err != nil {
		return writeDomainError(c, err)
	}

	// Event delivery is best effort; the booking is already durable.
	_ = service.PublishBookingEvent(c.Request().Context(), queue.BookingEvent{
		Type:       queue.EventBookingCreated,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ShowID:     b.ShowID,
		SeatNumber: b.SeatNumber,
		Status:     b.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"booking": b})
}

// Cancel handles DELETE /v1/bookings/:id. Only the owner may cancel;
// cancelling an already-cancelled booking returns 409, never silent
// success. The freed seat becomes bookable again through a new booking
// row.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	b, err := h.Engine.CancelBooking(c.Request().Context(), userID, bookingID)
	if err != nil {
		return writeDomainError(c, err)
	}

	_ = service.PublishBookingEvent(c.Request().Context(), queue.BookingEvent{
		Type:       queue.EventBookingCancelled,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ShowID:     b.ShowID,
		SeatNumber: b.SeatNumber,
		Status:     b.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Get handles GET /v1/bookings/:id. Bookings owned by other users are
// reported as 404 so their existence is not leaked.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Engine.GetBookingForUser(c.Request().Context(), userID, bookingID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// ListMine handles GET /v1/my-bookings. It returns all bookings of the
// authenticated user, newest first; cancelled bookings are included as
// history.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Engine.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
