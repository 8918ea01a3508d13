package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-show-booking/internal/model"
	"github.com/iliyamo/movie-show-booking/internal/repository"
)

// BrowseHandler serves the read-only catalog endpoints: listing movies and
// the shows of a movie together with derived seat availability. The
// availability numbers are recomputed from the booking ledger on every
// request; nothing is stored or cached here (the optional Redis response
// cache in front is bounded by its TTL).
type BrowseHandler struct {
	Movies   *repository.MovieRepo
	Shows    *repository.ShowRepo
	Bookings *repository.BookingRepo
}

// NewBrowseHandler constructs a BrowseHandler with the provided
// repositories. All dependencies must be non-nil.
func NewBrowseHandler(movies *repository.MovieRepo, shows *repository.ShowRepo, bookings *repository.BookingRepo) *BrowseHandler {
	if movies == nil || shows == nil || bookings == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Movies: movies, Shows: shows, Bookings: bookings}
}

// showView is the wire representation of a show enriched with the derived
// availability values.
type showView struct {
	model.Show
	AvailableSeats int  `json:"available_seats"`
	IsFullyBooked  bool `json:"is_fully_booked"`
}

// ListMovies handles GET /v1/movies. Movies are ordered by title.
func (h *BrowseHandler) ListMovies(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

// ListShowsByMovie handles GET /v1/movies/:id/shows. Each show carries
// available_seats and is_fully_booked computed from the ledger in a single
// aggregated query. An unknown movie yields 404.
func (h *BrowseHandler) ListShowsByMovie(c echo.Context) error {
	movieID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, movieID); err != nil {
		return writeDomainError(c, err)
	}
	shows, err := h.Shows.ListByMovie(ctx, movieID)
	if err != nil {
		return writeDomainError(c, err)
	}
	ids := make([]uint64, 0, len(shows))
	for _, s := range shows {
		ids = append(ids, s.ID)
	}
	counts, err := h.Bookings.CountActiveByShows(ctx, ids)
	if err != nil {
		return writeDomainError(c, err)
	}
	views := make([]showView, 0, len(shows))
	for _, s := range shows {
		avail := int(s.TotalSeats) - counts[s.ID]
		views = append(views, showView{
			Show:           s,
			AvailableSeats: avail,
			IsFullyBooked:  avail <= 0,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}
