package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-show-booking/internal/model"
	"github.com/iliyamo/movie-show-booking/internal/repository"
	"github.com/iliyamo/movie-show-booking/internal/reservation"
)

// CatalogHandler bundles the admin-only catalog write endpoints. Range and
// uniqueness validation happens in the repositories at write time; the
// handler only binds, validates shape and maps errors.
type CatalogHandler struct {
	Movies *repository.MovieRepo
	Shows  *repository.ShowRepo
	Engine *reservation.Engine
}

// NewCatalogHandler constructs a CatalogHandler with the provided
// dependencies. All dependencies must be non-nil.
func NewCatalogHandler(movies *repository.MovieRepo, shows *repository.ShowRepo, engine *reservation.Engine) *CatalogHandler {
	if movies == nil || shows == nil || engine == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Movies: movies, Shows: shows, Engine: engine}
}

type movieReq struct {
	Title           string `json:"title" validate:"required,max=200"`
	DurationMinutes uint32 `json:"duration_minutes" validate:"required,min=1,max=600"`
}

type showReq struct {
	MovieID    uint64    `json:"movie_id" validate:"required"`
	ScreenName string    `json:"screen_name" validate:"required,max=100"`
	DateTime   time.Time `json:"date_time" validate:"required"`
	TotalSeats uint32    `json:"total_seats" validate:"required,min=1,max=1000"`
}

// CreateMovie handles POST /v1/admin/movies. Duplicate titles yield 409.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	m := &model.Movie{Title: req.Title, DurationMinutes: req.DurationMinutes}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie": m})
}

// UpdateMovie handles PUT /v1/admin/movies/:id.
func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
	movieID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	m := &model.Movie{ID: movieID, Title: req.Title, DurationMinutes: req.DurationMinutes}
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": m})
}

// CreateShow handles POST /v1/admin/shows. A show that would occupy an
// already-taken (screen, time) slot yields 409; an unknown movie 404.
func (h *CatalogHandler) CreateShow(c echo.Context) error {
	var req showReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s := &model.Show{
		MovieID:    req.MovieID,
		ScreenName: req.ScreenName,
		DateTime:   req.DateTime.UTC(),
		TotalSeats: req.TotalSeats,
	}
	if err := h.Shows.Create(c.Request().Context(), s); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"show": s})
}

// ListShowBookings handles GET /v1/admin/shows/:id/bookings. It returns
// the full ledger of a show, active and cancelled rows alike, newest
// first.
func (h *CatalogHandler) ListShowBookings(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	items, err := h.Engine.ListShowBookings(c.Request().Context(), showID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
