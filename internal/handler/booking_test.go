package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-booking/internal/model"
	"github.com/iliyamo/movie-show-booking/internal/repository"
	"github.com/iliyamo/movie-show-booking/internal/reservation"
	"github.com/iliyamo/movie-show-booking/internal/validate"
)

// memCatalog and memLedger are in-memory stands-ins for the show and
// booking repositories so handler tests run without a database.
type memCatalog struct {
	shows map[uint64]model.Show
}

func (m *memCatalog) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	s, ok := m.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &s, nil
}

type memLedger struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Booking
}

func newMemLedger() *memLedger { return &memLedger{rows: make(map[uint64]model.Booking)} }

func (m *memLedger) FindActive(_ context.Context, showID uint64, seat uint32) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.ShowID == showID && b.SeatNumber == seat && b.Status == model.StatusBooked {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memLedger) Insert(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.ShowID == b.ShowID && existing.SeatNumber == b.SeatNumber && existing.Status == model.StatusBooked {
			return repository.ErrSeatConflict
		}
	}
	m.nextID++
	b.ID = m.nextID
	m.rows[b.ID] = *b
	return nil
}

func (m *memLedger) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := b
	return &cp, nil
}

func (m *memLedger) MarkCancelled(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status != model.StatusBooked {
		return nil, repository.ErrAlreadyCancelled
	}
	b.Status = model.StatusCancelled
	m.rows[id] = b
	cp := b
	return &cp, nil
}

func (m *memLedger) CountActive(_ context.Context, showID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.rows {
		if b.ShowID == showID && b.Status == model.StatusBooked {
			n++
		}
	}
	return n, nil
}

func (m *memLedger) ListForShow(_ context.Context, showID uint64) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range m.rows {
		if b.ShowID == showID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memLedger) ListForUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range m.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func newBookingTestHandler(shows ...model.Show) *BookingHandler {
	cat := &memCatalog{shows: make(map[uint64]model.Show)}
	for _, s := range shows {
		cat.shows[s.ID] = s
	}
	return NewBookingHandler(reservation.NewEngine(cat, newMemLedger()))
}

func newTestContext(t *testing.T, method, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validate.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestBookingCreate(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seat_number":5`)
	assert.Contains(t, rec.Body.String(), `"status":"BOOKED"`)
}

func TestBookingCreateUnknownShow(t *testing.T) {
	h := newBookingTestHandler()

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingCreateSeatOutOfRange(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	for _, body := range []string{`{"seat_number":0}`, `{"seat_number":51}`} {
		c, rec := newTestContext(t, http.MethodPost, body, 7)
		c.SetPath("/v1/shows/:id/bookings")
		c.SetParamNames("id")
		c.SetParamValues("1")

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestBookingCreateConflict(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, `{"seat_number":5}`, 8)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingCreateUnauthenticated(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seat_number":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingCancelFlow(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Stranger cannot cancel.
	c, rec = newTestContext(t, http.MethodDelete, "", 8)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner cancels.
	c, rec = newTestContext(t, http.MethodDelete, "", 7)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)

	// Repeat cancel conflicts.
	c, rec = newTestContext(t, http.MethodDelete, "", 7)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingGetHidesForeign(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newTestContext(t, http.MethodGet, "", 8)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(t, http.MethodGet, "", 7)
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingListMine(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	for _, seat := range []string{`{"seat_number":1}`, `{"seat_number":2}`} {
		c, rec := newTestContext(t, http.MethodPost, seat, 7)
		c.SetPath("/v1/shows/:id/bookings")
		c.SetParamNames("id")
		c.SetParamValues("1")
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	c, rec := newTestContext(t, http.MethodGet, "", 7)
	c.SetPath("/v1/my-bookings")
	require.NoError(t, h.ListMine(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seat_number":1`)
	assert.Contains(t, rec.Body.String(), `"seat_number":2`)

	// Other users see an empty history.
	c, rec = newTestContext(t, http.MethodGet, "", 8)
	c.SetPath("/v1/my-bookings")
	require.NoError(t, h.ListMine(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestBookingInvalidPathID(t *testing.T) {
	h := newBookingTestHandler(model.Show{ID: 1, TotalSeats: 50})

	c, rec := newTestContext(t, http.MethodPost, `{"seat_number":5}`, 7)
	c.SetPath("/v1/shows/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
