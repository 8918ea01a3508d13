package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireRole(allowed...)(next)(c)
	require.NoError(t, err)
	return rec
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRole(t, "ADMIN", "ADMIN").Code)
	assert.Equal(t, http.StatusOK, runRole(t, "CUSTOMER", "CUSTOMER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, "CUSTOMER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, nil, "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, 42, "ADMIN").Code)
}
