package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-booking/internal/utils"
)

func runJWT(t *testing.T, secret, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := JWTAuth(secret)(next)(c)
	require.NoError(t, err)
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	const secret = "test-secret"
	tok, err := utils.NewAccessToken(secret, 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec, c := runJWT(t, secret, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	// Claims decode numbers as float64.
	assert.Equal(t, float64(7), c.Get("user_id"))
	assert.Equal(t, "CUSTOMER", c.Get("role"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "test-secret", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec, _ := runJWT(t, "test-secret", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, _ := runJWT(t, "test-secret", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
