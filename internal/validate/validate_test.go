package validate

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleReq struct {
	Title string `json:"title" validate:"required,max=5"`
	Count uint32 `json:"count" validate:"required,min=1,max=10"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&sampleReq{Title: "abc", Count: 3}))
}

func TestValidateFailure(t *testing.T) {
	v := New()

	err := v.Validate(&sampleReq{Title: "", Count: 3})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "Title")

	err = v.Validate(&sampleReq{Title: "abc", Count: 11})
	require.Error(t, err)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "Count")
}
