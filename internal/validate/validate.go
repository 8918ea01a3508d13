// Package validate wires go-playground/validator into Echo so handlers can
// call c.Validate on bound request bodies.
package validate

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts a validator.Validate instance to Echo's
// Validator interface.
type RequestValidator struct {
	validate *validator.Validate
}

// New returns a RequestValidator ready to be assigned to echo.Echo.Validator.
func New() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags on the bound request body and converts
// failures into a 400 response naming the first offending field.
func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return echo.NewHTTPError(http.StatusBadRequest,
			"invalid field "+fe.Field()+": failed '"+fe.Tag()+"' constraint")
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}
