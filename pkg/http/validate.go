package http

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"NFTPredict/pkg/validate"
)

// ReadAndValidateRequest binds the body into req, applies defaults and validates it.
// It returns nil or a []ValidationError suitable for a 400 response.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.DefaultsAndStruct(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fes validate.Errors
	if errors.As(err, &fes) {
		out := make([]ValidationError, 0, len(fes))
		for _, fe := range fes {
			out = append(out, ValidationError{
				Code:    fe.Code,
				Field:   fe.Field,
				Message: fe.Message,
				Params:  fe.Params,
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_BAD_REQUEST", Message: fmt.Sprintf("%v", he.Message)}}
	}

	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}
