package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes a payload at HTTP 200. Degraded pipeline results use
// the same status code; the ok flag inside the payload carries the outcome.
func SuccessResponse(c echo.Context, payload interface{}) error {
	return c.JSON(http.StatusOK, payload)
}

// BadRequestResponse writes a validation failure. Malformed input is the only
// condition reported with a non-200 status.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{
		OK:      false,
		Error:   "invalid request",
		Details: errs,
	})
}

// TooManyRequestsResponse writes a throttling rejection.
func TooManyRequestsResponse(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, ErrorBody{
		OK:    false,
		Error: "rate limit exceeded",
	})
}

// InternalServerErrorResponse writes a last-resort failure. Pipeline errors
// are expected to surface as degraded 200 payloads before reaching this.
func InternalServerErrorResponse(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ErrorBody{
		OK:    false,
		Error: "something went wrong",
	})
}
