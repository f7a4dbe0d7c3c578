package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/usecase"
)

// ErrorBody is the envelope every failed request gets. Codes form a closed
// set so clients can switch on them without parsing messages.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func OK(c echo.Context, content any) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": content})
}

func Created(c echo.Context, content any) error {
	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": content})
}

// Error maps a domain error onto status + code. Unknown errors are logged
// with their cause and rendered as an opaque 500.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorBody{Error: err.Error(), Code: "unauthenticated"})
	case errors.Is(err, domain.ErrSubscriptionRequired):
		return c.JSON(http.StatusForbidden, ErrorBody{Error: err.Error(), Code: "subscription_required"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorBody{Error: err.Error(), Code: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorBody{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, ErrorBody{Error: err.Error(), Code: "illegal_transition"})
	case errors.Is(err, domain.ErrThrottled):
		return c.JSON(http.StatusTooManyRequests, ErrorBody{Error: err.Error(), Code: "throttled"})
	case errors.Is(err, usecase.ErrPaymentDeclined):
		return c.JSON(http.StatusPaymentRequired, ErrorBody{Error: err.Error(), Code: "payment_declined"})
	case errors.Is(err, domain.ErrDependencyFailure):
		// The cause stays in the log, never in the body.
		slog.ErrorContext(c.Request().Context(), "dependency failure",
			slog.String("error", err.Error()),
		)
		return c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: err.Error(), Code: "dependency_failure"})
	}

	slog.ErrorContext(c.Request().Context(), "unhandled error",
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal error", Code: "internal"})
}
