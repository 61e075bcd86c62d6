package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"dispatch/internal/pkg/errs"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// StatusOf maps an error class onto its HTTP status.
func StatusOf(code errs.Code) int {
	switch code {
	case errs.CodeInvalidArgument:
		return http.StatusBadRequest
	case errs.CodeUnauthenticated:
		return http.StatusUnauthorized
	case errs.CodePermissionDenied:
		return http.StatusForbidden
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeFailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the class of err. Internal errors are logged for operators
// and reach the caller only as a generic message.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	code := errs.CodeOf(err)
	if code == errs.CodeInternal {
		logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return c.JSON(StatusOf(code), Error{Code: code, Message: errs.PublicMessage(err)})
}

// errorHandler renders errors returned by middleware and echo itself (unknown route,
// wrong method) in the same shape as handler errors.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			body := Error{Code: codeOfStatus(he.Code), Message: http.StatusText(he.Code)}
			if msg, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
				body.Message = msg
			}
			_ = c.JSON(he.Code, body)
			return
		}
		_ = writeError(c, logger, err)
	}
}

func codeOfStatus(status int) errs.Code {
	switch status {
	case http.StatusNotFound:
		return errs.CodeNotFound
	case http.StatusBadRequest, http.StatusMethodNotAllowed,
		http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errs.CodeInvalidArgument
	case http.StatusUnauthorized:
		return errs.CodeUnauthenticated
	case http.StatusForbidden:
		return errs.CodePermissionDenied
	case http.StatusConflict:
		return errs.CodeFailedPrecondition
	default:
		return errs.CodeInternal
	}
}
