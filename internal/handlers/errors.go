// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/views"
)

// RenderError renders the error page with the given status code and message.
func RenderError(c echo.Context, code int, message string) error {
	ctx := c.Request().Context()

	var title string
	switch code {
	case http.StatusNotFound:
		title = i18n.T(ctx, "ErrorPageNotFound")
	case http.StatusForbidden:
		title = i18n.T(ctx, "ErrorPageForbidden")
	case http.StatusInternalServerError:
		title = i18n.T(ctx, "ErrorPageInternal")
	default:
		title = http.StatusText(code)
		if title == "" {
			title = i18n.T(ctx, "ErrorPageGeneric")
		}
	}

	return Render(c, code, views.Error(code, title, message))
}

// NotFound renders the 404 error page.
func NotFound(c echo.Context) error {
	return RenderError(c, http.StatusNotFound, i18n.T(c.Request().Context(), "ErrorNotFound"))
}

// InternalServerError renders the 500 error page.
func InternalServerError(c echo.Context) error {
	return RenderError(c, http.StatusInternalServerError, i18n.T(c.Request().Context(), "ErrorInternal"))
}

// ErrorHandler replaces echo's default error handler with rendered pages.
// JSON endpoints answer with their own error bodies before reaching it.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	ctx := c.Request().Context()
	switch {
	case code == http.StatusNotFound:
		message = i18n.T(ctx, "ErrorNotFound")
	case code >= http.StatusInternalServerError:
		slog.Error("request_error", "path", c.Path(), "error", err)
		message = i18n.T(ctx, "ErrorInternal")
	case message == "":
		message = http.StatusText(code)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := RenderError(c, code, message); rerr != nil {
		slog.Error("error_page_failed", "error", rerr)
	}
}
