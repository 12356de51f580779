// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/htmx"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
)

// FlashWrittenKey marks a response that already carries a new flash cookie.
const FlashWrittenKey = "flash_written"

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// flasher sends redirects that carry a flash message to the next page.
type flasher struct {
	sessions *session.Manager
}

func (f flasher) redirect(c echo.Context, url, level, message string) error {
	cookie, err := f.sessions.FlashCookie([]session.Flash{{Level: level, Message: message}})
	if err != nil {
		slog.Error("flash_encode_failed", "error", err)
	} else {
		c.SetCookie(cookie)
		c.Set(FlashWrittenKey, true)
	}
	return htmx.Redirect(c, url)
}

func (f flasher) success(c echo.Context, url, messageID string) error {
	return f.redirect(c, url, session.LevelSuccess, i18n.T(c.Request().Context(), messageID))
}

func (f flasher) t(c echo.Context, messageID string) string {
	return i18n.T(c.Request().Context(), messageID)
}

// fail redirects with the translated message of err.
func (f flasher) fail(c echo.Context, url string, err error) error {
	return f.redirect(c, url, session.LevelError, errorMessage(c, err))
}

func i18nData(c echo.Context, messageID string, data map[string]any) string {
	return i18n.TData(c.Request().Context(), messageID, data)
}

// errorMessage translates err for the current request. Validation errors
// name the offending field.
func errorMessage(c echo.Context, err error) string {
	ctx := c.Request().Context()
	data := map[string]any{}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		data["Field"] = i18n.T(ctx, fieldMessageID(verr.Field))
	} else if apperr.MessageID(err) == "ErrorInternal" {
		slog.Error("request_failed", "path", c.Path(), "error", err)
	}
	return i18n.TData(ctx, apperr.MessageID(err), data)
}

// fieldMessageID maps a form field name to its translation key,
// "idade" to "FieldIdade".
func fieldMessageID(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return "Field"
	}
	return "Field" + string(unicode.ToUpper(r)) + field[size:]
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
