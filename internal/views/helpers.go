// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"strconv"
	"time"

	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/ctxkeys"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// Flashes returns the flash messages of the request.
func Flashes(ctx context.Context) []session.Flash {
	flashes, _ := ctx.Value(ctxkeys.Flashes{}).([]session.Flash)
	return flashes
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// TPlural translates a message in the plural form for n.
func TPlural(ctx context.Context, messageID string, n int) string {
	return i18n.TPlural(ctx, messageID, n)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// GetUser returns the logged-in practitioner, or nil.
func GetUser(ctx context.Context) *models.User {
	return auth.GetUser(ctx)
}

func formatTime(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func patientPath(base string, id int64) string {
	return base + strconv.FormatInt(id, 10)
}
