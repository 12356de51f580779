// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx helps handlers answer htmx requests.
package htmx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Request headers.
const (
	HeaderRequest = "HX-Request"
	HeaderBoosted = "HX-Boosted"
)

// Response headers.
const (
	HeaderRedirect = "HX-Redirect"
)

// IsRequest reports whether r was sent by htmx.
func IsRequest(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsBoosted reports whether r comes from a boosted link or form.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderBoosted) == "true"
}

// Redirect sends the client to url. Plain htmx requests would swap the
// target page into an element, so they get HX-Redirect for a full
// navigation instead of a 303.
func Redirect(c echo.Context, url string) error {
	r := c.Request()
	if IsRequest(r) && !IsBoosted(r) {
		c.Response().Header().Set(HeaderRedirect, url)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, url)
}
