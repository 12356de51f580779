// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"net/http"
)

// Flash levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// flashMaxAge bounds how long an unread flash survives.
const flashMaxAge = 300

func (m *Manager) flashCookieName() string {
	return m.cookieName + "_flash"
}

// FlashCookie returns a cookie carrying the flashes.
func (m *Manager) FlashCookie(flashes []Flash) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.flashCookieName(), flashes)
	if err != nil {
		return nil, err
	}
	return m.cookie(m.flashCookieName(), value, flashMaxAge), nil
}

// ParseFlashes returns the flashes sent with the request and whether a
// flash cookie was present at all.
func (m *Manager) ParseFlashes(r *http.Request) ([]Flash, bool) {
	cookie, err := r.Cookie(m.flashCookieName())
	if err != nil {
		return nil, false
	}
	var flashes []Flash
	if err := m.codec.Decode(m.flashCookieName(), cookie.Value, &flashes); err != nil {
		return nil, true
	}
	return flashes, true
}

// ClearFlashes returns a cookie that removes the flashes.
func (m *Manager) ClearFlashes() *http.Cookie {
	return m.cookie(m.flashCookieName(), "", -1)
}
