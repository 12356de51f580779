// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import "time"

// SetClock replaces the time source of m.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}
