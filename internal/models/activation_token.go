// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ActivationToken binds a one-time activation value to a user.
// Consumed flips from false to true exactly once.
type ActivationToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64      `db:"id" json:"id"`
	Token      string     `db:"token" json:"-"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Consumed   bool       `db:"consumed" json:"consumed"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	ConsumedAt *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token has an expiry that lies before now.
func (t *ActivationToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
