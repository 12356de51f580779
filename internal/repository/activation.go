// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/nutrilab/internal/database"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
)

// Token consumption outcomes besides ErrNotFound.
var (
	ErrTokenConsumed = errors.New("activation token already consumed")
	ErrTokenExpired  = errors.New("activation token expired")
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateActivationToken stores a pending token for a user.
// A nil expiresAt means the token never expires.
func (r *Repository) CreateActivationToken(ctx context.Context, userID int64, token string, expiresAt *time.Time) (*models.ActivationToken, error) {
	var t models.ActivationToken
	err := r.db.GetContext(ctx, &t,
		`INSERT INTO activation_tokens (token, user_id, expires_at) VALUES (?, ?, ?) RETURNING *`,
		token, userID, utcPtr(expiresAt))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetActivationToken retrieves a token by its value.
func (r *Repository) GetActivationToken(ctx context.Context, token string) (*models.ActivationToken, error) {
	var t models.ActivationToken
	if err := r.db.GetContext(ctx, &t, `SELECT * FROM activation_tokens WHERE token = ?`, token); err != nil {
		return nil, wrapError(err)
	}
	return &t, nil
}

// ConsumeActivationToken flips a pending token to consumed and activates its
// user in one transaction. Only one caller can win the consumed=0 guard; the
// others get ErrTokenConsumed. Unknown tokens return ErrNotFound and expired
// ones ErrTokenExpired, both without changing anything.
func (r *Repository) ConsumeActivationToken(ctx context.Context, token string, now time.Time) (int64, error) {
	now = now.UTC()
	var userID int64

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var t models.ActivationToken
		if err := tx.GetContext(ctx, &t, `SELECT * FROM activation_tokens WHERE token = ?`, token); err != nil {
			return wrapError(err)
		}
		if t.Consumed {
			return ErrTokenConsumed
		}
		if t.Expired(now) {
			return ErrTokenExpired
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE activation_tokens SET consumed = 1, consumed_at = ? WHERE token = ? AND consumed = 0`,
			now, token)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTokenConsumed
		}

		userID = t.UserID
		return activateUser(ctx, tx, t.UserID)
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
