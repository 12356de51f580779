// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package activation issues and consumes the one-time tokens that activate
// newly registered accounts.
//
// A token is PENDING until it is consumed, then CONSUMED for good.
// Consumption flips the token and activates the user in a single
// transaction, so concurrent visits of the same link activate at most once.
package activation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
)

var (
	// ErrIssue wraps failures to persist a token.
	ErrIssue = errors.New("activation token could not be issued")
	// ErrDispatch wraps failures to send the activation email.
	ErrDispatch = errors.New("activation email could not be sent")
	// ErrExpired is returned for tokens past their expiry.
	ErrExpired = errors.New("activation token expired")
)

// Mailer delivers activation emails.
type Mailer interface {
	SendActivation(ctx context.Context, to, username, link string) error
}

// Issued describes a token that was persisted and emailed.
type Issued struct {
	Token     string
	Link      string
	ExpiresAt *time.Time
}

// Service issues and consumes activation tokens.
type Service struct {
	repo    *repository.Repository
	mailer  Mailer
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewService creates an activation service. A zero ttl issues tokens
// that never expire.
func NewService(repo *repository.Repository, mailer Mailer, baseURL string, ttl time.Duration) *Service {
	return &Service{
		repo:    repo,
		mailer:  mailer,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// HashToken derives the token for a registration: hex(sha256(username + email)).
// The value is reproducible, not secret.
func HashToken(username, email string) string {
	sum := sha256.Sum256([]byte(username + email))
	return hex.EncodeToString(sum[:])
}

// Link returns the activation URL for a token.
func (s *Service) Link(token string) string {
	return s.baseURL + "/auth/ativar_conta/" + token
}

// IssueToken stores a pending token for a freshly created user and emails
// the activation link. Storage failures wrap ErrIssue, delivery failures
// wrap ErrDispatch.
func (s *Service) IssueToken(ctx context.Context, user *models.User) (*Issued, error) {
	token := HashToken(user.Username, user.Email)

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := s.now().UTC().Add(s.ttl)
		expiresAt = &t
	}

	if _, err := s.repo.CreateActivationToken(ctx, user.ID, token, expiresAt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIssue, err)
	}

	issued := &Issued{Token: token, Link: s.Link(token), ExpiresAt: expiresAt}

	if err := s.mailer.SendActivation(ctx, user.Email, user.Username, issued.Link); err != nil {
		slog.Error("activation_dispatch_failed", "user_id", user.ID, "error", err)
		return issued, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	slog.Info("activation_issued", "user_id", user.ID)
	return issued, nil
}

// ConsumeToken activates the account bound to token. It returns
// apperr.ErrNotFound for unknown tokens, apperr.ErrAlreadyUsed for consumed
// ones and ErrExpired for expired ones. None of these change any record.
func (s *Service) ConsumeToken(ctx context.Context, token string) error {
	userID, err := s.repo.ConsumeActivationToken(ctx, token, s.now())
	switch {
	case err == nil:
		slog.Info("activation_consumed", "user_id", userID)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		slog.Warn("activation_failed", "reason", "not_found")
		return fmt.Errorf("activation token: %w", apperr.ErrNotFound)
	case errors.Is(err, repository.ErrTokenConsumed):
		slog.Warn("activation_failed", "reason", "already_used")
		return fmt.Errorf("activation token: %w", apperr.ErrAlreadyUsed)
	case errors.Is(err, repository.ErrTokenExpired):
		slog.Warn("activation_failed", "reason", "expired")
		return ErrExpired
	default:
		return fmt.Errorf("consume activation token: %w: %w", apperr.ErrInternal, err)
	}
}
