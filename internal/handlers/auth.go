// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	authsvc "codeberg.org/oliverandrich/nutrilab/internal/services/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/views"
)

const (
	loginPath    = "/auth/logar"
	registerPath = "/auth/cadastro"
	afterLogin   = "/pacientes"
)

// AuthHandlers contains handlers for authentication.
type AuthHandlers struct {
	flasher
	auth       *authsvc.Service
	activation *activation.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *authsvc.Service, act *activation.Service, sess *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		flasher:    flasher{sessions: sess},
		auth:       svc,
		activation: act,
	}
}

// RegisterPage renders the registration page.
func (h *AuthHandlers) RegisterPage(c echo.Context) error {
	if auth.IsAuthenticated(c.Request().Context()) {
		return c.Redirect(http.StatusSeeOther, afterLogin)
	}
	return Render(c, http.StatusOK, views.Register(h.auth.PasswordValidator().HelpMessageIDs()))
}

// Register creates an inactive account and sends the activation email.
func (h *AuthHandlers) Register(c echo.Context) error {
	if auth.IsAuthenticated(c.Request().Context()) {
		return c.Redirect(http.StatusSeeOther, afterLogin)
	}

	var params authsvc.RegisterParams
	if err := c.Bind(&params); err != nil {
		return h.fail(c, registerPath, apperr.Validation("usuario", "ValidationInvalid"))
	}

	if _, err := h.auth.Register(c.Request().Context(), params); err != nil {
		return h.fail(c, registerPath, err)
	}

	return h.success(c, loginPath, "FlashRegistered")
}

// LoginPage renders the login page.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	if auth.IsAuthenticated(c.Request().Context()) {
		return c.Redirect(http.StatusSeeOther, afterLogin)
	}
	return Render(c, http.StatusOK, views.Login())
}

// Login checks the credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	if auth.IsAuthenticated(ctx) {
		return c.Redirect(http.StatusSeeOther, afterLogin)
	}

	user, err := h.auth.Login(ctx, c.FormValue("usuario"), c.FormValue("senha"))
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return h.redirect(c, loginPath, session.LevelError, h.t(c, "FlashInvalidLogin"))
	case errors.Is(err, authsvc.ErrInactive):
		return h.redirect(c, loginPath, session.LevelInfo, h.t(c, "FlashInactive"))
	case err != nil:
		return h.fail(c, loginPath, err)
	}

	cookie, err := h.sessions.Create(user.ID, user.Username)
	if err != nil {
		slog.Error("session_create_failed", "user_id", user.ID, "error", err)
		return h.fail(c, loginPath, err)
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, afterLogin)
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return h.redirect(c, loginPath, session.LevelInfo, h.t(c, "FlashLoggedOut"))
}

// Activate consumes an activation token. Every outcome lands on the login page.
func (h *AuthHandlers) Activate(c echo.Context) error {
	err := h.activation.ConsumeToken(c.Request().Context(), c.Param("token"))
	switch {
	case err == nil:
		return h.success(c, loginPath, "FlashActivated")
	case errors.Is(err, apperr.ErrNotFound):
		return h.redirect(c, loginPath, session.LevelError, h.t(c, "FlashTokenNotFound"))
	case errors.Is(err, apperr.ErrAlreadyUsed):
		return h.redirect(c, loginPath, session.LevelError, h.t(c, "FlashTokenUsed"))
	case errors.Is(err, activation.ErrExpired):
		return h.redirect(c, loginPath, session.LevelError, h.t(c, "FlashTokenExpired"))
	default:
		return h.fail(c, loginPath, err)
	}
}
