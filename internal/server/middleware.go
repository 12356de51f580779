// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/config"
	"codeberg.org/oliverandrich/nutrilab/internal/ctxkeys"
	"codeberg.org/oliverandrich/nutrilab/internal/handlers"
	"codeberg.org/oliverandrich/nutrilab/internal/htmx"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
)

func setupMiddleware(e *echo.Echo, d *deps) {
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", d.cfg.Server.MaxBodySize)))
	e.Use(mediaCacheHeaders(d.cfg.Media.URL))
	e.Use(csrfMiddleware(d.cfg))
	e.Use(csrfToContext())
	e.Use(i18nMiddleware())
	e.Use(loadUser(d.sessions, d.repo))
	e.Use(flashes(d.sessions))
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   cfg.SecureCookies(),
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), ctxkeys.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// loadUser resolves the session cookie to an active user. Stale sessions
// are cleared.
func loadUser(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := repo.GetUserByID(ctx, data.UserID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.SetCookie(sessions.Clear())
				return next(c)
			case err != nil:
				return fmt.Errorf("load session user: %w", err)
			case !user.IsActive, user.Username != data.Username:
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(auth.WithUser(ctx, user)))
			return next(c)
		}
	}
}

// flashes moves the flash messages of the request into the context. The
// flash cookie is dropped once a page is shown; redirects and responses
// setting a new flash keep it.
func flashes(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			list, present := sessions.ParseFlashes(c.Request())
			if !present {
				return next(c)
			}

			ctx := context.WithValue(c.Request().Context(), ctxkeys.Flashes{}, list)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Response().Before(func() {
				header := c.Response().Header()
				if c.Get(handlers.FlashWrittenKey) != nil ||
					header.Get(echo.HeaderLocation) != "" ||
					header.Get(htmx.HeaderRedirect) != "" {
					return
				}
				c.SetCookie(sessions.ClearFlashes())
			})
			return next(c)
		}
	}
}

// requireAuth sends anonymous visitors to the login page.
func requireAuth(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if auth.IsAuthenticated(ctx) {
				return next(c)
			}

			// The weight chart is fetched by script and expects JSON.
			if strings.HasPrefix(c.Path(), "/grafico_peso") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": i18n.T(ctx, "FlashLoginRequired")})
			}

			cookie, err := sessions.FlashCookie([]session.Flash{{
				Level:   session.LevelInfo,
				Message: i18n.T(ctx, "FlashLoginRequired"),
			}})
			if err == nil {
				c.SetCookie(cookie)
				c.Set(handlers.FlashWrittenKey, true)
			}
			return htmx.Redirect(c, "/auth/logar")
		}
	}
}

// authRateLimiter limits auth form posts per client IP.
func authRateLimiter(cfg *config.RateLimitConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.AuthRate),
		Burst:     cfg.AuthBurst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.Warn("rate_limited", "ip", identifier, "path", c.Path())
			return handlers.RenderError(c, http.StatusTooManyRequests, i18n.T(c.Request().Context(), "ErrorRateLimited"))
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return handlers.RenderError(c, http.StatusForbidden, i18n.T(c.Request().Context(), "ErrorForbidden"))
		},
	})
}

// mediaCacheHeaders marks uploaded images as immutable. Object keys are
// never reused.
func mediaCacheHeaders(prefix string) echo.MiddlewareFunc {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, prefix) {
				c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			return next(c)
		}
	}
}
