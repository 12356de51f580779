// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/config"
	"codeberg.org/oliverandrich/nutrilab/internal/handlers"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	authsvc "codeberg.org/oliverandrich/nutrilab/internal/services/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/storage"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type fakeMailer struct {
	links []string
	err   error
}

func (m *fakeMailer) SendActivation(_ context.Context, _, _, link string) error {
	if m.err != nil {
		return m.err
	}
	m.links = append(m.links, link)
	return nil
}

type fixture struct {
	e        *echo.Echo
	repo     *repository.Repository
	mailer   *fakeMailer
	sessions *session.Manager
	mediaDir string
	auth     *handlers.AuthHandlers
	clinic   *handlers.ClinicHandlers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "nutrilab_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	act := activation.NewService(repo, mailer, "http://localhost:8080", 0)
	authService := authsvc.NewService(repo, act)
	authService.SetHashCost(bcrypt.MinCost)

	mediaDir := t.TempDir()
	clinicService := clinic.NewService(repo, storage.NewLocalStore(mediaDir, "/media"))

	return &fixture{
		e:        echo.New(),
		repo:     repo,
		mailer:   mailer,
		sessions: sessions,
		mediaDir: mediaDir,
		auth:     handlers.NewAuth(authService, act, sessions),
		clinic:   handlers.NewClinic(clinicService, sessions),
	}
}

// request builds a context for method and target. A non-nil user is put
// into the request context the way the auth middleware does.
func (f *fixture) request(method, target string, body io.Reader, contentType string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	return f.e.NewContext(req, rec), rec
}

func (f *fixture) get(target string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	return f.request(http.MethodGet, target, nil, "", user)
}

func (f *fixture) postForm(target string, form url.Values, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	return f.request(http.MethodPost, target, strings.NewReader(form.Encode()), echo.MIMEApplicationForm, user)
}

// withParam sets a single path parameter on c.
func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// flashes decodes the flash cookie set on the response.
func (f *fixture) flashes(t *testing.T, rec *httptest.ResponseRecorder) []session.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	flashes, ok := f.sessions.ParseFlashes(req)
	require.True(t, ok, "no flash cookie set")
	return flashes
}

func (f *fixture) flashMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	flashes := f.flashes(t, rec)
	require.Len(t, flashes, 1)
	return flashes[0].Message
}
