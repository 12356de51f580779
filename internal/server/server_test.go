// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/config"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080, BaseURL: "http://localhost:8080", MaxBodySize: 10},
		Log:    config.LogConfig{Level: "error", Format: "text"},
		Session: config.SessionConfig{
			CookieName: "nutrilab_session",
			MaxAge:     3600,
			HashKey:    "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		},
		SMTP:      config.SMTPConfig{From: "noreply@nutrilab.test"},
		Media:     config.MediaConfig{Backend: "local", Dir: t.TempDir(), URL: "/media"},
		RateLimit: config.RateLimitConfig{AuthRate: 100, AuthBurst: 100},
	}
}

// client is a browser stand-in that keeps cookies and does not follow redirects.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	d, err := newDeps(context.Background(), testConfig(t), repo)
	require.NoError(t, err)

	srv := httptest.NewServer(newEcho(d))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:    t,
		base: srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *client) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	resp, err := c.http.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	_ = resp.Body.Close()
	return resp
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// csrf loads page and returns the token of its form.
func (c *client) csrf(page string) string {
	c.t.Helper()
	_, body := c.get(page)
	m := csrfInput.FindStringSubmatch(body)
	require.Len(c.t, m, 2, "no csrf token on %s", page)
	return m[1]
}

func TestHealthRoute(t *testing.T) {
	c := newClient(t)

	resp, body := c.get("/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestProtectedRoutesRedirect(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/pacientes", "/pacientes/", "/dados_paciente", "/plano_alimentar/1"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/auth/logar", resp.Header.Get("Location"), path)
	}
}

func TestUnknownRoute(t *testing.T) {
	c := newClient(t)

	resp, body := c.get("/nope")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Página não encontrada")
}

func TestPostWithForgedCSRFIsRejected(t *testing.T) {
	c := newClient(t)

	resp := c.post("/auth/logar", url.Values{"csrf_token": {"forged"}, "usuario": {"andre"}, "senha": {"Andre10"}})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegisterActivateLogin(t *testing.T) {
	c := newClient(t)

	resp := c.post("/auth/cadastro", url.Values{
		"csrf_token":      {c.csrf("/auth/cadastro")},
		"usuario":         {"andre"},
		"email":           {"andre@x.com"},
		"senha":           {"Andre10"},
		"confirmar_senha": {"Andre10"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth/logar", resp.Header.Get("Location"))

	_, body := c.get("/auth/logar")
	assert.Contains(t, body, "Usuário cadastrado com sucesso!")

	login := func() *http.Response {
		return c.post("/auth/logar", url.Values{
			"csrf_token": {c.csrf("/auth/logar")},
			"usuario":    {"andre"},
			"senha":      {"Andre10"},
		})
	}

	resp = login()
	assert.Equal(t, "/auth/logar", resp.Header.Get("Location"))

	token := activation.HashToken("andre", "andre@x.com")
	resp, _ = c.get("/auth/ativar_conta/" + token)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get("/auth/logar")
	assert.Contains(t, body, "Conta ativada com sucesso")

	resp, _ = c.get("/auth/ativar_conta/" + token)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = c.get("/auth/logar")
	assert.Contains(t, body, "Esse token já foi usado")

	resp = login()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/pacientes", resp.Header.Get("Location"))

	resp, body = c.get("/pacientes")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "andre")
	assert.True(t, strings.Contains(body, `action="/pacientes"`))

	resp = c.post("/pacientes", url.Values{
		"csrf_token": {c.csrf("/pacientes")},
		"nome":       {"Maria"},
		"sexo":       {"F"},
		"idade":      {"42"},
		"email":      {"maria@example.com"},
		"telefone":   {"11988887777"},
	})
	assert.Equal(t, "/pacientes", resp.Header.Get("Location"))

	_, body = c.get("/pacientes")
	assert.Contains(t, body, "Paciente cadastrado com sucesso")
	assert.Contains(t, body, "maria@example.com")

	resp, _ = c.get("/auth/sair")
	assert.Equal(t, "/auth/logar", resp.Header.Get("Location"))
	resp, _ = c.get("/pacientes")
	assert.Equal(t, "/auth/logar", resp.Header.Get("Location"))
}
