// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/htmx"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func registerForm() url.Values {
	return url.Values{
		"usuario":         {"andre"},
		"email":           {"andre@x.com"},
		"senha":           {"Andre10"},
		"confirmar_senha": {"Andre10"},
	}
}

func TestRegisterPage(t *testing.T) {
	f := newFixture(t)
	c, rec := f.get("/auth/cadastro", nil)

	require.NoError(t, f.auth.RegisterPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="confirmar_senha"`)
	assert.Contains(t, rec.Body.String(), "A senha deve ter pelo menos 6 caracteres")
}

func TestRegisterPage_AuthenticatedRedirects(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewActiveTestUser(t, f.repo, "andre")
	c, rec := f.get("/auth/cadastro", user)

	require.NoError(t, f.auth.RegisterPage(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pacientes", rec.Header().Get(echo.HeaderLocation))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	c, rec := f.postForm("/auth/cadastro", registerForm(), nil)

	require.NoError(t, f.auth.Register(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/logar", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Usuário cadastrado com sucesso!", f.flashMessage(t, rec))

	user, err := f.repo.GetUserByUsername(context.Background(), "andre")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	require.Len(t, f.mailer.links, 1)
	assert.Equal(t, "http://localhost:8080/auth/ativar_conta/"+activation.HashToken("andre", "andre@x.com"), f.mailer.links[0])
}

func TestRegister_ValidationFlash(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		message string
	}{
		{
			name:    "password mismatch",
			mutate:  func(v url.Values) { v.Set("confirmar_senha", "Andre11") },
			message: "As senhas não coincidem",
		},
		{
			name:    "missing email",
			mutate:  func(v url.Values) { v.Del("email") },
			message: "Preencha todos os campos",
		},
		{
			name:    "invalid email",
			mutate:  func(v url.Values) { v.Set("email", "andre") },
			message: "E-mail: digite um e-mail válido",
		},
		{
			name: "weak password",
			mutate: func(v url.Values) {
				v.Set("senha", "andre10")
				v.Set("confirmar_senha", "andre10")
			},
			message: "A senha deve conter uma letra maiúscula",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			form := registerForm()
			tt.mutate(form)
			c, rec := f.postForm("/auth/cadastro", form, nil)

			require.NoError(t, f.auth.Register(c))

			assert.Equal(t, "/auth/cadastro", rec.Header().Get(echo.HeaderLocation))
			assert.Equal(t, tt.message, f.flashMessage(t, rec))
			exists, err := f.repo.UsernameExists(context.Background(), "andre")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestRegister_MailFailureCompensates(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	c, rec := f.postForm("/auth/cadastro", registerForm(), nil)

	require.NoError(t, f.auth.Register(c))

	assert.Equal(t, "/auth/cadastro", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Erro interno do sistema", f.flashMessage(t, rec))
	_, err := f.repo.GetUserByUsername(context.Background(), "andre")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t)
	c, rec := f.get("/auth/logar", nil)

	require.NoError(t, f.auth.LoginPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/auth/logar"`)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewActiveTestUser(t, f.repo, "andre")
	c, rec := f.postForm("/auth/logar", url.Values{"usuario": {"andre"}, "senha": {testutil.TestPassword}}, nil)

	require.NoError(t, f.auth.Login(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pacientes", rec.Header().Get(echo.HeaderLocation))

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	data, err := f.sessions.Parse(req)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, user.ID, data.UserID)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		active   bool
		message  string
		level    string
	}{
		{"wrong password", "andre", "Wrong99", true, "Nome de usuário ou senha inválidos.", session.LevelError},
		{"unknown user", "nobody", testutil.TestPassword, true, "Nome de usuário ou senha inválidos.", session.LevelError},
		{"inactive", "andre", testutil.TestPassword, false, "Sua conta ainda não foi ativada. Verifique seu e-mail.", session.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.active {
				testutil.NewActiveTestUser(t, f.repo, "andre")
			} else {
				testutil.NewTestUser(t, f.repo, "andre")
			}
			c, rec := f.postForm("/auth/logar", url.Values{"usuario": {tt.username}, "senha": {tt.password}}, nil)

			require.NoError(t, f.auth.Login(c))

			assert.Equal(t, "/auth/logar", rec.Header().Get(echo.HeaderLocation))
			flashes := f.flashes(t, rec)
			require.Len(t, flashes, 1)
			assert.Equal(t, tt.message, flashes[0].Message)
			assert.Equal(t, tt.level, flashes[0].Level)
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewActiveTestUser(t, f.repo, "andre")
	c, rec := f.get("/auth/sair", user)

	require.NoError(t, f.auth.Logout(c))

	assert.Equal(t, "/auth/logar", rec.Header().Get(echo.HeaderLocation))
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "nutrilab_session" {
			cleared = cookie.MaxAge < 0
		}
	}
	assert.True(t, cleared)
}

func TestLogout_HTMXRedirect(t *testing.T) {
	f := newFixture(t)
	c, rec := f.get("/auth/sair", nil)
	c.Request().Header.Set(htmx.HeaderRequest, "true")

	require.NoError(t, f.auth.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/auth/logar", rec.Header().Get(htmx.HeaderRedirect))
}

func activate(t *testing.T, f *fixture, token string) string {
	t.Helper()
	c, rec := f.get("/auth/ativar_conta/"+token, nil)
	c = withParam(c, "token", token)

	require.NoError(t, f.auth.Activate(c))
	assert.Equal(t, "/auth/logar", rec.Header().Get(echo.HeaderLocation))
	return f.flashMessage(t, rec)
}

func TestActivate(t *testing.T) {
	f := newFixture(t)
	c, _ := f.postForm("/auth/cadastro", registerForm(), nil)
	require.NoError(t, f.auth.Register(c))
	token := activation.HashToken("andre", "andre@x.com")

	assert.Equal(t, "Conta ativada com sucesso", activate(t, f, token))

	user, err := f.repo.GetUserByUsername(context.Background(), "andre")
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	assert.Equal(t, "Esse token já foi usado", activate(t, f, token))

	user, err = f.repo.GetUserByUsername(context.Background(), "andre")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestActivate_UnknownToken(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "O token não está cadastrado", activate(t, f, "deadbeef"))
}
