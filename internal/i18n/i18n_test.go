// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
)

func TestInit(t *testing.T) {
	require.NoError(t, i18n.Init())
}

func TestT_Portuguese(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), i18n.DefaultLanguage)

	assert.Equal(t, "Confirmação de Cadastro", i18n.T(ctx, "EmailActivationSubject"))
}

func TestT_English(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Account confirmation", i18n.T(ctx, "EmailActivationSubject"))
}

func TestT_UnknownKey(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "unknown_key_that_does_not_exist", i18n.T(ctx, "unknown_key_that_does_not_exist"))
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, "Confirmação de Cadastro", i18n.T(context.Background(), "EmailActivationSubject"))
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Hello andre,", i18n.TData(ctx, "EmailActivationGreeting", map[string]any{"Username": "andre"}))
}

func TestTPlural(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "1 patient", i18n.TPlural(ctx, "PatientCount", 1))
	assert.Equal(t, "3 patients", i18n.TPlural(ctx, "PatientCount", 3))
}

func TestGetLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, "pt-BR", i18n.GetLocale(context.Background()))
	assert.Equal(t, "en", i18n.GetLocale(i18n.WithLocale(context.Background(), language.English)))
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header   string
		expected language.Tag
	}{
		{"", i18n.DefaultLanguage},
		{"pt-BR,pt;q=0.9", i18n.DefaultLanguage},
		{"pt", i18n.DefaultLanguage},
		{"en-US,en;q=0.9", language.English},
		{"fr-FR", i18n.DefaultLanguage},
		{"de;q=0.9,en;q=0.8", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.MatchLanguage(tt.header))
		})
	}
}
