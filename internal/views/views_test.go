// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package views_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/ctxkeys"
	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/views"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func withUser(ctx context.Context) context.Context {
	return auth.WithUser(ctx, &models.User{ID: 1, Username: "andre", IsActive: true})
}

func TestLogin(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), i18n.DefaultLanguage)
	ctx = context.WithValue(ctx, ctxkeys.CSRFToken{}, "tok123")

	html := render(t, ctx, views.Login())

	assert.Contains(t, html, `lang="pt-BR"`)
	assert.Contains(t, html, `name="csrf_token" value="tok123"`)
	assert.Contains(t, html, `name="usuario"`)
	assert.Contains(t, html, `name="senha"`)
	assert.Contains(t, html, `href="/auth/cadastro"`)
	assert.NotContains(t, html, "/auth/sair")
}

func TestRegister_PasswordHelp(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.English)

	html := render(t, ctx, views.Register([]string{"PasswordMinLength", "PasswordDigit"}))

	assert.Contains(t, html, `name="confirmar_senha"`)
	assert.Contains(t, html, "Password must be at least 6 characters long")
	assert.Contains(t, html, "Password must contain a digit")
}

func TestLayout_Flashes(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), i18n.DefaultLanguage)
	ctx = context.WithValue(ctx, ctxkeys.Flashes{}, []session.Flash{
		{Level: session.LevelSuccess, Message: "Paciente cadastrado com sucesso"},
		{Level: session.LevelError, Message: "<b>nope</b>"},
	})

	html := render(t, ctx, views.Login())

	assert.Contains(t, html, `class="flash-success"`)
	assert.Contains(t, html, "Paciente cadastrado com sucesso")
	assert.Contains(t, html, "&lt;b&gt;nope&lt;/b&gt;")
}

func TestPatients(t *testing.T) {
	ctx := withUser(i18n.WithLocale(context.Background(), language.English))
	patients := []models.Patient{
		{ID: 1, Name: "Ana", Sex: "F", Age: 34, Email: "ana@example.com", Phone: "119"},
		{ID: 2, Name: "Bruno", Sex: "M", Age: 51, Email: "bruno@example.com", Phone: "118"},
	}

	html := render(t, ctx, views.Patients(patients))

	assert.Contains(t, html, "2 patients")
	assert.Contains(t, html, "Ana")
	assert.Contains(t, html, "bruno@example.com")
	assert.Contains(t, html, "andre")
	assert.Contains(t, html, `href="/auth/sair"`)
	assert.Contains(t, html, `action="/pacientes"`)
}

func TestPatients_Empty(t *testing.T) {
	ctx := withUser(i18n.WithLocale(context.Background(), language.English))

	html := render(t, ctx, views.Patients(nil))

	assert.Contains(t, html, "0 patients")
	assert.Contains(t, html, "No patients yet.")
}

func TestMeasurementPatients_Links(t *testing.T) {
	ctx := withUser(context.Background())

	html := render(t, ctx, views.MeasurementPatients([]models.Patient{{ID: 7, Name: "Carla"}}))

	assert.Contains(t, html, `href="/dados_paciente/7"`)
}

func TestMeasurements(t *testing.T) {
	ctx := withUser(i18n.WithLocale(context.Background(), language.English))
	patient := &models.Patient{ID: 7, Name: "Carla", Sex: "F", Age: 29}
	taken := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

	html := render(t, ctx, views.Measurements(patient, []models.Measurement{
		{ID: 1, PatientID: 7, TakenAt: taken, Weight: 72.5},
	}))

	assert.Contains(t, html, `data-source="/grafico_peso/7"`)
	assert.Contains(t, html, `data-label="Weight"`)
	assert.Contains(t, html, "14/03/2025 12:00")
	assert.Contains(t, html, "72.5")
	assert.Contains(t, html, `action="/dados_paciente/7"`)
	assert.Contains(t, html, `name="triglicerídios"`)
}

func TestMealPlan(t *testing.T) {
	ctx := withUser(i18n.WithLocale(context.Background(), language.English))
	plan := &clinic.MealPlan{
		Patient: &models.Patient{ID: 3, Name: "Davi"},
		Meals: []clinic.PlannedMeal{{
			Meal: models.Meal{ID: 11, PatientID: 3, Title: "Café da manhã", TimeOfDay: "07:30", Carbs: 30, Protein: 20, Fat: 10},
			Options: []clinic.PlannedOption{{
				MealOption: models.MealOption{ID: 5, MealID: 11, Description: `Pão "integral"`},
				ImageURL:   "/media/meal-options/abc.png",
			}},
		}},
	}

	html := render(t, ctx, views.MealPlan(plan))

	assert.Contains(t, html, "Café da manhã")
	assert.Contains(t, html, "Carbs 30g · Protein 20g · Fat 10g")
	assert.Contains(t, html, `src="/media/meal-options/abc.png"`)
	assert.Contains(t, html, `alt="Pão &#34;integral&#34;"`)
	assert.Contains(t, html, `action="/refeicao/3"`)
	assert.Contains(t, html, `action="/opcao/3"`)
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, `<option value="11">`)
}

func TestError(t *testing.T) {
	html := render(t, context.Background(), views.Error(404, "Não encontrado", "Registro não encontrado"))

	assert.Contains(t, html, "404 · Não encontrado")
	assert.Contains(t, html, "Registro não encontrado")
}
