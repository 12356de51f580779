// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/nutrilab/internal/database"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
)

// TestPassword is the plain password of users created by NewTestUser.
const TestPassword = "Andre10"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	return openDB(t, ":memory:")
}

// NewFileTestDB creates a SQLite file database in a temp dir. Use it when
// several connections must see the same data.
func NewFileTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	return openDB(t, filepath.Join(t.TempDir(), "test.db"))
}

func openDB(t *testing.T, dsn string) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates an inactive user with TestPassword.
func NewTestUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), username, username+"@example.com", string(hash))
	require.NoError(t, err)
	return user
}

// NewActiveTestUser creates an active user with TestPassword.
func NewActiveTestUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()
	user := NewTestUser(t, repo, username)
	require.NoError(t, repo.ActivateUser(context.Background(), user.ID))
	user.IsActive = true
	return user
}

// NewTestPatient creates a patient owned by practitionerID.
func NewTestPatient(t *testing.T, repo *repository.Repository, practitionerID int64, name string) *models.Patient {
	t.Helper()
	p := &models.Patient{
		PractitionerID: practitionerID,
		Name:           name,
		Sex:            "F",
		Age:            34,
		Email:          name + "@patients.example.com",
		Phone:          "11999990000",
	}
	require.NoError(t, repo.CreatePatient(context.Background(), p))
	return p
}

// NewTestMeasurement appends a measurement with the given weight and time.
func NewTestMeasurement(t *testing.T, repo *repository.Repository, patientID int64, weight float64, takenAt time.Time) *models.Measurement {
	t.Helper()
	m := &models.Measurement{
		PatientID:        patientID,
		TakenAt:          takenAt,
		Weight:           weight,
		Height:           1.70,
		BodyFat:          20,
		Muscle:           35,
		HDL:              50,
		LDL:              100,
		TotalCholesterol: 180,
		Triglycerides:    120,
	}
	require.NoError(t, repo.CreateMeasurement(context.Background(), m))
	return m
}

// NewTestMeal adds a meal to a patient's plan.
func NewTestMeal(t *testing.T, repo *repository.Repository, patientID int64, title, timeOfDay string) *models.Meal {
	t.Helper()
	m := &models.Meal{PatientID: patientID, Title: title, TimeOfDay: timeOfDay, Carbs: 30, Protein: 20, Fat: 10}
	require.NoError(t, repo.CreateMeal(context.Background(), m))
	return m
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
