// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/auth"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/services/session"
	"codeberg.org/oliverandrich/nutrilab/internal/views"
)

const (
	patientsPath     = "/pacientes"
	measurementsPath = "/dados_paciente"
	mealPlansPath    = "/plano_alimentar"
)

// ClinicHandlers contains handlers for patients, measurements and meal plans.
// All of them run behind the authentication middleware.
type ClinicHandlers struct {
	flasher
	clinic *clinic.Service
}

// NewClinic creates a new ClinicHandlers instance.
func NewClinic(svc *clinic.Service, sess *session.Manager) *ClinicHandlers {
	return &ClinicHandlers{
		flasher: flasher{sessions: sess},
		clinic:  svc,
	}
}

func practitionerID(c echo.Context) int64 {
	return auth.GetUser(c.Request().Context()).ID
}

// patientFailure redirects to back after a failed patient lookup. Unknown
// patients get a message naming the requested ID.
func (h *ClinicHandlers) patientFailure(c echo.Context, back string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		msg := h.patientNotFound(c)
		return h.redirect(c, back, session.LevelError, msg)
	}
	return h.fail(c, back, err)
}

func (h *ClinicHandlers) patientNotFound(c echo.Context) string {
	return i18nData(c, "FlashPatientNotFound", map[string]any{"ID": c.Param("id")})
}

// Patients lists the practitioner's patients.
func (h *ClinicHandlers) Patients(c echo.Context) error {
	patients, err := h.clinic.ListPatients(c.Request().Context(), practitionerID(c))
	if err != nil {
		slog.Error("list_patients_failed", "error", err)
		return InternalServerError(c)
	}
	return Render(c, http.StatusOK, views.Patients(patients))
}

// CreatePatient registers a new patient for the practitioner.
func (h *ClinicHandlers) CreatePatient(c echo.Context) error {
	var in clinic.PatientInput
	if err := c.Bind(&in); err != nil {
		return h.fail(c, patientsPath, apperr.Validation("nome", "ValidationInvalid"))
	}

	if _, err := h.clinic.CreatePatient(c.Request().Context(), practitionerID(c), in); err != nil {
		return h.fail(c, patientsPath, err)
	}
	return h.success(c, patientsPath, "FlashPatientCreated")
}

// MeasurementPatients lists patients to choose for measurement entry.
func (h *ClinicHandlers) MeasurementPatients(c echo.Context) error {
	patients, err := h.clinic.ListPatients(c.Request().Context(), practitionerID(c))
	if err != nil {
		slog.Error("list_patients_failed", "error", err)
		return InternalServerError(c)
	}
	return Render(c, http.StatusOK, views.MeasurementPatients(patients))
}

// Measurements shows a patient's measurements and the entry form.
func (h *ClinicHandlers) Measurements(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirect(c, measurementsPath, session.LevelError, h.patientNotFound(c))
	}

	patient, measurements, err := h.clinic.Measurements(c.Request().Context(), practitionerID(c), id)
	if err != nil {
		return h.patientFailure(c, measurementsPath, err)
	}
	return Render(c, http.StatusOK, views.Measurements(patient, measurements))
}

// AddMeasurement appends a measurement to the patient's series.
func (h *ClinicHandlers) AddMeasurement(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirect(c, measurementsPath, session.LevelError, h.patientNotFound(c))
	}

	back := measurementsPath + "/" + strconv.FormatInt(id, 10)

	var in clinic.MeasurementInput
	if err := c.Bind(&in); err != nil {
		return h.fail(c, back, apperr.Validation("peso", "ValidationInvalid"))
	}

	_, err := h.clinic.AddMeasurement(c.Request().Context(), practitionerID(c), id, in)
	switch {
	case err == nil:
		return h.success(c, measurementsPath, "FlashMeasurementCreated")
	case errors.Is(err, apperr.ErrValidation):
		return h.fail(c, back, err)
	default:
		return h.patientFailure(c, measurementsPath, err)
	}
}

// WeightChart returns the weight series as JSON.
func (h *ClinicHandlers) WeightChart(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": h.patientNotFound(c)})
	}

	series, err := h.clinic.WeightSeries(c.Request().Context(), practitionerID(c), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, series)
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": h.patientNotFound(c)})
	case errors.Is(err, apperr.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": errorMessage(c, err)})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": errorMessage(c, err)})
	}
}

// MealPlanPatients lists patients to choose for meal planning.
func (h *ClinicHandlers) MealPlanPatients(c echo.Context) error {
	patients, err := h.clinic.ListPatients(c.Request().Context(), practitionerID(c))
	if err != nil {
		slog.Error("list_patients_failed", "error", err)
		return InternalServerError(c)
	}
	return Render(c, http.StatusOK, views.MealPlanPatients(patients))
}

// MealPlan shows a patient's meals and their options.
func (h *ClinicHandlers) MealPlan(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirect(c, mealPlansPath, session.LevelError, h.patientNotFound(c))
	}

	plan, err := h.clinic.MealPlan(c.Request().Context(), practitionerID(c), id)
	if err != nil {
		return h.patientFailure(c, mealPlansPath, err)
	}
	return Render(c, http.StatusOK, views.MealPlan(plan))
}

// AddMeal adds a meal to the patient's plan.
func (h *ClinicHandlers) AddMeal(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirect(c, mealPlansPath, session.LevelError, h.patientNotFound(c))
	}
	back := mealPlanPath(id)

	var in clinic.MealInput
	if err := c.Bind(&in); err != nil {
		return h.fail(c, back, apperr.Validation("titulo", "ValidationInvalid"))
	}

	_, err := h.clinic.AddMeal(c.Request().Context(), practitionerID(c), id, in)
	switch {
	case err == nil:
		return h.success(c, back, "FlashMealCreated")
	case errors.Is(err, apperr.ErrValidation):
		return h.fail(c, back, err)
	default:
		return h.patientFailure(c, mealPlansPath, err)
	}
}

// AddMealOption adds an option with an image to one of the patient's meals.
func (h *ClinicHandlers) AddMealOption(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirect(c, mealPlansPath, session.LevelError, h.patientNotFound(c))
	}
	back := mealPlanPath(id)

	ctx := c.Request().Context()
	if _, err := h.clinic.Patient(ctx, practitionerID(c), id); err != nil {
		return h.patientFailure(c, mealPlansPath, err)
	}

	in := clinic.MealOptionInput{
		MealID:      c.FormValue("refeicao"),
		Description: c.FormValue("descricao"),
	}

	file, err := c.FormFile("imagem")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return h.fail(c, back, apperr.Validation("imagem", "ValidationImage"))
	default:
		src, openErr := file.Open()
		if openErr != nil {
			return h.fail(c, back, fmt.Errorf("open upload: %w: %w", apperr.ErrInternal, openErr))
		}
		defer src.Close()
		in.Image = &clinic.Upload{
			Filename:    file.Filename,
			ContentType: file.Header.Get(echo.HeaderContentType),
			Body:        src,
		}
	}

	if _, err := h.clinic.AddMealOption(ctx, practitionerID(c), id, in); err != nil {
		return h.fail(c, back, err)
	}
	return h.success(c, back, "FlashOptionCreated")
}

func mealPlanPath(patientID int64) string {
	return mealPlansPath + "/" + strconv.FormatInt(patientID, 10)
}
