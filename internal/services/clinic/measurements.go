// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/samber/lo"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/validate"
)

// MeasurementInput is the measurement form. Decimals may use a comma.
type MeasurementInput struct {
	Weight           string `form:"peso" validate:"required,numeric"`
	Height           string `form:"altura" validate:"required,numeric"`
	BodyFat          string `form:"gordura" validate:"required,numeric"`
	Muscle           string `form:"musculo" validate:"required,numeric"`
	HDL              string `form:"hdl" validate:"required,numeric"`
	LDL              string `form:"ldl" validate:"required,numeric"`
	TotalCholesterol string `form:"ctotal" validate:"required,numeric"`
	Triglycerides    string `form:"triglicerídios" validate:"required,numeric"`
}

// WeightSeries is the weight chart payload. Labels are sample indices.
type WeightSeries struct {
	Weights []float64 `json:"peso"`
	Labels  []int     `json:"labels"`
}

// AddMeasurement appends a measurement stamped with the current time.
func (s *Service) AddMeasurement(ctx context.Context, practitionerID, patientID int64, in MeasurementInput) (*models.Measurement, error) {
	patient, err := s.authorize(ctx, practitionerID, patientID)
	if err != nil {
		return nil, err
	}

	m := &models.Measurement{PatientID: patient.ID, TakenAt: s.now()}
	fields := []struct {
		name  string
		value *string
		dst   *float64
	}{
		{"peso", &in.Weight, &m.Weight},
		{"altura", &in.Height, &m.Height},
		{"gordura", &in.BodyFat, &m.BodyFat},
		{"musculo", &in.Muscle, &m.Muscle},
		{"hdl", &in.HDL, &m.HDL},
		{"ldl", &in.LDL, &m.LDL},
		{"ctotal", &in.TotalCholesterol, &m.TotalCholesterol},
		{"triglicerídios", &in.Triglycerides, &m.Triglycerides},
	}

	for _, f := range fields {
		*f.value = validate.Decimal(*f.value)
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(*f.value, 64)
		if err != nil || v < 0 {
			return nil, apperr.Validation(f.name, "ValidationNonNegative")
		}
		*f.dst = v
	}

	if err := s.repo.CreateMeasurement(ctx, m); err != nil {
		return nil, internal("create measurement", err)
	}

	slog.Info("measurement_added", "practitioner_id", practitionerID, "patient_id", patient.ID)
	return m, nil
}

// Measurements returns the patient and its measurements, oldest first.
func (s *Service) Measurements(ctx context.Context, practitionerID, patientID int64) (*models.Patient, []models.Measurement, error) {
	patient, err := s.authorize(ctx, practitionerID, patientID)
	if err != nil {
		return nil, nil, err
	}
	measurements, err := s.repo.ListMeasurements(ctx, patient.ID)
	if err != nil {
		return nil, nil, internal("list measurements", err)
	}
	return patient, measurements, nil
}

// WeightSeries returns the patient's weights in time order.
func (s *Service) WeightSeries(ctx context.Context, practitionerID, patientID int64) (*WeightSeries, error) {
	_, measurements, err := s.Measurements(ctx, practitionerID, patientID)
	if err != nil {
		return nil, err
	}
	return &WeightSeries{
		Weights: lo.Map(measurements, func(m models.Measurement, _ int) float64 { return m.Weight }),
		Labels:  lo.Range(len(measurements)),
	}, nil
}
