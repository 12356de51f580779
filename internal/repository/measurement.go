// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/nutrilab/internal/models"
)

// CreateMeasurement appends a measurement to a patient's series.
func (r *Repository) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	m.TakenAt = m.TakenAt.UTC()
	return r.db.GetContext(ctx, m,
		`INSERT INTO measurements
		   (patient_id, taken_at, weight, height, body_fat, muscle, hdl, ldl, total_cholesterol, triglycerides)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING *`,
		m.PatientID, m.TakenAt, m.Weight, m.Height, m.BodyFat, m.Muscle,
		m.HDL, m.LDL, m.TotalCholesterol, m.Triglycerides)
}

// ListMeasurements returns a patient's measurements, oldest first.
func (r *Repository) ListMeasurements(ctx context.Context, patientID int64) ([]models.Measurement, error) {
	measurements := []models.Measurement{}
	err := r.db.SelectContext(ctx, &measurements,
		`SELECT * FROM measurements WHERE patient_id = ? ORDER BY taken_at, id`, patientID)
	return measurements, err
}
