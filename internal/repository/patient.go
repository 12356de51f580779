// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/nutrilab/internal/models"
)

// CreatePatient inserts a patient and fills in ID and CreatedAt.
func (r *Repository) CreatePatient(ctx context.Context, p *models.Patient) error {
	return r.db.GetContext(ctx, p,
		`INSERT INTO patients (practitioner_id, name, sex, age, email, phone)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING *`,
		p.PractitionerID, p.Name, p.Sex, p.Age, p.Email, p.Phone)
}

// GetPatient retrieves a patient by ID regardless of owner.
func (r *Repository) GetPatient(ctx context.Context, id int64) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM patients WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &p, nil
}

// ListPatientsByPractitioner returns the patients owned by a practitioner, by name.
func (r *Repository) ListPatientsByPractitioner(ctx context.Context, practitionerID int64) ([]models.Patient, error) {
	patients := []models.Patient{}
	err := r.db.SelectContext(ctx, &patients,
		`SELECT * FROM patients WHERE practitioner_id = ? ORDER BY name, id`, practitionerID)
	return patients, err
}

// PatientEmailExists checks whether any patient uses the email.
func (r *Repository) PatientEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE email = ?)`, email)
	return exists, err
}
