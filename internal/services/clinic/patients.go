// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/validate"
)

// MaxAge is the highest accepted patient age.
const MaxAge = 150

// PatientInput is the patient registration form.
type PatientInput struct {
	Name  string `form:"nome" validate:"required,max=50"`
	Sex   string `form:"sexo" validate:"required,oneof=M F"`
	Age   string `form:"idade" validate:"required,number"`
	Email string `form:"email" validate:"required,email"`
	Phone string `form:"telefone" validate:"required,max=19"`
}

func (in *PatientInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))
	in.Age = strings.TrimSpace(in.Age)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

// ListPatients returns the practitioner's patients.
func (s *Service) ListPatients(ctx context.Context, practitionerID int64) ([]models.Patient, error) {
	patients, err := s.repo.ListPatientsByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, internal("list patients", err)
	}
	return patients, nil
}

// Patient returns one of the practitioner's patients.
func (s *Service) Patient(ctx context.Context, practitionerID, patientID int64) (*models.Patient, error) {
	return s.authorize(ctx, practitionerID, patientID)
}

// CreatePatient registers a patient for the practitioner. Patient emails
// are unique across all practitioners.
func (s *Service) CreatePatient(ctx context.Context, practitionerID int64, in PatientInput) (*models.Patient, error) {
	in.trim()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	age, err := strconv.Atoi(in.Age)
	if err != nil || age < 0 || age > MaxAge {
		return nil, apperr.Validation("idade", "ValidationAge")
	}

	taken, err := s.repo.PatientEmailExists(ctx, in.Email)
	if err != nil {
		return nil, internal("check patient email", err)
	}
	if taken {
		return nil, apperr.Validation("email", "ValidationPatientEmailTaken")
	}

	patient := &models.Patient{
		PractitionerID: practitionerID,
		Name:           in.Name,
		Sex:            in.Sex,
		Age:            age,
		Email:          in.Email,
		Phone:          in.Phone,
	}
	if err := s.repo.CreatePatient(ctx, patient); err != nil {
		return nil, internal("create patient", err)
	}

	slog.Info("patient_created", "practitioner_id", practitionerID, "patient_id", patient.ID)
	return patient, nil
}
