// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package clinic manages a practitioner's patients, their measurements and
// their meal plans. Every operation takes the acting practitioner and goes
// through the same ownership check.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/storage"
)

// Service implements the clinic operations.
type Service struct {
	repo  *repository.Repository
	store storage.Store
	now   func() time.Time
}

// NewService creates a clinic service storing images in store.
func NewService(repo *repository.Repository, store storage.Store) *Service {
	return &Service{repo: repo, store: store, now: time.Now}
}

// SetClock replaces the time source used to stamp measurements.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// authorize loads a patient on behalf of a practitioner. Unknown patients
// yield apperr.ErrNotFound, patients of someone else apperr.ErrForbidden.
func (s *Service) authorize(ctx context.Context, practitionerID, patientID int64) (*models.Patient, error) {
	patient, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("patient %d: %w", patientID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("loading patient %d: %w: %w", patientID, apperr.ErrInternal, err)
	}
	if !patient.OwnedBy(practitionerID) {
		slog.Warn("access_denied", "practitioner_id", practitionerID, "patient_id", patientID)
		return nil, fmt.Errorf("patient %d: %w", patientID, apperr.ErrForbidden)
	}
	return patient, nil
}

func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrInternal, err)
}
