// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
)

func validPatient() clinic.PatientInput {
	return clinic.PatientInput{Name: " Maria ", Sex: "f", Age: "40", Email: "maria@x.com", Phone: "11 99999-0000"}
}

func TestCreatePatient(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.CreatePatient(context.Background(), f.owner.ID, validPatient())

	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Maria", p.Name)
	assert.Equal(t, "F", p.Sex)
	assert.Equal(t, 40, p.Age)
	assert.Equal(t, f.owner.ID, p.PractitionerID)
}

func TestCreatePatient_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *clinic.PatientInput)
		field     string
		messageID string
	}{
		{"empty age", func(in *clinic.PatientInput) { in.Age = "" }, "idade", "ValidationRequired"},
		{"blank name", func(in *clinic.PatientInput) { in.Name = "   " }, "nome", "ValidationRequired"},
		{"age not numeric", func(in *clinic.PatientInput) { in.Age = "quarenta" }, "idade", "ValidationNumeric"},
		{"age negative", func(in *clinic.PatientInput) { in.Age = "-3" }, "idade", "ValidationNumeric"},
		{"age too high", func(in *clinic.PatientInput) { in.Age = "151" }, "idade", "ValidationAge"},
		{"bad sex", func(in *clinic.PatientInput) { in.Sex = "X" }, "sexo", "ValidationOneOf"},
		{"bad email", func(in *clinic.PatientInput) { in.Email = "maria" }, "email", "ValidationEmail"},
		{"missing phone", func(in *clinic.PatientInput) { in.Phone = "" }, "telefone", "ValidationRequired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validPatient()
			tt.mutate(&in)

			_, err := f.svc.CreatePatient(context.Background(), f.owner.ID, in)

			require.ErrorIs(t, err, apperr.ErrValidation)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.messageID, verr.MessageID)

			patients, err := f.svc.ListPatients(context.Background(), f.owner.ID)
			require.NoError(t, err)
			assert.Empty(t, patients, "no patient row on validation failure")
		})
	}
}

func TestCreatePatient_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreatePatient(ctx, f.other.ID, validPatient())
	require.NoError(t, err)

	_, err = f.svc.CreatePatient(ctx, f.owner.ID, validPatient())

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ValidationPatientEmailTaken", verr.MessageID)
}

func TestListPatients_ScopedByOwner(t *testing.T) {
	f := newFixture(t)
	mustPatient(t, f, f.owner.ID, "maria")
	mustPatient(t, f, f.other.ID, "joao")

	patients, err := f.svc.ListPatients(context.Background(), f.owner.ID)

	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "maria", patients[0].Name)
}

func TestPatient_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := mustPatient(t, f, f.owner.ID, "maria")
	theirs := mustPatient(t, f, f.other.ID, "joao")

	got, err := f.svc.Patient(ctx, f.owner.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.svc.Patient(ctx, f.owner.ID, theirs.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Patient(ctx, f.owner.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// A practitioner can neither read nor change another practitioner's patient.
func TestCrossPractitionerAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	theirs := mustPatient(t, f, f.other.ID, "joao")
	meal, err := f.svc.AddMeal(ctx, f.other.ID, theirs.ID, validMeal())
	require.NoError(t, err)

	ops := map[string]func() error{
		"read patient": func() error {
			_, err := f.svc.Patient(ctx, f.owner.ID, theirs.ID)
			return err
		},
		"list measurements": func() error {
			_, _, err := f.svc.Measurements(ctx, f.owner.ID, theirs.ID)
			return err
		},
		"add measurement": func() error {
			_, err := f.svc.AddMeasurement(ctx, f.owner.ID, theirs.ID, validMeasurement("70"))
			return err
		},
		"weight series": func() error {
			_, err := f.svc.WeightSeries(ctx, f.owner.ID, theirs.ID)
			return err
		},
		"meal plan": func() error {
			_, err := f.svc.MealPlan(ctx, f.owner.ID, theirs.ID)
			return err
		},
		"add meal": func() error {
			_, err := f.svc.AddMeal(ctx, f.owner.ID, theirs.ID, validMeal())
			return err
		},
		"add meal option": func() error {
			_, err := f.svc.AddMealOption(ctx, f.owner.ID, theirs.ID, clinic.MealOptionInput{
				MealID: itoa(meal.ID), Description: "x", Image: pngUpload("x.png"),
			})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), apperr.ErrForbidden)
		})
	}

	_, measurements, err := f.svc.Measurements(ctx, f.other.ID, theirs.ID)
	require.NoError(t, err)
	assert.Empty(t, measurements)
	plan, err := f.svc.MealPlan(ctx, f.other.ID, theirs.ID)
	require.NoError(t, err)
	assert.Len(t, plan.Meals, 1)
	assert.Empty(t, plan.Meals[0].Options)
	assert.Empty(t, f.store.objects)
}
