// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func TestCreatePatient(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p := &models.Patient{PractitionerID: owner.ID, Name: "Maria", Sex: "F", Age: 40, Email: "maria@x.com", Phone: "123"}

	require.NoError(t, repo.CreatePatient(context.Background(), p))

	assert.NotZero(t, p.ID)
	assert.NotZero(t, p.CreatedAt)
	got, err := repo.GetPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Name)
	assert.Equal(t, owner.ID, got.PractitionerID)
}

func TestCreatePatient_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	testutil.NewTestPatient(t, repo, owner.ID, "maria")

	p := &models.Patient{PractitionerID: owner.ID, Name: "Other", Sex: "M", Age: 30, Email: "maria@patients.example.com", Phone: "1"}

	assert.Error(t, repo.CreatePatient(context.Background(), p))
}

func TestGetPatient_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetPatient(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPatientsByPractitioner(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	a := testutil.NewActiveTestUser(t, repo, "andre")
	b := testutil.NewActiveTestUser(t, repo, "bruna")
	testutil.NewTestPatient(t, repo, a.ID, "zeca")
	testutil.NewTestPatient(t, repo, a.ID, "ana")
	testutil.NewTestPatient(t, repo, b.ID, "carlos")

	patients, err := repo.ListPatientsByPractitioner(context.Background(), a.ID)

	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "ana", patients[0].Name)
	assert.Equal(t, "zeca", patients[1].Name)
}

func TestListPatientsByPractitioner_Empty(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	patients, err := repo.ListPatientsByPractitioner(context.Background(), 1)

	require.NoError(t, err)
	assert.NotNil(t, patients)
	assert.Empty(t, patients)
}

func TestPatientEmailExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	testutil.NewTestPatient(t, repo, owner.ID, "maria")

	exists, err := repo.PatientEmailExists(context.Background(), "maria@patients.example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.PatientEmailExists(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
