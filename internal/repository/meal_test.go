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

func TestListMeals_OrderedByTimeOfDay(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p := testutil.NewTestPatient(t, repo, owner.ID, "maria")
	testutil.NewTestMeal(t, repo, p.ID, "Jantar", "19:30")
	testutil.NewTestMeal(t, repo, p.ID, "Café da manhã", "07:00")
	testutil.NewTestMeal(t, repo, p.ID, "Almoço", "12:15")

	meals, err := repo.ListMeals(context.Background(), p.ID)

	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, "Café da manhã", meals[0].Title)
	assert.Equal(t, "Almoço", meals[1].Title)
	assert.Equal(t, "Jantar", meals[2].Title)
}

func TestGetMeal(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p := testutil.NewTestPatient(t, repo, owner.ID, "maria")
	meal := testutil.NewTestMeal(t, repo, p.ID, "Almoço", "12:00")

	got, err := repo.GetMeal(context.Background(), meal.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.PatientID)

	_, err = repo.GetMeal(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListMealOptionsForPatient(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p := testutil.NewTestPatient(t, repo, owner.ID, "maria")
	other := testutil.NewTestPatient(t, repo, owner.ID, "joao")
	lunch := testutil.NewTestMeal(t, repo, p.ID, "Almoço", "12:00")
	dinner := testutil.NewTestMeal(t, repo, other.ID, "Jantar", "19:00")

	require.NoError(t, repo.CreateMealOption(ctx, &models.MealOption{MealID: lunch.ID, ImageKey: "a.png", Description: "Arroz"}))
	require.NoError(t, repo.CreateMealOption(ctx, &models.MealOption{MealID: lunch.ID, ImageKey: "b.png", Description: "Salada"}))
	require.NoError(t, repo.CreateMealOption(ctx, &models.MealOption{MealID: dinner.ID, ImageKey: "c.png", Description: "Sopa"}))

	options, err := repo.ListMealOptionsForPatient(ctx, p.ID)

	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Arroz", options[0].Description)
	assert.Equal(t, "Salada", options[1].Description)
}
