// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func TestListMeasurements_OrderedByTime(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p := testutil.NewTestPatient(t, repo, owner.ID, "maria")
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	testutil.NewTestMeasurement(t, repo, p.ID, 70, base.Add(48*time.Hour))
	testutil.NewTestMeasurement(t, repo, p.ID, 72, base)
	testutil.NewTestMeasurement(t, repo, p.ID, 71, base.Add(24*time.Hour))

	got, err := repo.ListMeasurements(context.Background(), p.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 72.0, got[0].Weight, 0.001)
	assert.InDelta(t, 71.0, got[1].Weight, 0.001)
	assert.InDelta(t, 70.0, got[2].Weight, 0.001)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].TakenAt.Before(got[i-1].TakenAt))
	}
}

func TestListMeasurements_OtherPatient(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewActiveTestUser(t, repo, "andre")
	p1 := testutil.NewTestPatient(t, repo, owner.ID, "maria")
	p2 := testutil.NewTestPatient(t, repo, owner.ID, "joao")
	testutil.NewTestMeasurement(t, repo, p1.ID, 70, time.Now())

	got, err := repo.ListMeasurements(context.Background(), p2.ID)

	require.NoError(t, err)
	assert.Empty(t, got)
}
