// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

func validMeasurement(weight string) clinic.MeasurementInput {
	return clinic.MeasurementInput{
		Weight: weight, Height: "1,68", BodyFat: "22.5", Muscle: "31",
		HDL: "55", LDL: "110", TotalCholesterol: "190", Triglycerides: "130",
	}
}

func TestAddMeasurement(t *testing.T) {
	f := newFixture(t)
	p := mustPatient(t, f, f.owner.ID, "maria")
	now := time.Date(2025, 4, 2, 14, 30, 0, 0, time.UTC)
	f.svc.SetClock(func() time.Time { return now })

	m, err := f.svc.AddMeasurement(context.Background(), f.owner.ID, p.ID, validMeasurement("72,4"))

	require.NoError(t, err)
	assert.InDelta(t, 72.4, m.Weight, 0.0001)
	assert.InDelta(t, 1.68, m.Height, 0.0001)
	assert.InDelta(t, 22.5, m.BodyFat, 0.0001)
	assert.True(t, now.Equal(m.TakenAt))
}

func TestAddMeasurement_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *clinic.MeasurementInput)
		field     string
		messageID string
	}{
		{"missing weight", func(in *clinic.MeasurementInput) { in.Weight = "" }, "peso", "ValidationRequired"},
		{"text height", func(in *clinic.MeasurementInput) { in.Height = "alto" }, "altura", "ValidationNumeric"},
		{"negative ldl", func(in *clinic.MeasurementInput) { in.LDL = "-1" }, "ldl", "ValidationNonNegative"},
		{"missing triglycerides", func(in *clinic.MeasurementInput) { in.Triglycerides = " " }, "triglicerídios", "ValidationRequired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := mustPatient(t, f, f.owner.ID, "maria")
			in := validMeasurement("70")
			tt.mutate(&in)

			_, err := f.svc.AddMeasurement(context.Background(), f.owner.ID, p.ID, in)

			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.messageID, verr.MessageID)

			_, list, err := f.svc.Measurements(context.Background(), f.owner.ID, p.ID)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestMeasurements_TimeOrderRegardlessOfInsertion(t *testing.T) {
	f := newFixture(t)
	p := mustPatient(t, f, f.owner.ID, "maria")
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, offset := range []int{5, 1, 3, 0, 4, 2} {
		testutil.NewTestMeasurement(t, f.repo, p.ID, float64(60+offset), base.Add(time.Duration(offset)*24*time.Hour))
	}

	_, list, err := f.svc.Measurements(context.Background(), f.owner.ID, p.ID)

	require.NoError(t, err)
	require.Len(t, list, 6)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].TakenAt.Before(list[i-1].TakenAt), "sample %d out of order", i)
	}
}

func TestWeightSeries(t *testing.T) {
	f := newFixture(t)
	p := mustPatient(t, f, f.owner.ID, "maria")
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	testutil.NewTestMeasurement(t, f.repo, p.ID, 71, base.Add(48*time.Hour))
	testutil.NewTestMeasurement(t, f.repo, p.ID, 73, base)
	testutil.NewTestMeasurement(t, f.repo, p.ID, 72, base.Add(24*time.Hour))

	series, err := f.svc.WeightSeries(context.Background(), f.owner.ID, p.ID)

	require.NoError(t, err)
	assert.Equal(t, []float64{73, 72, 71}, series.Weights)
	assert.Equal(t, []int{0, 1, 2}, series.Labels)

	raw, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `{"peso":[73,72,71],"labels":[0,1,2]}`, string(raw))
}

func TestWeightSeries_Empty(t *testing.T) {
	f := newFixture(t)
	p := mustPatient(t, f, f.owner.ID, "maria")

	series, err := f.svc.WeightSeries(context.Background(), f.owner.ID, p.ID)

	require.NoError(t, err)
	raw, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `{"peso":[],"labels":[]}`, string(raw))
}

func TestWeightSeries_UnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.WeightSeries(context.Background(), f.owner.ID, 404)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
