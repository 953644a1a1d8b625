package progress

import (
	"testing"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeOnPace(t *testing.T) {
	// Halfway through a 10-day window with half the tasks done.
	st, err := Compute(10, 5, date("2024-01-01"), date("2024-01-11"), date("2024-01-06"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, st.IdealRate)
	assert.Equal(t, 0.5, st.ActualRate)
	assert.Equal(t, 0.0, st.GapRate)
	assert.Equal(t, HealthOK, st.Status)
}

func TestComputeFarBehindAtDeadline(t *testing.T) {
	st, err := Compute(10, 2, date("2024-01-01"), date("2024-01-11"), date("2024-01-11"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, st.IdealRate)
	assert.Equal(t, 0.2, st.ActualRate)
	assert.InDelta(t, -0.8, st.GapRate, 1e-12)
	assert.Equal(t, HealthDanger, st.Status)
}

func TestComputeIdealRateBounds(t *testing.T) {
	start, end := date("2024-03-01"), date("2024-03-31")

	before, err := Compute(4, 0, start, end, date("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, before.IdealRate, "before start the ideal rate is exactly 0")

	atStart, err := Compute(4, 0, start, end, start)
	require.NoError(t, err)
	assert.Equal(t, 0.0, atStart.IdealRate)

	after, err := Compute(4, 0, start, end, date("2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, after.IdealRate, "past the end the ideal rate is exactly 1")
}

func TestComputeIdealRateMonotonic(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-31")

	prev := -1.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		st, err := Compute(10, 3, start, end, d)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, st.IdealRate, prev, "ideal rate must not decrease day over day")
		assert.Equal(t, st.ActualRate-st.IdealRate, st.GapRate)
		prev = st.IdealRate
	}
	assert.Equal(t, 1.0, prev)
}

func TestComputeSingleDayGoal(t *testing.T) {
	d := date("2024-05-01")
	st, err := Compute(2, 1, d, d, d)
	require.NoError(t, err)

	// Zero-length window counts as one day; no division by zero.
	assert.Equal(t, 0.0, st.IdealRate)
	assert.Equal(t, 0.5, st.ActualRate)
}

func TestComputeEmptyPlan(t *testing.T) {
	st, err := Compute(0, 0, date("2024-01-01"), date("2024-01-31"), date("2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, st.ActualRate)
	assert.Equal(t, -1.0, st.GapRate)
	assert.Equal(t, HealthDanger, st.Status)
}

func TestComputeRejectsBadInputs(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-31")

	cases := []struct {
		name        string
		total, done int
		start, end  time.Time
	}{
		{"negative total", -1, 0, start, end},
		{"negative done", 5, -2, start, end},
		{"done exceeds total", 3, 4, start, end},
		{"end before start", 5, 1, end, start},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.total, tc.done, tc.start, tc.end, end)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	const eps = 1e-9

	cases := []struct {
		gap  float64
		want string
	}{
		{0.3, HealthOK},
		{0.0, HealthOK},
		{-0.10, HealthOK}, // boundary is inclusive toward ok
		{-0.10 - eps, HealthWarning},
		{-0.20, HealthWarning},
		{-0.25 + eps, HealthWarning},
		{-0.25, HealthDanger}, // boundary is inclusive toward danger
		{-0.9, HealthDanger},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.gap), "gap %v", tc.gap)
	}
}

func TestFromSnapshotClassifiesOnly(t *testing.T) {
	snap := models.ProgressSnapshot{
		TotalTasks: 8,
		DoneTasks:  3,
		IdealRate:  0.6,
		ActualRate: 0.375,
		GapRate:    -0.225,
	}

	st := FromSnapshot(snap)
	assert.Equal(t, snap.IdealRate, st.IdealRate)
	assert.Equal(t, snap.ActualRate, st.ActualRate)
	assert.Equal(t, snap.GapRate, st.GapRate)
	assert.Equal(t, HealthWarning, st.Status)
}
