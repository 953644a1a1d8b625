package commitment

import (
	"testing"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/google/uuid"
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

func activeCommitment() *models.GoalCommitment {
	return &models.GoalCommitment{
		ID:               uuid.New(),
		GoalID:           uuid.New(),
		UserID:           uuid.New(),
		Amount:           5000,
		Currency:         "JPY",
		ThresholdPercent: 80,
		Status:           models.CommitmentActive,
	}
}

func TestEvaluateBelowThresholdFails(t *testing.T) {
	c := activeCommitment()
	goalEnd := date("2024-06-30")

	out, err := Evaluate(c, goalEnd, 75, date("2024-06-30"))
	require.NoError(t, err)

	assert.Equal(t, models.CommitmentFailed, out.NewStatus)
	require.NotNil(t, out.EvaluatedAt)

	require.NotNil(t, out.Penalty)
	assert.Equal(t, c.ID, out.Penalty.CommitmentID)
	assert.Equal(t, c.UserID, out.Penalty.UserID)
	assert.Equal(t, c.Amount, out.Penalty.Amount)
	assert.Equal(t, c.Currency, out.Penalty.Currency)
	assert.Equal(t, 75.0, out.Penalty.ActualCompletionPercent)
	assert.Equal(t, models.PenaltyPending, out.Penalty.Status)
}

func TestEvaluateAtOrAboveThresholdAchieves(t *testing.T) {
	c := activeCommitment()
	goalEnd := date("2024-06-30")

	out, err := Evaluate(c, goalEnd, 85, date("2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, models.CommitmentAchieved, out.NewStatus)
	assert.NotNil(t, out.EvaluatedAt)
	assert.Nil(t, out.Penalty)

	// The threshold itself counts as achieved.
	out, err = Evaluate(activeCommitment(), goalEnd, 80, date("2024-07-01"))
	require.NoError(t, err)
	assert.Equal(t, models.CommitmentAchieved, out.NewStatus)
}

func TestEvaluateBeforeEndDateIsInvalid(t *testing.T) {
	c := activeCommitment()

	_, err := Evaluate(c, date("2024-06-30"), 100, date("2024-06-29"))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestEvaluateTerminalStatesAreNoOps(t *testing.T) {
	goalEnd := date("2024-06-30")
	now := date("2024-07-02")

	for _, status := range []string{
		models.CommitmentAchieved,
		models.CommitmentFailed,
		models.CommitmentCancelled,
	} {
		t.Run(status, func(t *testing.T) {
			c := activeCommitment()
			c.Status = status
			evaluated := date("2024-07-01")
			c.EvaluatedAt = &evaluated

			out, err := Evaluate(c, goalEnd, 10, now)
			require.NoError(t, err)
			assert.Equal(t, status, out.NewStatus)
			assert.Equal(t, &evaluated, out.EvaluatedAt)
			assert.Nil(t, out.Penalty, "re-evaluation must never create a second penalty")
		})
	}
}

func TestEvaluateTwiceCreatesOnePenalty(t *testing.T) {
	c := activeCommitment()
	goalEnd := date("2024-06-30")
	now := date("2024-07-01")

	first, err := Evaluate(c, goalEnd, 40, now)
	require.NoError(t, err)
	require.NotNil(t, first.Penalty)

	// Caller applies the transition, then the sweep fires again.
	c.Status = first.NewStatus
	c.EvaluatedAt = first.EvaluatedAt

	second, err := Evaluate(c, goalEnd, 40, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, models.CommitmentFailed, second.NewStatus)
	assert.Nil(t, second.Penalty)
}

func TestCancelActive(t *testing.T) {
	c := activeCommitment()

	status, err := Cancel(c)
	require.NoError(t, err)
	assert.Equal(t, models.CommitmentCancelled, status)
}

func TestCancelNonActiveIsInvalid(t *testing.T) {
	for _, status := range []string{
		models.CommitmentAchieved,
		models.CommitmentFailed,
		models.CommitmentCancelled,
	} {
		t.Run(status, func(t *testing.T) {
			c := activeCommitment()
			c.Status = status

			_, err := Cancel(c)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}
