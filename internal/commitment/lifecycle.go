// Package commitment holds the pure state-machine decisions for a goal's
// financial commitment. Persistence of the resulting transition (and the
// compare-and-swap on status that keeps evaluation at-most-once) belongs to
// the caller, which keeps these rules testable without a database.
package commitment

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
)

// ErrInvalidState is returned when a lifecycle operation is attempted from a
// state that does not allow it: evaluating an active commitment before the
// goal's end date, or cancelling a commitment that is no longer active.
var ErrInvalidState = errors.New("invalid state")

// Outcome is the decision produced by Evaluate. Penalty is non-nil only for
// a fresh active -> failed transition.
type Outcome struct {
	NewStatus   string
	EvaluatedAt *time.Time
	Penalty     *models.PenaltyCharge
}

// Evaluate decides the terminal status of a commitment once its goal's end
// date has been reached. actualPercent is the final completion percentage
// (actual rate * 100) for the goal's current plan.
//
// Evaluation is idempotent: a commitment already in a terminal state yields
// its current status with no penalty, so an at-least-once sweep can safely
// re-deliver the trigger. Evaluating an active commitment before goalEnd is
// an error.
func Evaluate(c *models.GoalCommitment, goalEnd time.Time, actualPercent float64, now time.Time) (Outcome, error) {
	if c.Status != models.CommitmentActive {
		return Outcome{NewStatus: c.Status, EvaluatedAt: c.EvaluatedAt}, nil
	}

	if now.Before(goalEnd) {
		return Outcome{}, fmt.Errorf("%w: goal ends %s, cannot evaluate at %s",
			ErrInvalidState, goalEnd.Format(models.DateFormat), now.Format(models.DateFormat))
	}

	evaluatedAt := now
	if actualPercent >= c.ThresholdPercent {
		return Outcome{
			NewStatus:   models.CommitmentAchieved,
			EvaluatedAt: &evaluatedAt,
		}, nil
	}

	return Outcome{
		NewStatus:   models.CommitmentFailed,
		EvaluatedAt: &evaluatedAt,
		Penalty: &models.PenaltyCharge{
			CommitmentID:            c.ID,
			UserID:                  c.UserID,
			Amount:                  c.Amount,
			Currency:                c.Currency,
			ActualCompletionPercent: actualPercent,
			Status:                  models.PenaltyPending,
		},
	}, nil
}

// Cancel transitions an active commitment to cancelled. Unlike evaluation,
// cancellation does not set EvaluatedAt and carries no penalty.
func Cancel(c *models.GoalCommitment) (string, error) {
	if c.Status != models.CommitmentActive {
		return "", fmt.Errorf("%w: cannot cancel commitment with status %q", ErrInvalidState, c.Status)
	}
	return models.CommitmentCancelled, nil
}
