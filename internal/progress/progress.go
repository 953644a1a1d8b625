// Package progress computes how a goal is tracking against its ideal linear
// pace. It is the single source of truth for the ok/warning/danger thresholds;
// every consumer (handlers, snapshot service, commitment evaluator) classifies
// through it rather than carrying its own literals.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
)

// ErrInvalidArgument is returned for malformed inputs: negative task counts,
// doneTasks above totalTasks, or an end date before the start date.
var ErrInvalidArgument = errors.New("invalid argument")

// Health classifications
const (
	HealthOK      = "ok"
	HealthWarning = "warning"
	HealthDanger  = "danger"
)

// Gap thresholds. Boundaries are inclusive toward the better status:
// a gap of exactly -0.10 is ok, exactly -0.25 is danger.
const (
	warningThreshold = -0.10
	dangerThreshold  = -0.25
)

// Status is the result of a progress computation. GapRate is signed:
// positive means ahead of the ideal pace, negative means behind.
type Status struct {
	IdealRate  float64 `json:"idealRate"`
	ActualRate float64 `json:"actualRate"`
	GapRate    float64 `json:"gapRate"`
	Status     string  `json:"status"` // ok, warning, danger
}

// Compute derives the progress status for a goal window as of a given day.
// The ideal rate is the fraction of the window elapsed (0 before start,
// 1 at or after end); the actual rate is doneTasks/totalTasks, or 0 for an
// empty plan. A zero or negative-length window counts as a single day.
func Compute(totalTasks, doneTasks int, startDate, endDate, asOf time.Time) (Status, error) {
	if totalTasks < 0 {
		return Status{}, fmt.Errorf("%w: totalTasks must be non-negative, got %d", ErrInvalidArgument, totalTasks)
	}
	if doneTasks < 0 {
		return Status{}, fmt.Errorf("%w: doneTasks must be non-negative, got %d", ErrInvalidArgument, doneTasks)
	}
	if doneTasks > totalTasks {
		return Status{}, fmt.Errorf("%w: doneTasks %d exceeds totalTasks %d", ErrInvalidArgument, doneTasks, totalTasks)
	}
	if endDate.Before(startDate) {
		return Status{}, fmt.Errorf("%w: end date %s before start date %s",
			ErrInvalidArgument, endDate.Format(models.DateFormat), startDate.Format(models.DateFormat))
	}

	totalDays := math.Max(1, daysBetween(startDate, endDate))
	elapsedDays := math.Max(0, daysBetween(startDate, asOf))
	if elapsedDays > totalDays {
		elapsedDays = totalDays
	}

	idealRate := math.Min(1, math.Max(0, elapsedDays/totalDays))

	actualRate := 0.0
	if totalTasks > 0 {
		actualRate = float64(doneTasks) / float64(totalTasks)
	}

	gapRate := actualRate - idealRate

	return Status{
		IdealRate:  idealRate,
		ActualRate: actualRate,
		GapRate:    gapRate,
		Status:     Classify(gapRate),
	}, nil
}

// FromSnapshot re-classifies persisted rates without recomputing them.
func FromSnapshot(s models.ProgressSnapshot) Status {
	return Status{
		IdealRate:  s.IdealRate,
		ActualRate: s.ActualRate,
		GapRate:    s.GapRate,
		Status:     Classify(s.GapRate),
	}
}

// Classify maps a gap rate onto the tri-state health of a goal.
func Classify(gapRate float64) string {
	switch {
	case gapRate >= warningThreshold:
		return HealthOK
	case gapRate > dangerThreshold:
		return HealthWarning
	default:
		return HealthDanger
	}
}

// daysBetween returns the whole number of days from a to b, rounding
// partial days up. Negative when b precedes a.
func daysBetween(a, b time.Time) float64 {
	return math.Ceil(b.Sub(a).Hours() / 24)
}
