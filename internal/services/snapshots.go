package services

import (
	"fmt"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/progress"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotService recomputes and persists daily progress snapshots.
type SnapshotService struct {
	db *gorm.DB
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// DateOnly strips the time-of-day so snapshot keys compare as calendar dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TaskCounts returns (total, done) for a plan. Dropped tasks stay in the
// denominator; only done counts toward the numerator.
func TaskCounts(db *gorm.DB, planID uuid.UUID) (int, int, error) {
	var total, done int64
	if err := db.Model(&models.Task{}).Where("plan_id = ?", planID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Task{}).
		Where("plan_id = ? AND status = ?", planID, models.TaskDone).
		Count(&done).Error; err != nil {
		return 0, 0, err
	}
	return int(total), int(done), nil
}

// Refresh recomputes a goal's snapshot for a date and upserts it. Rerunning
// for the same (goal, date) overwrites the rates instead of duplicating the
// row, so concurrent recomputation is harmless.
func (s *SnapshotService) Refresh(goalID uuid.UUID, date time.Time) (*models.ProgressSnapshot, error) {
	var goal models.Goal
	if err := s.db.First(&goal, goalID).Error; err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if goal.CurrentPlanID == nil {
		return nil, fmt.Errorf("goal %s has no current plan", goalID)
	}

	total, done, err := TaskCounts(s.db, *goal.CurrentPlanID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	day := DateOnly(date)
	st, err := progress.Compute(total, done, goal.StartDate, goal.EndDate, day)
	if err != nil {
		return nil, err
	}

	snap := models.ProgressSnapshot{
		GoalID:       goalID,
		SnapshotDate: day,
		TotalTasks:   total,
		DoneTasks:    done,
		ActualRate:   st.ActualRate,
		IdealRate:    st.IdealRate,
		GapRate:      st.GapRate,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "goal_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_tasks", "done_tasks", "actual_rate", "ideal_rate", "gap_rate",
		}),
	}).Create(&snap).Error
	if err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}

	return &snap, nil
}
