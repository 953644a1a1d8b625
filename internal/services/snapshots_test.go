package services

import (
	"testing"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRefreshComputesRates(t *testing.T) {
	db := newTestDB(t)
	_, goal, _ := seedGoal(t, db, "2024-01-01", "2024-01-11", 10, 5)

	svc := NewSnapshotService(db)
	snap, err := svc.Refresh(goal.ID, mustDate(t, "2024-01-06"))
	require.NoError(t, err)

	assert.Equal(t, 10, snap.TotalTasks)
	assert.Equal(t, 5, snap.DoneTasks)
	assert.Equal(t, 0.5, snap.IdealRate)
	assert.Equal(t, 0.5, snap.ActualRate)
	assert.Equal(t, 0.0, snap.GapRate)
	assert.Equal(t, progress.HealthOK, progress.FromSnapshot(*snap).Status)
}

func TestSnapshotRefreshIsIdempotentPerDay(t *testing.T) {
	db := newTestDB(t)
	_, goal, plan := seedGoal(t, db, "2024-01-01", "2024-01-11", 4, 1)

	svc := NewSnapshotService(db)
	_, err := svc.Refresh(goal.ID, mustDate(t, "2024-01-06"))
	require.NoError(t, err)

	// Another task gets done, the same day is recomputed.
	var task models.Task
	require.NoError(t, db.Where("plan_id = ? AND status = ?", plan.ID, models.TaskTodo).
		First(&task).Error)
	require.NoError(t, db.Model(&task).Update("status", models.TaskDone).Error)

	_, err = svc.Refresh(goal.ID, mustDate(t, "2024-01-06"))
	require.NoError(t, err)

	var snaps []models.ProgressSnapshot
	require.NoError(t, db.Where("goal_id = ?", goal.ID).Find(&snaps).Error)
	require.Len(t, snaps, 1, "recomputation must overwrite, not duplicate")
	assert.Equal(t, 2, snaps[0].DoneTasks)
	assert.Equal(t, 0.5, snaps[0].ActualRate)
}

func TestSnapshotRefreshDistinctDays(t *testing.T) {
	db := newTestDB(t)
	_, goal, _ := seedGoal(t, db, "2024-01-01", "2024-01-11", 4, 2)

	svc := NewSnapshotService(db)
	_, err := svc.Refresh(goal.ID, mustDate(t, "2024-01-05"))
	require.NoError(t, err)
	_, err = svc.Refresh(goal.ID, mustDate(t, "2024-01-06"))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ProgressSnapshot{}).
		Where("goal_id = ?", goal.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
