package services

import (
	"testing"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitGoalSizesTasksToWindow(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-01-01", "2024-03-11", 0, 0) // 70 days

	p := NewPlanner(db)
	result, err := p.SplitGoal(user.ID, goal.ID, goal.Title, nil, goal.StartDate, goal.EndDate)
	require.NoError(t, err)

	require.Len(t, result.Tasks, 10) // 70/7, capped at 10
	assert.Equal(t, 1, result.Tasks[0].Priority)
	assert.Equal(t, 1, result.Tasks[1].Priority)
	assert.Equal(t, 2, result.Tasks[2].Priority)
	require.NotNil(t, result.Tasks[0].EstimatedDays)
	assert.Equal(t, 7, *result.Tasks[0].EstimatedDays)
	assert.NotEmpty(t, result.Reasoning)

	// The run is recorded and finalized.
	require.NotNil(t, result.RunID)
	var run models.AIRun
	require.NoError(t, db.First(&run, *result.RunID).Error)
	assert.Equal(t, models.AIRunSplit, run.Type)
	assert.Equal(t, "completed", run.Status)
	assert.NotNil(t, run.Input)
	assert.NotNil(t, run.Output)
}

func TestSplitGoalShortWindowFloorsAtThreeTasks(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-01-01", "2024-01-06", 0, 0)

	p := NewPlanner(db)
	result, err := p.SplitGoal(user.ID, goal.ID, goal.Title, nil, goal.StartDate, goal.EndDate)
	require.NoError(t, err)

	assert.Len(t, result.Tasks, 3)
}

func TestReplanKeepsHighestPriorityTasksThatFit(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-01-01", "2024-01-31", 0, 0)

	current := []models.Task{
		{ID: uuid.New(), Title: "done already", Priority: 1, Status: models.TaskDone},
		{ID: uuid.New(), Title: "urgent", Priority: 1, Status: models.TaskTodo},
		{ID: uuid.New(), Title: "important", Priority: 2, Status: models.TaskDoing},
		{ID: uuid.New(), Title: "nice to have", Priority: 5, Status: models.TaskTodo},
		{ID: uuid.New(), Title: "stretch", Priority: 9, Status: models.TaskTodo},
	}

	p := NewPlanner(db)
	// 6 days remaining keeps ceil(6/3) = 2 unfinished tasks.
	result, err := p.ReplanTasks(user.ID, goal.ID, goal.Title, current, 6)
	require.NoError(t, err)

	require.Len(t, result.Tasks, 2)
	assert.Equal(t, "urgent", result.Tasks[0].Title)
	assert.Equal(t, "important", result.Tasks[1].Title)
	assert.Equal(t, 1, result.Tasks[0].Priority)
	assert.Equal(t, 2, result.Tasks[1].Priority)

	require.Len(t, result.DroppedTaskIDs, 2)
	assert.Contains(t, result.DroppedTaskIDs, current[3].ID)
	assert.Contains(t, result.DroppedTaskIDs, current[4].ID)

	require.NotNil(t, result.RunID)
	var run models.AIRun
	require.NoError(t, db.First(&run, *result.RunID).Error)
	assert.Equal(t, models.AIRunReplan, run.Type)
	assert.Equal(t, "completed", run.Status)
}

func TestReplanWithAmpleTimeDropsNothing(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-01-01", "2024-12-31", 0, 0)

	current := []models.Task{
		{ID: uuid.New(), Title: "a", Priority: 1, Status: models.TaskTodo},
		{ID: uuid.New(), Title: "b", Priority: 2, Status: models.TaskTodo},
	}

	p := NewPlanner(db)
	result, err := p.ReplanTasks(user.ID, goal.ID, goal.Title, current, 90)
	require.NoError(t, err)

	assert.Len(t, result.Tasks, 2)
	assert.Empty(t, result.DroppedTaskIDs)
}
