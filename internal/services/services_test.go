package services

import (
	"testing"
	"time"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per test so parallel tests never share state; cache=shared
	// keeps every pooled connection on the same in-memory database.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.MigrateWith(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateFormat, s)
	require.NoError(t, err)
	return d
}

// seedGoal creates a user, a goal with the given window, a current plan and
// tasks with the requested done count.
func seedGoal(t *testing.T, db *gorm.DB, start, end string, total, done int) (*models.User, *models.Goal, *models.Plan) {
	t.Helper()

	user := models.User{Email: uuid.NewString() + "@example.com", Name: "tester"}
	require.NoError(t, db.Create(&user).Error)

	goal := models.Goal{
		UserID:     user.ID,
		Title:      "Ship the thing",
		PeriodType: models.PeriodCustom,
		StartDate:  mustDate(t, start),
		EndDate:    mustDate(t, end),
		Status:     "active",
	}
	require.NoError(t, db.Create(&goal).Error)

	plan := models.Plan{GoalID: goal.ID, Version: 1, Source: models.PlanSourceManual, CreatedBy: models.CreatedByUser}
	require.NoError(t, db.Create(&plan).Error)
	require.NoError(t, db.Model(&models.Goal{}).Where("id = ?", goal.ID).
		Update("current_plan_id", plan.ID).Error)
	goal.CurrentPlanID = &plan.ID

	for i := 0; i < total; i++ {
		task := models.Task{
			PlanID:     plan.ID,
			Title:      "task",
			OrderIndex: i,
			Status:     models.TaskTodo,
		}
		if i < done {
			now := time.Now()
			task.Status = models.TaskDone
			task.DoneAt = &now
		}
		require.NoError(t, db.Create(&task).Error)
	}

	return &user, &goal, &plan
}
