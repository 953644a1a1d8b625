package services

import (
	"testing"
	"time"

	"github.com/arnold/pacegoals-api/internal/commitment"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendToUser(userID uuid.UUID, title, body string, data map[string]string) {
	f.sent = append(f.sent, title)
}

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) Broadcast(goalID uuid.UUID, eventType string, data interface{}) {
	f.events = append(f.events, eventType)
}

func seedCommitment(t *testing.T, db *gorm.DB, user *models.User, goal *models.Goal, threshold float64) *models.GoalCommitment {
	t.Helper()
	cm := models.GoalCommitment{
		GoalID:           goal.ID,
		UserID:           user.ID,
		Amount:           5000,
		Currency:         "JPY",
		ThresholdPercent: threshold,
		Status:           models.CommitmentActive,
	}
	require.NoError(t, db.Create(&cm).Error)
	return &cm
}

func fixedNow(t *testing.T, s string) func() time.Time {
	d := mustDate(t, s)
	return func() time.Time { return d }
}

func TestSweepFailsCommitmentBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 3) // 75%
	cm := seedCommitment(t, db, user, goal, 80)

	notifier := &fakeNotifier{}
	hub := &fakeBroadcaster{}
	ev := NewEvaluator(db, notifier, hub, fixedNow(t, "2024-07-01"))

	n, err := ev.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got models.GoalCommitment
	require.NoError(t, db.First(&got, cm.ID).Error)
	assert.Equal(t, models.CommitmentFailed, got.Status)
	require.NotNil(t, got.EvaluatedAt)

	var penalties []models.PenaltyCharge
	require.NoError(t, db.Where("commitment_id = ?", cm.ID).Find(&penalties).Error)
	require.Len(t, penalties, 1)
	assert.Equal(t, 5000.0, penalties[0].Amount)
	assert.Equal(t, "JPY", penalties[0].Currency)
	assert.Equal(t, 75.0, penalties[0].ActualCompletionPercent)
	assert.Equal(t, models.PenaltyPending, penalties[0].Status)

	var notifications int64
	db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifications)
	assert.EqualValues(t, 1, notifications)

	assert.Len(t, notifier.sent, 1)
	assert.Contains(t, hub.events, "commitment_evaluated")
}

func TestSweepAchievesCommitmentAtThreshold(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 5, 4) // 80%
	cm := seedCommitment(t, db, user, goal, 80)

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-06-30"))

	n, err := ev.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got models.GoalCommitment
	require.NoError(t, db.First(&got, cm.ID).Error)
	assert.Equal(t, models.CommitmentAchieved, got.Status)
	require.NotNil(t, got.EvaluatedAt)

	var penalties int64
	db.Model(&models.PenaltyCharge{}).Where("commitment_id = ?", cm.ID).Count(&penalties)
	assert.EqualValues(t, 0, penalties, "achieved commitments carry no penalty")
}

func TestSweepIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 0)
	cm := seedCommitment(t, db, user, goal, 50)

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-07-01"))

	n, err := ev.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Second delivery of the same trigger.
	n, err = ev.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var penalties int64
	db.Model(&models.PenaltyCharge{}).Where("commitment_id = ?", cm.ID).Count(&penalties)
	assert.EqualValues(t, 1, penalties, "re-sweeping must not create a second penalty")
}

func TestSweepIgnoresGoalsStillRunning(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 0)
	cm := seedCommitment(t, db, user, goal, 50)

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-06-15"))

	n, err := ev.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var got models.GoalCommitment
	require.NoError(t, db.First(&got, cm.ID).Error)
	assert.Equal(t, models.CommitmentActive, got.Status)
}

func TestEvaluateOneBeforeEndDateIsInvalid(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 4)
	cm := seedCommitment(t, db, user, goal, 80)

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-06-10"))

	_, err := ev.EvaluateOne(cm)
	assert.ErrorIs(t, err, commitment.ErrInvalidState)
}

func TestEvaluateOneSkipsCancelledCommitment(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 0)
	cm := seedCommitment(t, db, user, goal, 50)
	require.NoError(t, db.Model(cm).Update("status", models.CommitmentCancelled).Error)
	cm.Status = models.CommitmentCancelled

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-07-01"))

	transitioned, err := ev.EvaluateOne(cm)
	require.NoError(t, err)
	assert.False(t, transitioned)

	var penalties int64
	db.Model(&models.PenaltyCharge{}).Where("commitment_id = ?", cm.ID).Count(&penalties)
	assert.EqualValues(t, 0, penalties)
}

func TestSweepWritesEndDateSnapshot(t *testing.T) {
	db := newTestDB(t)
	user, goal, _ := seedGoal(t, db, "2024-06-01", "2024-06-30", 4, 1)
	seedCommitment(t, db, user, goal, 50)

	ev := NewEvaluator(db, &fakeNotifier{}, &fakeBroadcaster{}, fixedNow(t, "2024-07-02"))
	_, err := ev.Sweep()
	require.NoError(t, err)

	var snap models.ProgressSnapshot
	require.NoError(t, db.Where("goal_id = ?", goal.ID).First(&snap).Error)
	assert.Equal(t, 4, snap.TotalTasks)
	assert.Equal(t, 1, snap.DoneTasks)
	assert.Equal(t, 1.0, snap.IdealRate)
}
