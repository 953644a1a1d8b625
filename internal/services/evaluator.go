package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arnold/pacegoals-api/internal/commitment"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/progress"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier sends an out-of-band notification to a user's device.
type Notifier interface {
	SendToUser(userID uuid.UUID, title, body string, data map[string]string)
}

// Broadcaster pushes realtime events to clients watching a goal.
type Broadcaster interface {
	Broadcast(goalID uuid.UUID, eventType string, data interface{})
}

// Evaluator sweeps commitments whose goals have passed their end date and
// finalizes them. The sweep is safe for at-least-once scheduling: the status
// transition is applied with a guard on status = active, so a concurrent or
// repeated sweep observes zero affected rows and creates no second penalty.
type Evaluator struct {
	db        *gorm.DB
	snapshots *SnapshotService
	notifier  Notifier
	hub       Broadcaster
	now       func() time.Time
}

func NewEvaluator(db *gorm.DB, notifier Notifier, hub Broadcaster, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{
		db:        db,
		snapshots: NewSnapshotService(db),
		notifier:  notifier,
		hub:       hub,
		now:       now,
	}
}

// Run sweeps on an interval until the context is cancelled.
func (e *Evaluator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluated, err := e.Sweep()
			if err != nil {
				log.Printf("evaluator: sweep failed: %v", err)
			} else if evaluated > 0 {
				log.Printf("evaluator: finalized %d commitment(s)", evaluated)
			}
		}
	}
}

// Sweep evaluates every active commitment whose goal end date has passed.
// Returns the number of commitments transitioned.
func (e *Evaluator) Sweep() (int, error) {
	today := DateOnly(e.now())

	var due []models.GoalCommitment
	err := e.db.
		Joins("JOIN goals ON goals.id = goal_commitments.goal_id").
		Where("goal_commitments.status = ? AND goals.end_date <= ? AND goals.deleted_at IS NULL",
			models.CommitmentActive, today).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("list due commitments: %w", err)
	}

	evaluated := 0
	for i := range due {
		transitioned, err := e.EvaluateOne(&due[i])
		if err != nil {
			log.Printf("evaluator: commitment %s: %v", due[i].ID, err)
			continue
		}
		if transitioned {
			evaluated++
		}
	}
	return evaluated, nil
}

// EvaluateOne finalizes a single commitment. Reports whether this call won
// the transition (false when another sweep got there first or the commitment
// was already terminal).
func (e *Evaluator) EvaluateOne(c *models.GoalCommitment) (bool, error) {
	var goal models.Goal
	if err := e.db.First(&goal, c.GoalID).Error; err != nil {
		return false, fmt.Errorf("load goal: %w", err)
	}

	actualPercent, err := e.finalCompletionPercent(&goal)
	if err != nil {
		return false, err
	}

	out, err := commitment.Evaluate(c, goal.EndDate, actualPercent, e.now())
	if err != nil {
		return false, err
	}
	if out.NewStatus == c.Status {
		// Already terminal; nothing to apply.
		return false, nil
	}

	won := false
	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on status keeps evaluation at-most-once even when
		// two sweeps race.
		res := tx.Model(&models.GoalCommitment{}).
			Where("id = ? AND status = ?", c.ID, models.CommitmentActive).
			Updates(map[string]interface{}{
				"status":       out.NewStatus,
				"evaluated_at": out.EvaluatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true

		if out.Penalty != nil {
			if err := tx.Create(out.Penalty).Error; err != nil {
				return err
			}
		}

		return tx.Create(e.notification(c, &goal, out)).Error
	})
	if err != nil {
		return false, fmt.Errorf("apply transition: %w", err)
	}
	if !won {
		return false, nil
	}

	c.Status = out.NewStatus
	c.EvaluatedAt = out.EvaluatedAt

	e.notify(c, &goal, out)
	return true, nil
}

// finalCompletionPercent computes the goal's completion percentage from the
// final task counts, refreshing the end-date snapshot as a side record.
func (e *Evaluator) finalCompletionPercent(goal *models.Goal) (float64, error) {
	if goal.CurrentPlanID == nil {
		return 0, nil
	}

	if _, err := e.snapshots.Refresh(goal.ID, goal.EndDate); err != nil {
		// Snapshot persistence is best-effort here; the decision only needs
		// the live counts below.
		log.Printf("evaluator: snapshot refresh for goal %s: %v", goal.ID, err)
	}

	total, done, err := TaskCounts(e.db, *goal.CurrentPlanID)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	st, err := progress.Compute(total, done, goal.StartDate, goal.EndDate, goal.EndDate)
	if err != nil {
		return 0, err
	}
	return st.ActualRate * 100, nil
}

func (e *Evaluator) notification(c *models.GoalCommitment, goal *models.Goal, out commitment.Outcome) *models.Notification {
	n := &models.Notification{
		UserID: c.UserID,
		GoalID: &goal.ID,
	}
	if out.NewStatus == models.CommitmentAchieved {
		n.Type = "goal_achieved"
		n.Title = "Goal achieved!"
		n.Body = fmt.Sprintf("You hit your target for \"%s\". Your %s %.0f stake is safe.",
			goal.Title, c.Currency, c.Amount)
	} else {
		n.Type = "penalty_charged"
		n.Title = "Commitment not met"
		n.Body = fmt.Sprintf("\"%s\" ended at %.0f%% completion, below your %.0f%% threshold. A %s %.0f penalty is pending.",
			goal.Title, out.Penalty.ActualCompletionPercent, c.ThresholdPercent, c.Currency, c.Amount)
	}
	return n
}

func (e *Evaluator) notify(c *models.GoalCommitment, goal *models.Goal, out commitment.Outcome) {
	n := e.notification(c, goal, out)
	if e.notifier != nil {
		e.notifier.SendToUser(c.UserID, n.Title, n.Body, map[string]string{
			"goalId":       goal.ID.String(),
			"commitmentId": c.ID.String(),
		})
	}
	if e.hub != nil {
		e.hub.Broadcast(goal.ID, ws.EventCommitmentEvaluated, c)
	}
}
