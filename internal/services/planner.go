package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskSuggestion is one proposed task from the planner.
type TaskSuggestion struct {
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Priority      int     `json:"priority"`
	EstimatedDays *int    `json:"estimatedDays,omitempty"`
}

// SplitResult is the planner's breakdown of a goal into tasks.
type SplitResult struct {
	Tasks     []TaskSuggestion `json:"tasks"`
	Reasoning string           `json:"reasoning"`
	RunID     *uuid.UUID       `json:"-"`
}

// ReplanResult is the planner's revision of an in-flight plan.
type ReplanResult struct {
	Tasks          []TaskSuggestion `json:"tasks"`
	Reasoning      string           `json:"reasoning"`
	DroppedTaskIDs []uuid.UUID      `json:"droppedTaskIds"`
	RunID          *uuid.UUID       `json:"-"`
}

// Planner generates task breakdowns for goals. The current implementation is
// a deterministic heuristic standing in for a model-backed generator; every
// invocation is recorded as an AIRun for auditability either way.
type Planner struct {
	db *gorm.DB
}

func NewPlanner(db *gorm.DB) *Planner {
	return &Planner{db: db}
}

const (
	plannerModel         = "mock"
	plannerPromptVersion = "mock-v1"
)

// SplitGoal proposes between 3 and 10 tasks sized to the goal window
// (roughly one task per week).
func (p *Planner) SplitGoal(userID, goalID uuid.UUID, title string, description *string, startDate, endDate time.Time) (*SplitResult, error) {
	run := p.startRun(userID, goalID, models.AIRunSplit, map[string]interface{}{
		"title":       title,
		"description": description,
		"startDate":   startDate.Format(models.DateFormat),
		"endDate":     endDate.Format(models.DateFormat),
	})

	days := int(math.Ceil(endDate.Sub(startDate).Hours() / 24))
	if days < 1 {
		days = 1
	}
	numTasks := days / 7
	if numTasks < 3 {
		numTasks = 3
	}
	if numTasks > 10 {
		numTasks = 10
	}
	estimated := (days + numTasks - 1) / numTasks

	tasks := make([]TaskSuggestion, 0, numTasks)
	for i := 1; i <= numTasks; i++ {
		priority := 2
		if i <= 2 {
			priority = 1
		}
		est := estimated
		desc := fmt.Sprintf("Step %d toward \"%s\"", i, title)
		tasks = append(tasks, TaskSuggestion{
			Title:         fmt.Sprintf("%s: step %d", title, i),
			Description:   &desc,
			Priority:      priority,
			EstimatedDays: &est,
		})
	}

	result := &SplitResult{
		Tasks:     tasks,
		Reasoning: fmt.Sprintf("Split \"%s\" into %d tasks across a %d-day window.", title, numTasks, days),
	}
	if run != nil {
		result.RunID = &run.ID
	}

	p.finishRun(run, result)
	return result, nil
}

// ReplanTasks revises the unfinished portion of a plan against the time left:
// it keeps the highest-priority unfinished tasks that still fit (one per three
// remaining days) and proposes dropping the rest.
func (p *Planner) ReplanTasks(userID, goalID uuid.UUID, goalTitle string, current []models.Task, daysRemaining int) (*ReplanResult, error) {
	taskInput := make([]map[string]interface{}, 0, len(current))
	for _, t := range current {
		taskInput = append(taskInput, map[string]interface{}{
			"id": t.ID, "title": t.Title, "status": t.Status,
		})
	}
	run := p.startRun(userID, goalID, models.AIRunReplan, map[string]interface{}{
		"title":         goalTitle,
		"tasks":         taskInput,
		"daysRemaining": daysRemaining,
	})

	if daysRemaining < 0 {
		daysRemaining = 0
	}

	incomplete := make([]models.Task, 0, len(current))
	for _, t := range current {
		if t.Status != models.TaskDone {
			incomplete = append(incomplete, t)
		}
	}
	sort.SliceStable(incomplete, func(i, j int) bool {
		return incomplete[i].Priority < incomplete[j].Priority
	})

	keepCount := (daysRemaining + 2) / 3
	if keepCount > len(incomplete) {
		keepCount = len(incomplete)
	}
	keep := incomplete[:keepCount]

	dropped := make([]uuid.UUID, 0, len(incomplete)-keepCount)
	for _, t := range incomplete[keepCount:] {
		dropped = append(dropped, t.ID)
	}

	estimated := 1
	if keepCount > 0 {
		estimated = daysRemaining / keepCount
		if estimated < 1 {
			estimated = 1
		}
	}

	tasks := make([]TaskSuggestion, 0, keepCount)
	for i, t := range keep {
		est := estimated
		tasks = append(tasks, TaskSuggestion{
			Title:         t.Title,
			Description:   t.Description,
			Priority:      i + 1,
			EstimatedDays: &est,
		})
	}

	reasoning := fmt.Sprintf("Reviewed %d unfinished task(s) with %d day(s) remaining. ", len(incomplete), daysRemaining)
	if len(dropped) > 0 {
		reasoning += fmt.Sprintf("Suggest dropping the %d lowest-priority task(s).", len(dropped))
	} else {
		reasoning += "All tasks still fit the remaining time."
	}

	result := &ReplanResult{
		Tasks:          tasks,
		Reasoning:      reasoning,
		DroppedTaskIDs: dropped,
	}
	if run != nil {
		result.RunID = &run.ID
	}

	p.finishRun(run, result)
	return result, nil
}

// startRun records a running AIRun. Failure to record is logged, not fatal;
// planning should not break because the audit row could not be written.
func (p *Planner) startRun(userID, goalID uuid.UUID, runType string, input map[string]interface{}) *models.AIRun {
	run := &models.AIRun{
		UserID:        userID,
		Type:          runType,
		PromptVersion: plannerPromptVersion,
		Model:         plannerModel,
		Status:        "running",
	}
	if goalID != uuid.Nil {
		run.GoalID = &goalID
	}
	if raw, err := json.Marshal(input); err == nil {
		s := string(raw)
		run.Input = &s
	}

	if p.db != nil {
		if err := p.db.Create(run).Error; err != nil {
			log.Printf("planner: failed to record AI run: %v", err)
			return nil
		}
	}
	return run
}

func (p *Planner) finishRun(run *models.AIRun, output interface{}) {
	if run == nil || p.db == nil {
		return
	}
	updates := map[string]interface{}{"status": "completed"}
	if raw, err := json.Marshal(output); err == nil {
		updates["output"] = string(raw)
	}
	if err := p.db.Model(run).Updates(updates).Error; err != nil {
		log.Printf("planner: failed to finalize AI run: %v", err)
	}
}
