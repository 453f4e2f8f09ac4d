package entity

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID
	URL         string
	Goal        string
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
	Steps       []Step
	Result      string
	Error       string
	Confidence  float64
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

type Step struct {
	ID          uuid.UUID
	Index       int
	Action      string
	Description string
	Strategy    string
	Timestamp   time.Time
	Success     bool
	Substituted bool
	Error       string
}

// RunRequest is one goal-driven navigation run.
type RunRequest struct {
	URL      string
	Goal     string
	MaxSteps int
}

// DecisionRequest is everything the decision service sees for one step.
type DecisionRequest struct {
	Goal        string
	URL         string
	Step        int
	MaxSteps    int
	Scan        *ScanResult
	Screenshot  []byte
	LastOutcome string
}
