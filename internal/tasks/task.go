// Package tasks runs the dashboard's long-lived background jobs: simulated
// uploads, backups and syncs. Each task advances on a fixed tick, reports
// progress over the event bus, and can be canceled mid-flight.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a task.
type Type string

const (
	TypeUpload Type = "upload"
	TypeBackup Type = "backup"
	TypeSync   Type = "sync"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether a task in this status will not change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Task is one background job. Progress runs 0-100.
type Task struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Name       string     `json:"name"`
	Progress   float64    `json:"progress"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newTask(typ Type, name string, now time.Time) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      typ,
		Name:      name,
		Status:    StatusPending,
		StartedAt: now,
	}
}

// ProgressEvent is the payload published on every tick.
type ProgressEvent struct {
	ID       string  `json:"id"`
	Type     Type    `json:"type"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

func (t *Task) progressEvent() ProgressEvent {
	return ProgressEvent{
		ID:       t.ID,
		Type:     t.Type,
		Name:     t.Name,
		Progress: t.Progress,
		Status:   t.Status,
		Error:    t.Error,
	}
}
