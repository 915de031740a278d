package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// ExtractTask represents an async extraction task for a tracked URL.
type ExtractTask struct {
	ID          string         `json:"id"`
	URLID       int            `json:"url_id"`
	Status      TaskStatus     `json:"status"`
	Message     string         `json:"message"`
	Result      *ProductRecord `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// NewExtractTask creates a new queued extraction task.
func NewExtractTask(urlID int) *ExtractTask {
	return &ExtractTask{
		ID:        generateTaskID(),
		URLID:     urlID,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *ExtractTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Extracting product data..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with result
func (t *ExtractTask) Complete(result *ProductRecord) {
	t.Status = TaskStatusCompleted
	t.Message = "Extraction completed"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with an error message
func (t *ExtractTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Extraction failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *ExtractTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is queued or running
func (t *ExtractTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task ran, or 0 if it never started.
func (t *ExtractTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	if t.CompletedAt != nil {
		return t.CompletedAt.Sub(*t.StartedAt)
	}
	return time.Since(*t.StartedAt)
}

func generateTaskID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return "task_" + hex.EncodeToString(b)
}
