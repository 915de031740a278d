package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/models"
)

func waitForTask(t *testing.T, tm *TaskManager, taskID string) *models.ExtractTask {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("task %s never reached a final state", taskID)
		case <-time.After(10 * time.Millisecond):
			task, ok := tm.GetTask(taskID)
			require.True(t, ok)
			if task.IsCompleted() {
				return task
			}
		}
	}
}

func TestTaskCompletes(t *testing.T) {
	var calls int32
	tm := NewTaskManager(func(urlID int) (*models.ProductRecord, error) {
		atomic.AddInt32(&calls, 1)
		record := &models.ProductRecord{URL: "https://shop.example.com/p/1", Title: "Test Product"}
		record.SetPrice(1499)
		return record, nil
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(42)
	assert.Equal(t, models.TaskStatusQueued, task.Status)
	assert.Equal(t, 42, task.URLID)

	done := waitForTask(t, tm, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 1499.0, done.Result.GetPrice())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTaskFailureCarriesError(t *testing.T) {
	tm := NewTaskManager(func(urlID int) (*models.ProductRecord, error) {
		return nil, errors.New("url not found")
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(7)
	done := waitForTask(t, tm, task.ID)

	assert.Equal(t, models.TaskStatusFailed, done.Status)
	assert.Contains(t, done.Error, "url not found")
	assert.Nil(t, done.Result)
}

func TestGetTaskUnknownID(t *testing.T) {
	tm := NewTaskManager(func(urlID int) (*models.ProductRecord, error) {
		return &models.ProductRecord{}, nil
	}, 1)
	defer tm.Stop()

	_, ok := tm.GetTask("task_does_not_exist")
	assert.False(t, ok)
}

func TestStatsCountTasks(t *testing.T) {
	tm := NewTaskManager(func(urlID int) (*models.ProductRecord, error) {
		return &models.ProductRecord{}, nil
	}, 2)
	defer tm.Stop()

	first := tm.SubmitTask(1)
	second := tm.SubmitTask(2)
	waitForTask(t, tm, first.ID)
	waitForTask(t, tm, second.ID)

	stats := tm.GetStats()
	assert.Equal(t, 2, stats["total_tasks"])
	assert.Equal(t, 2, stats["max_workers"])
}

func TestCleanupRemovesOldCompletedTasks(t *testing.T) {
	tm := NewTaskManager(func(urlID int) (*models.ProductRecord, error) {
		return &models.ProductRecord{}, nil
	}, 1)
	defer tm.Stop()

	task := tm.SubmitTask(1)
	waitForTask(t, tm, task.ID)

	// Backdate the task so the cleanup cutoff catches it.
	task.CreatedAt = time.Now().Add(-2 * time.Hour)
	tm.CleanupOldTasks(time.Hour)

	_, ok := tm.GetTask(task.ID)
	assert.False(t, ok)
}
