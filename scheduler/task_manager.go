package scheduler

import (
	"log"
	"sync"
	"time"

	"pricewatch/models"
)

// ExtractFunc runs one extraction pass for a tracked URL id.
type ExtractFunc func(urlID int) (*models.ProductRecord, error)

// TaskManager manages async extraction tasks so HTTP callers can kick off
// a check and poll for the result.
type TaskManager struct {
	tasks       map[string]*models.ExtractTask
	taskQueue   chan *models.ExtractTask
	workers     int
	maxWorkers  int
	extractFunc ExtractFunc
	mutex       sync.RWMutex
	stopChan    chan struct{}
}

// NewTaskManager creates a new task manager
func NewTaskManager(extractFunc ExtractFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:       make(map[string]*models.ExtractTask),
		taskQueue:   make(chan *models.ExtractTask, 100),
		maxWorkers:  maxWorkers,
		extractFunc: extractFunc,
		stopChan:    make(chan struct{}),
	}

	go tm.processTasks()
	log.Printf("Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask submits a new extraction task
func (tm *TaskManager) SubmitTask(urlID int) *models.ExtractTask {
	task := models.NewExtractTask(urlID)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("Task %s submitted for URL ID %d", task.ID, urlID)
	default:
		task.Fail("Task queue is full")
		log.Printf("Failed to submit task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.ExtractTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}

	return map[string]interface{}{
		"total_tasks":     len(tm.tasks),
		"active_workers":  tm.workers,
		"max_workers":     tm.maxWorkers,
		"queue_size":      len(tm.taskQueue),
		"tasks_by_status": statusCounts,
	}
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("Task manager stopping...")
}

// CleanupOldTasks removes completed tasks older than maxAge
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
		}
	}
}

// processTasks dispatches queued tasks to workers
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			if tm.workers < tm.maxWorkers {
				tm.workers++
				tm.mutex.Unlock()
				go tm.worker(task)
			} else {
				tm.mutex.Unlock()
				// At capacity: park the task and requeue shortly.
				go func() {
					time.Sleep(time.Second)
					select {
					case tm.taskQueue <- task:
					default:
						task.Fail("System overloaded, unable to process task")
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(time.Hour)

		case <-tm.stopChan:
			log.Println("Task manager stopped")
			return
		}
	}
}

// worker processes a single task
func (tm *TaskManager) worker(task *models.ExtractTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	log.Printf("Worker processing task %s for URL ID %d", task.ID, task.URLID)
	task.Start()

	record, err := tm.extractFunc(task.URLID)
	if err != nil {
		task.Fail("Extraction failed: " + err.Error())
		return
	}

	task.Complete(record)
	log.Printf("Task %s completed in %v", task.ID, task.Duration())
}
