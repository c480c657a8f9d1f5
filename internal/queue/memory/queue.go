// Package memory contains an in-memory task queue for tests and local
// development.
package memory

import (
	"context"
	"sync"
	"time"
)

// Task captures one enqueued task for inspection.
type Task struct {
	Name     string
	RecordID string
	Delay    time.Duration
}

// Queue records enqueued tasks.
type Queue struct {
	mu    sync.RWMutex
	tasks []Task

	// Err, when set, is returned by every Enqueue.
	Err error
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue records the task.
func (q *Queue) Enqueue(_ context.Context, task, recordID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.tasks = append(q.tasks, Task{Name: task, RecordID: recordID, Delay: delay})
	return nil
}

// Tasks returns the recorded tasks.
func (q *Queue) Tasks() []Task {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Task(nil), q.tasks...)
}

// Close is a no-op; it exists to match the production queue's lifecycle.
func (q *Queue) Close() error { return nil }
