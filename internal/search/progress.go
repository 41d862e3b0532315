package search

import (
	"sync"
	"sync/atomic"
	"time"
)

// Progress receives step reports from a search. Implementations are called
// from the searching goroutine only.
type Progress interface {
	BeginTask(name string, total int)
	SubTask(name string)
	Worked(n int)
	Done()
}

// NopProgress discards all reports.
type NopProgress struct{}

func (NopProgress) BeginTask(string, int) {}
func (NopProgress) SubTask(string)        {}
func (NopProgress) Worked(int)            {}
func (NopProgress) Done()                 {}

// ProgressSnapshot is the state of a Tracker at one point in time.
type ProgressSnapshot struct {
	Task      string        `json:"task"`
	SubTask   string        `json:"sub_task,omitempty"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Done      bool          `json:"done"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Tracker is a Progress that can be read from other goroutines, for example
// by a status printer while a search runs.
type Tracker struct {
	total     int64 // atomic
	completed int64 // atomic
	done      int32 // atomic

	mu        sync.RWMutex
	task      string
	subTask   string
	startTime time.Time

	// onSubTask is called for every sub task when set
	onSubTask func(name string)
}

// NewTracker creates a tracker. onSubTask may be nil.
func NewTracker(onSubTask func(name string)) *Tracker {
	return &Tracker{startTime: time.Now(), onSubTask: onSubTask}
}

// BeginTask implements Progress.
func (t *Tracker) BeginTask(name string, total int) {
	t.mu.Lock()
	t.task = name
	t.subTask = ""
	t.startTime = time.Now()
	t.mu.Unlock()
	atomic.StoreInt64(&t.total, int64(total))
	atomic.StoreInt64(&t.completed, 0)
	atomic.StoreInt32(&t.done, 0)
}

// SubTask implements Progress.
func (t *Tracker) SubTask(name string) {
	t.mu.Lock()
	t.subTask = name
	t.mu.Unlock()
	if t.onSubTask != nil {
		t.onSubTask(name)
	}
}

// Worked implements Progress.
func (t *Tracker) Worked(n int) { atomic.AddInt64(&t.completed, int64(n)) }

// Done implements Progress.
func (t *Tracker) Done() { atomic.StoreInt32(&t.done, 1) }

// Snapshot returns the current progress.
func (t *Tracker) Snapshot() ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return ProgressSnapshot{
		Task:      t.task,
		SubTask:   t.subTask,
		Total:     int(atomic.LoadInt64(&t.total)),
		Completed: int(atomic.LoadInt64(&t.completed)),
		Done:      atomic.LoadInt32(&t.done) == 1,
		Elapsed:   time.Since(t.startTime),
	}
}
