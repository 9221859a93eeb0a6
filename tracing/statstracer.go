package tracing

import (
	"sort"
	"sync"
	"time"
)

// TaskStats summarizes the tasks of one kind of work.
type TaskStats struct {
	What        string        `json:"what"`
	Count       uint64        `json:"count"`
	Failed      uint64        `json:"failed"`
	Bytes       uint64        `json:"bytes"`
	TotalTime   time.Duration `json:"total_time"`
	AverageTime time.Duration `json:"average_time"`
}

// StatsTracer counts tasks, bytes and time per kind of work. If the execution
// of two tasks overlaps, their times are simply added together.
type StatsTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]Task
	stats         map[string]*TaskStats
}

// NewStatsTracer creates a StatsTracer that only counts tasks accepted by the
// filter. A nil filter accepts every task.
func NewStatsTracer(filter TaskFilter) *StatsTracer {
	if filter == nil {
		filter = AllTasks
	}

	return &StatsTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
		stats:         make(map[string]*TaskStats),
	}
}

// StartTask records the task start.
func (t *StatsTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// EndTask adds a finished task to the statistics.
func (t *StatsTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}
	delete(t.inflightTasks, task.ID)

	s, ok := t.stats[originalTask.What]
	if !ok {
		s = &TaskStats{What: originalTask.What}
		t.stats[originalTask.What] = s
	}

	s.Count++
	s.TotalTime += task.EndTime.Sub(originalTask.StartTime)
	s.AverageTime = s.TotalTime / time.Duration(s.Count)

	if task.Failed() {
		s.Failed++
		return
	}

	s.Bytes += uint64(task.ByteSize)
}

// Stats returns the statistics of every kind of work seen, sorted by name.
func (t *StatsTracer) Stats() []TaskStats {
	t.lock.Lock()
	defer t.lock.Unlock()

	list := make([]TaskStats, 0, len(t.stats))
	for _, s := range t.stats {
		list = append(list, *s)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].What < list[j].What
	})

	return list
}

// InflightCount returns the number of tasks started but not yet ended.
func (t *StatsTracer) InflightCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.inflightTasks)
}

// Reset forgets all statistics.
func (t *StatsTracer) Reset() {
	t.lock.Lock()
	t.inflightTasks = make(map[string]Task)
	t.stats = make(map[string]*TaskStats)
	t.lock.Unlock()
}
