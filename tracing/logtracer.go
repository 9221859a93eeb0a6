package tracing

import (
	"log"
)

// LogTracer writes one line per task start and end to a logger.
type LogTracer struct {
	logger *log.Logger
	filter TaskFilter
}

// NewLogTracer creates a tracer that prints the tasks accepted by the filter.
// A nil filter accepts every task.
func NewLogTracer(logger *log.Logger, filter TaskFilter) *LogTracer {
	if filter == nil {
		filter = AllTasks
	}

	return &LogTracer{
		logger: logger,
		filter: filter,
	}
}

// StartTask prints the start of a task.
func (t *LogTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.logger.Printf("start, %s, %s, %s, %s, 0x%04x, %d\n",
		task.StartTime.Format("15:04:05.000000"),
		task.Where,
		task.ID,
		task.What,
		task.Address,
		task.ByteSize,
	)
}

// EndTask prints the end of a task.
func (t *LogTracer) EndTask(task Task) {
	if !t.filter(task) {
		return
	}

	if task.Failed() {
		t.logger.Printf("fail, %s, %s, %s, %s\n",
			task.EndTime.Format("15:04:05.000000"),
			task.Where,
			task.ID,
			task.Error,
		)

		return
	}

	t.logger.Printf("end, %s, %s, %s, %d, %s\n",
		task.EndTime.Format("15:04:05.000000"),
		task.Where,
		task.ID,
		task.ByteSize,
		task.Duration(),
	)
}
