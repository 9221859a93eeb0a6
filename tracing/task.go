package tracing

import "time"

// Kinds of tasks.
const (
	KindTransaction = "transaction"
	KindBuffer      = "buffer"
	KindWait        = "wait"
)

// What a task does.
const (
	WhatRead      = "read"
	WhatByteWrite = "byte_write"
	WhatPageWrite = "page_write"
	WhatFlush     = "flush"
	WhatSettle    = "settle"
)

// A Task is a unit of work done by a controller, usually one bus
// transaction.
type Task struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	What      string    `json:"what"`
	Where     string    `json:"where"`
	Address   int       `json:"address"`
	ByteSize  int       `json:"byte_size"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Error     string    `json:"error,omitempty"`
}

// Duration returns how long the task took.
func (t Task) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// Failed reports whether the task ended with an error.
func (t Task) Failed() bool {
	return t.Error != ""
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a filter that accepts every task.
func AllTasks(Task) bool {
	return true
}
