// Package tracing records what EEPROM controllers do on the bus.
package tracing

// A Tracer can collect task traces. StartTask and EndTask receive the same
// task ID; EndTask carries the final end time, byte size and error.
type Tracer interface {
	StartTask(task Task)
	EndTask(task Task)
}

// MultiTracer forwards tasks to several tracers.
type MultiTracer []Tracer

// StartTask forwards the task start to every tracer.
func (m MultiTracer) StartTask(task Task) {
	for _, t := range m {
		t.StartTask(task)
	}
}

// EndTask forwards the task end to every tracer.
func (m MultiTracer) EndTask(task Task) {
	for _, t := range m {
		t.EndTask(task)
	}
}
