package tracing

import (
	"bytes"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StatsTracer", func() {
	var (
		tracer *StatsTracer
		start  time.Time
	)

	task := func(id, what string, size int, d time.Duration) Task {
		return Task{
			ID:        id,
			Kind:      KindTransaction,
			What:      what,
			ByteSize:  size,
			StartTime: start,
			EndTime:   start.Add(d),
		}
	}

	BeforeEach(func() {
		tracer = NewStatsTracer(nil)
		start = time.Unix(10, 0)
	})

	It("should sum up tasks by what they do", func() {
		for _, t := range []Task{
			task("1", WhatByteWrite, 1, time.Millisecond),
			task("2", WhatByteWrite, 1, 3*time.Millisecond),
			task("3", WhatPageWrite, 32, 2*time.Millisecond),
		} {
			tracer.StartTask(t)
			tracer.EndTask(t)
		}

		stats := tracer.Stats()

		Expect(stats).To(HaveLen(2))
		Expect(stats[0].What).To(Equal(WhatByteWrite))
		Expect(stats[0].Count).To(Equal(uint64(2)))
		Expect(stats[0].Bytes).To(Equal(uint64(2)))
		Expect(stats[0].TotalTime).To(Equal(4 * time.Millisecond))
		Expect(stats[0].AverageTime).To(Equal(2 * time.Millisecond))
		Expect(stats[1].What).To(Equal(WhatPageWrite))
		Expect(stats[1].Bytes).To(Equal(uint64(32)))
	})

	It("should count failures without their bytes", func() {
		t := task("1", WhatRead, 4, time.Millisecond)
		tracer.StartTask(t)
		t.Error = "nack"
		t.ByteSize = 0
		tracer.EndTask(t)

		stats := tracer.Stats()
		Expect(stats).To(HaveLen(1))
		Expect(stats[0].Failed).To(Equal(uint64(1)))
		Expect(stats[0].Bytes).To(Equal(uint64(0)))
	})

	It("should ignore tasks that never started", func() {
		tracer.EndTask(task("1", WhatRead, 1, time.Millisecond))

		Expect(tracer.Stats()).To(BeEmpty())
	})

	It("should track tasks in flight", func() {
		tracer.StartTask(task("1", WhatRead, 1, time.Millisecond))

		Expect(tracer.InflightCount()).To(Equal(1))

		tracer.Reset()

		Expect(tracer.InflightCount()).To(Equal(0))
	})

	It("should apply the filter", func() {
		tracer = NewStatsTracer(func(t Task) bool {
			return t.Kind == KindTransaction
		})

		wait := task("1", WhatSettle, 0, time.Millisecond)
		wait.Kind = KindWait
		tracer.StartTask(wait)
		tracer.EndTask(wait)

		Expect(tracer.Stats()).To(BeEmpty())
	})
})

var _ = Describe("LogTracer", func() {
	It("should print task starts and ends", func() {
		var buf bytes.Buffer
		tracer := NewLogTracer(log.New(&buf, "", 0), nil)
		t := Task{
			ID:        "5",
			What:      WhatPageWrite,
			Where:     "EEPROM",
			Address:   0x40,
			ByteSize:  32,
			StartTime: time.Unix(0, 0),
			EndTime:   time.Unix(0, int64(time.Millisecond)),
		}

		tracer.StartTask(t)
		tracer.EndTask(t)

		Expect(buf.String()).To(ContainSubstring("start, "))
		Expect(buf.String()).To(ContainSubstring("EEPROM, 5, page_write, 0x0040, 32"))
		Expect(buf.String()).To(ContainSubstring("EEPROM, 5, 32, 1ms"))
	})

	It("should print failures", func() {
		var buf bytes.Buffer
		tracer := NewLogTracer(log.New(&buf, "", 0), nil)

		tracer.EndTask(Task{ID: "1", Where: "EEPROM", Error: "nack"})

		Expect(buf.String()).To(ContainSubstring("fail, "))
		Expect(buf.String()).To(ContainSubstring("EEPROM, 1, nack"))
	})
})

var _ = Describe("MultiTracer", func() {
	It("should forward to every tracer", func() {
		a := NewStatsTracer(nil)
		b := NewStatsTracer(nil)
		m := MultiTracer{a, b}
		t := Task{ID: "1", What: WhatRead, ByteSize: 1}

		m.StartTask(t)
		m.EndTask(t)

		Expect(a.Stats()).To(HaveLen(1))
		Expect(b.Stats()).To(HaveLen(1))
	})
})
