package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/sarchlab/eeprom/bus"
	"github.com/sarchlab/eeprom/bus/i2cdev"
	"github.com/sarchlab/eeprom/bus/simbus"
	"github.com/sarchlab/eeprom/eeprom"
	"github.com/sarchlab/eeprom/monitoring"
	"github.com/sarchlab/eeprom/tracing"
	"github.com/tebeka/atexit"
)

// A session is a controller opened from the configuration, together with
// everything attached to it.
type session struct {
	log     logr.Logger
	ctrl    *eeprom.Controller
	stats   *tracing.StatsTracer
	device  *simbus.Device
	monitor *monitoring.Monitor

	// closers run after pending bytes are flushed, in order.
	closers []func()
}

func newLogger(verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)

	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

func openSession(c *Config) (*session, error) {
	s := &session{
		log:   newLogger(c.Verbosity),
		stats: tracing.NewStatsTracer(nil),
	}

	transport, err := s.openTransport(c)
	if err != nil {
		return nil, err
	}

	tracer, err := s.openTracer(c)
	if err != nil {
		return nil, err
	}

	s.ctrl, err = eeprom.MakeBuilder().
		WithTransport(transport).
		WithAddress(bus.Addr(c.Address)).
		WithModel(c.Model).
		WithTracer(tracer).
		WithLogger(s.log).
		Build("EEPROM")
	if err != nil {
		return nil, err
	}

	atexit.Register(s.close)

	if c.MonitorPort > 0 {
		s.startMonitor(c.MonitorPort)
	}

	return s, nil
}

func (s *session) openTransport(c *Config) (bus.Transport, error) {
	if c.Bus != SimulatedBus {
		t, err := i2cdev.MakeBuilder().WithBusNumber(c.Bus).Build()
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, func() { t.Close() })
		s.log.V(1).Info("opened i2c bus", "bus", c.Bus)

		return t, nil
	}

	s.device = simbus.MakeBuilder().
		WithCapacity(c.Model.Capacity).
		WithPageSize(c.Model.PageSize).
		Build("SimDevice")

	if c.SimImage != "" {
		if err := s.loadImage(c.SimImage); err != nil {
			return nil, err
		}

		s.closers = append(s.closers, func() { s.saveImage(c.SimImage) })
	}

	b := simbus.NewBus(simbus.DefaultBufferSize)
	b.Attach(bus.Addr(c.Address), s.device)
	s.log.V(1).Info("using simulated bus", "image", c.SimImage)

	return b, nil
}

func (s *session) loadImage(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer f.Close()

	return s.device.LoadImage(f)
}

func (s *session) saveImage(path string) {
	f, err := os.Create(path)
	if err != nil {
		s.log.Error(err, "cannot save simulated device", "path", path)
		return
	}
	defer f.Close()

	if err := s.device.SaveImage(f); err != nil {
		s.log.Error(err, "cannot save simulated device", "path", path)
	}
}

func (s *session) openTracer(c *Config) (tracing.Tracer, error) {
	tracers := tracing.MultiTracer{s.stats}

	if c.Trace != "" {
		t := tracing.NewSQLiteTracer(c.Trace)
		if err := t.Init(); err != nil {
			return nil, err
		}

		s.log.Info("recording trace", "file", t.Name())
		tracers = append(tracers, t)
		s.closers = append(s.closers, func() {
			if err := t.Close(); err != nil {
				s.log.Error(err, "cannot write trace", "file", t.Name())
			}
		})
	}

	if c.Verbosity >= 2 {
		tracers = append(tracers,
			tracing.NewLogTracer(log.New(os.Stderr, "", 0), nil))
	}

	return tracers, nil
}

func (s *session) startMonitor(port int) string {
	s.monitor = monitoring.NewMonitor()
	if port > 0 {
		s.monitor.WithPortNumber(port)
	}

	s.monitor.RegisterController(s.ctrl)
	s.monitor.RegisterStatsTracer(s.stats)

	if s.device != nil {
		s.monitor.RegisterDevice(s.device)
	}

	return s.monitor.StartServer()
}

// access runs f with exclusive use of the controller.
func (s *session) access(f func(c *eeprom.Controller) error) error {
	if s.monitor == nil {
		return f(s.ctrl)
	}

	var err error
	s.monitor.Access(func() { err = f(s.ctrl) })

	return err
}

// close writes what is still buffered and releases the bus, the trace
// database and the simulated image.
func (s *session) close() {
	s.flushPending()
	printStats(s)

	for _, f := range s.closers {
		f()
	}
}

func (s *session) flushPending() {
	err := s.access(func(c *eeprom.Controller) error {
		_, err := c.Flush()
		return err
	})
	if err != nil {
		s.log.Error(err, "buffered bytes were not written")
	}
}

// progress tracks an operation on the monitor page if a monitor runs.
type progress struct {
	monitor *monitoring.Monitor
	bar     *monitoring.ProgressBar
}

func (s *session) startProgress(name string, total int) progress {
	if s.monitor == nil {
		return progress{}
	}

	return progress{
		monitor: s.monitor,
		bar:     s.monitor.CreateProgressBar(name, uint64(total)),
	}
}

func (p progress) advance(n int) {
	if p.bar != nil {
		p.bar.IncrementFinished(uint64(n))
	}
}

func (p progress) done() {
	if p.bar != nil {
		p.monitor.CompleteProgressBar(p.bar)
	}
}

func printStats(s *session) {
	for _, st := range s.stats.Stats() {
		s.log.V(1).Info("bus activity",
			"what", st.What,
			"count", st.Count,
			"failed", st.Failed,
			"bytes", st.Bytes,
			"time", st.TotalTime.String())
	}

	if s.device != nil {
		st := s.device.Stats()
		s.log.V(1).Info("simulated device",
			"byteWrites", st.ByteWrites,
			"pageWrites", st.PageWrites,
			"nacks", st.NACKs)
	}
}

func parseNumber(name, s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}

	return int(v), nil
}
