// Package monitoring serves the state of EEPROM controllers over HTTP.
package monitoring

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/eeprom/bus/simbus"
	"github.com/sarchlab/eeprom/eeprom"
	"github.com/sarchlab/eeprom/id"
	"github.com/sarchlab/eeprom/monitoring/web"
	"github.com/sarchlab/eeprom/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// MaxWindow is the largest memory window served in one request.
const MaxWindow = 4096

// Monitor turns a set of controllers into a web server. Controllers are not
// safe for concurrent use, so the monitor serializes every access it makes;
// code that uses a registered controller elsewhere must go through Access.
type Monitor struct {
	lock        sync.Mutex
	controllers []*eeprom.Controller
	devices     map[string]*simbus.Device
	stats       *tracing.StatsTracer
	portNumber  int
	idGenerator id.IDGenerator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		devices:     make(map[string]*simbus.Device),
		idGenerator: id.NewGlobalIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterController registers a controller to be monitored.
func (m *Monitor) RegisterController(c *eeprom.Controller) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.controllers = append(m.controllers, c)
}

// RegisterDevice registers a simulated device whose counters are reported
// with the statistics.
func (m *Monitor) RegisterDevice(d *simbus.Device) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.devices[d.Name()] = d
}

// RegisterStatsTracer sets the tracer whose statistics are reported.
func (m *Monitor) RegisterStatsTracer(t *tracing.StatsTracer) {
	m.stats = t
}

// Access runs f while no request handler uses the controllers.
func (m *Monitor) Access(f func()) {
	m.lock.Lock()
	defer m.lock.Unlock()

	f()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGenerator.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitor API and web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/controllers", m.listControllers).Methods("GET")
	r.HandleFunc("/api/controller/{name}", m.controllerDetails).Methods("GET")
	r.HandleFunc("/api/memory/{name}/{address}/{length}", m.readMemory).
		Methods("GET")
	r.HandleFunc("/api/memory/{name}/{address}", m.writeMemory).
		Methods("POST")
	r.HandleFunc("/api/flush/{name}", m.flush).Methods("POST")
	r.HandleFunc("/api/stats", m.listStats).Methods("GET")
	r.HandleFunc("/api/progress", m.listProgressBars).Methods("GET")
	r.HandleFunc("/api/resource", m.listResources).Methods("GET")
	r.HandleFunc("/api/profile", m.collectProfile).Methods("GET")
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring EEPROM with %s\n", url)

	handler := m.Router()
	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) listControllers(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.controllers))
	for _, c := range m.controllers {
		names = append(names, c.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) controllerDetails(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	c := m.findControllerOr404(w, mux.Vars(r)["name"])
	if c == nil {
		m.lock.Unlock()
		return
	}
	status := c.Status()
	m.lock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&status)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type memoryRsp struct {
	Address int    `json:"address"`
	Length  int    `json:"length"`
	Data    string `json:"data"`
}

func (m *Monitor) readMemory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	address, err := parseNumber(vars["address"])
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	length, err := parseNumber(vars["length"])
	if err != nil || length <= 0 || length > MaxWindow {
		httpError(w, http.StatusBadRequest,
			fmt.Errorf("length must be in [1, %d]", MaxWindow))
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findControllerOr404(w, vars["name"])
	if c == nil {
		return
	}

	buf := make([]byte, length)
	n, err := c.Read(address, buf)
	if err != nil {
		httpError(w, accessErrorCode(err), err)
		return
	}

	writeJSON(w, memoryRsp{
		Address: address,
		Length:  n,
		Data:    hex.EncodeToString(buf[:n]),
	})
}

func (m *Monitor) writeMemory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	address, err := parseNumber(vars["address"])
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 2*MaxWindow+1))
	dieOnErr(err)

	data, err := hex.DecodeString(strings.TrimSpace(string(body)))
	if err != nil || len(data) == 0 || len(data) > MaxWindow {
		httpError(w, http.StatusBadRequest,
			fmt.Errorf("body must be 1 to %d hex-encoded bytes", MaxWindow))
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findControllerOr404(w, vars["name"])
	if c == nil {
		return
	}

	n, err := c.BufferedWrite(address, data)
	if err == nil {
		_, err = c.Flush()
	}

	if err != nil {
		httpError(w, accessErrorCode(err), err)
		return
	}

	writeJSON(w, memoryRsp{Address: address, Length: n})
}

func (m *Monitor) flush(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c := m.findControllerOr404(w, mux.Vars(r)["name"])
	if c == nil {
		return
	}

	origin, _ := c.Buffered()

	n, err := c.Flush()
	if err != nil {
		httpError(w, accessErrorCode(err), err)
		return
	}

	writeJSON(w, memoryRsp{Address: origin, Length: n})
}

type statsRsp struct {
	Tasks   []tracing.TaskStats           `json:"tasks"`
	Devices map[string]simbus.DeviceStats `json:"devices"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	rsp := statsRsp{
		Tasks:   []tracing.TaskStats{},
		Devices: make(map[string]simbus.DeviceStats),
	}

	if m.stats != nil {
		rsp.Tasks = m.stats.Stats()
	}

	m.lock.Lock()
	for name, d := range m.devices {
		rsp.Devices[name] = d.Stats()
	}
	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].StartTime.Before(bars[j].StartTime)
	})

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		httpError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) findControllerOr404(
	w http.ResponseWriter,
	name string,
) *eeprom.Controller {
	for _, c := range m.controllers {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Controller not found"))
	dieOnErr(err)

	return nil
}

func parseNumber(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	return int(v), nil
}

func accessErrorCode(err error) int {
	if errors.Is(err, eeprom.ErrInvalidArgument) {
		return http.StatusBadRequest
	}

	return http.StatusBadGateway
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	_, werr := fmt.Fprintf(w, "Error: %s", err)
	dieOnErr(werr)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
