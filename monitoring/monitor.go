// Package monitoring turns a running simulation into a small HTTP server so
// that the run can be observed and paused from outside the process.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/sensorlab/ripple/sim"
)

// Stats is a snapshot of the simulation's packet counters.
type Stats struct {
	Sent      uint64 `json:"sent"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
}

// A StatsProvider exposes the simulation's counters to the monitor.
type StatsProvider interface {
	Stats() Stats
}

// Monitor allows external monitoring and controlling of a simulation.
type Monitor struct {
	engine     sim.Engine
	stats      StatsProvider
	portNumber int
	openInUI   bool
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openInUI = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterStatsProvider registers the source of the packet counters.
func (m *Monitor) RegisterStatsProvider(p StatsProvider) {
	m.stats = p
}

// StartServer starts the monitor as a web server. It returns the address
// the server listens on.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/progress", m.progress)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	addr := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", addr)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openInUI {
		_ = browser.OpenURL(addr + "/api/progress")
	}

	return addr
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.CurrentTime())
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type progressRsp struct {
	Now sim.VTimeInSec `json:"now"`
	Stats
}

func (m *Monitor) progress(w http.ResponseWriter, _ *http.Request) {
	rsp := progressRsp{Now: m.engine.CurrentTime()}
	if m.stats != nil {
		rsp.Stats = m.stats.Stats()
	}

	err := json.NewEncoder(w).Encode(rsp)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	err = json.NewEncoder(w).Encode(resourceRsp{
		CPUPercent: cpuPercent,
		MemoryRSS:  memInfo.RSS,
	})
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
