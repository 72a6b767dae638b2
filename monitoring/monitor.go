// Package monitoring serves the state of long verification runs over HTTP.
// It exposes the cache geometry, replay progress, controller internals, and
// process resource usage of the running process.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling endpoints.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/opencache/geom"
)

// An Inspectable exposes its internals on the state endpoint.
type Inspectable interface {
	Name() string
}

// Monitor turns a verification run into a small web server.
type Monitor struct {
	portNumber int

	geometries map[string]geom.Geometry
	targets    []Inspectable

	progressLock sync.Mutex
	progress     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		geometries: make(map[string]geom.Geometry),
	}
}

// WithPortNumber sets the port to serve on. Ports below 1000 fall back to a
// random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache's geometry under its name.
func (m *Monitor) RegisterCache(name string, g geom.Geometry) {
	m.geometries[name] = g
}

// RegisterTarget registers an object for state inspection.
func (m *Monitor) RegisterTarget(t Inspectable) {
	m.targets = append(m.targets, t)
}

// StartServer starts the monitoring server and returns the address it
// listens on. When openBrowser is set, it also opens the dashboard in the
// local browser.
func (m *Monitor) StartServer(openBrowser bool) string {
	r := mux.NewRouter()
	r.HandleFunc("/api/caches", m.listCaches)
	r.HandleFunc("/api/geometry/{name}", m.showGeometry)
	r.HandleFunc("/api/progress", m.listProgress)
	r.HandleFunc("/api/state/{name}", m.showState)
	r.HandleFunc("/api/resource", m.showResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	addr := ":0"
	if m.portNumber > 1000 {
		addr = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", addr)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring run at %s\n", url)

	go func() {
		dieOnErr(http.Serve(listener, r))
	}()

	if openBrowser {
		if err := browser.OpenURL(url + "/api/caches"); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}

	return url
}

func (m *Monitor) listCaches(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.geometries))
	for name := range m.geometries {
		names = append(names, name)
	}

	writeJSON(w, names)
}

func (m *Monitor) showGeometry(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	g, ok := m.geometries[name]
	if !ok {
		http.Error(w, "cache not found", http.StatusNotFound)

		return
	}

	writeJSON(w, g)
}

func (m *Monitor) showState(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var target Inspectable
	for _, t := range m.targets {
		if t.Name() == name {
			target = t
		}
	}

	if target == nil {
		http.Error(w, "target not found", http.StatusNotFound)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(target)
	serializer.SetMaxDepth(2)
	dieOnErr(serializer.Serialize(w))
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) showResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	})
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	m.progressLock.Lock()
	defer m.progressLock.Unlock()

	writeJSON(w, m.progress)
}

// collectProfile samples the process for one second and returns the parsed
// CPU profile as JSON.
func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
