package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Probe reports whether a single dependency is reachable.
type Probe func(ctx context.Context) error

// Status is the last observed state of one dependency.
type Status struct {
	Name                string    `json:"name"`
	Healthy             bool      `json:"healthy"`
	LastCheck           time.Time `json:"last_check"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// Snapshot is the aggregate view served by the health endpoint.
type Snapshot struct {
	Healthy      bool     `json:"healthy"`
	Dependencies []Status `json:"dependencies"`
}

// Config holds health monitor settings.
type Config struct {
	Interval    time.Duration // How often to probe (default: 10s)
	Timeout     time.Duration // Per-probe timeout (default: 5s)
	MaxFailures int           // Failures before marking unhealthy (default: 3)
}

// Monitor probes registered dependencies on an interval and keeps the last
// known status for each. A dependency is only marked unhealthy after
// MaxFailures consecutive probe failures, so a single blip does not flip
// the health endpoint.
type Monitor struct {
	mu          sync.RWMutex
	probes      map[string]Probe
	names       []string
	status      map[string]*Status
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	logger      *slog.Logger
	stopChan    chan struct{}
	running     bool
}

func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}

	return &Monitor{
		probes:      make(map[string]Probe),
		status:      make(map[string]*Status),
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Register adds a dependency probe. Dependencies start out healthy so the
// server can come up before the first probe round completes.
func (m *Monitor) Register(name string, probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.probes[name] = probe
	m.names = append(m.names, name)
	m.status[name] = &Status{
		Name:      name,
		Healthy:   true,
		LastCheck: time.Now(),
	}
}

// Start begins periodic probing. The first round runs immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.logger.Info("starting dependency health checks",
		slog.Int("dependencies", len(m.names)),
		slog.Duration("interval", m.interval))

	m.checkAll()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.checkAll()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop halts periodic probing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		close(m.stopChan)
		m.running = false
	}
}

func (m *Monitor) checkAll() {
	m.mu.RLock()
	names := make([]string, len(m.names))
	copy(names, m.names)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			m.check(n)
		}(name)
	}
	wg.Wait()
}

func (m *Monitor) check(name string) {
	m.mu.RLock()
	probe := m.probes[name]
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := probe(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.status[name]
	st.LastCheck = time.Now()

	if err != nil {
		st.ConsecutiveFailures++
		st.LastError = err.Error()
		if st.Healthy && st.ConsecutiveFailures >= m.maxFailures {
			st.Healthy = false
			m.logger.Error("dependency unhealthy",
				slog.String("dependency", name),
				slog.Int("failures", st.ConsecutiveFailures),
				slog.String("error", err.Error()))
		}
		return
	}

	if !st.Healthy {
		m.logger.Info("dependency recovered", slog.String("dependency", name))
	}
	st.Healthy = true
	st.ConsecutiveFailures = 0
	st.LastError = ""
}

// Snapshot returns the current state of all dependencies. The aggregate is
// healthy only when every dependency is.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Healthy: true, Dependencies: make([]Status, 0, len(m.names))}
	for _, name := range m.names {
		st := *m.status[name]
		if !st.Healthy {
			snap.Healthy = false
		}
		snap.Dependencies = append(snap.Dependencies, st)
	}
	return snap
}
