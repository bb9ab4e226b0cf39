// Package connectivity classifies reachability of the upstream archive
// by polling a fixed TCP target and notifying a subscriber on every
// state transition.
package connectivity

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/vietddude/tapedeck/internal/core/domain"
	"github.com/vietddude/tapedeck/internal/metrics"
)

// stopTimeout bounds how long Stop waits for the polling goroutine.
const stopTimeout = 2 * time.Second

// Config holds monitor settings.
type Config struct {
	// Target is the host:port used as a reachability oracle.
	Target string
	// CheckInterval is the wait between probes.
	CheckInterval time.Duration
	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration
}

// Monitor owns one background polling goroutine and the connectivity
// state it maintains. State and failure counters are guarded by a
// mutex because they are written by the poll goroutine and read from
// arbitrary callers.
type Monitor struct {
	cfg   Config
	probe func(target string, timeout time.Duration) bool
	log   *slog.Logger

	mu        sync.Mutex
	state     domain.ConnectionState
	failures  int
	lastCheck time.Time
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}

	onChange func(domain.ConnectionState)
}

// NewMonitor creates a monitor in the Unknown state. Zero-valued config
// fields fall back to defaults (archive.org:443, 5s interval, 3s probe
// timeout).
func NewMonitor(cfg Config, log *slog.Logger) *Monitor {
	if cfg.Target == "" {
		cfg.Target = "archive.org:443"
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Monitor{
		cfg:   cfg,
		probe: tcpProbe,
		log:   log.With("component", "connectivity"),
		state: domain.StateUnknown,
	}
}

// OnStateChange registers the observer invoked synchronously from the
// poll goroutine on every transition. Register before Start; the
// monitor supports a single subscriber.
func (m *Monitor) OnStateChange(fn func(domain.ConnectionState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Start launches the polling goroutine. Calling Start on a running
// monitor is a logged no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.log.Debug("monitor already running")
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	m.log.Info("connectivity monitor started",
		"target", m.cfg.Target, "interval", m.cfg.CheckInterval)
	go m.loop(stop, done)
}

// Stop signals the polling goroutine and waits for it to exit, up to
// stopTimeout. Safe to call repeatedly and before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stop)
	select {
	case <-done:
		m.log.Info("connectivity monitor stopped")
	case <-time.After(stopTimeout):
		m.log.Warn("connectivity monitor did not stop in time")
	}
}

// loop probes until stopped. The inter-check wait selects on the stop
// channel so shutdown does not ride out a full interval.
func (m *Monitor) loop(stop, done chan struct{}) {
	defer close(done)

	for {
		m.checkOnce()

		select {
		case <-stop:
			return
		case <-time.After(m.cfg.CheckInterval):
		}
	}
}

// checkOnce runs one probe and applies the debounced state machine:
// success always lands on Connected; failure only transitions when the
// previous state was Connected, so subscribers see one event per
// outage instead of one per failed probe.
func (m *Monitor) checkOnce() {
	ok := m.CheckConnectivity(m.cfg.ProbeTimeout)

	m.mu.Lock()
	var next domain.ConnectionState
	transition := false

	if ok {
		m.failures = 0
		if m.state != domain.StateConnected {
			m.state = domain.StateConnected
			next = domain.StateConnected
			transition = true
		}
	} else {
		m.failures++
		if m.state == domain.StateConnected {
			m.state = domain.StateDisconnected
			next = domain.StateDisconnected
			transition = true
		}
	}

	fn := m.onChange
	state, failures := m.state, m.failures
	m.mu.Unlock()

	metrics.ConnectionState.Set(float64(state))
	metrics.ProbeFailures.Set(float64(failures))

	if transition {
		metrics.StateTransitions.WithLabelValues(next.String()).Inc()
		m.log.Info("connectivity changed", "state", next, "failures", failures)
		if fn != nil {
			m.notify(fn, next)
		}
	}
}

// notify shields the poll loop from a misbehaving subscriber.
func (m *Monitor) notify(fn func(domain.ConnectionState), state domain.ConnectionState) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("state change observer panicked", "state", state, "panic", r)
		}
	}()
	fn(state)
}

// CheckConnectivity probes the target once with the given timeout. It
// never returns an error: any dial failure just means "unreachable".
func (m *Monitor) CheckConnectivity(timeout time.Duration) bool {
	ok := m.probe(m.cfg.Target, timeout)

	m.mu.Lock()
	m.lastCheck = time.Now()
	m.mu.Unlock()

	return ok
}

// tcpProbe is the default reachability oracle: a plain TCP connect,
// cheaper than a full HTTP request.
func tcpProbe(target string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// State returns the current connectivity classification.
func (m *Monitor) State() domain.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the current state is Connected.
func (m *Monitor) IsConnected() bool {
	return m.State() == domain.StateConnected
}

// ConsecutiveFailures returns the current run of failed probes.
func (m *Monitor) ConsecutiveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// LastCheck returns when the most recent probe finished, or the zero
// time if none has.
func (m *Monitor) LastCheck() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCheck
}

// MarkReconnecting moves Disconnected to Reconnecting, for callers
// that want to distinguish "just lost" from "still trying". No
// notification fires: transitions are only emitted by the poll
// goroutine, which keeps them strictly ordered.
func (m *Monitor) MarkReconnecting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == domain.StateDisconnected {
		m.state = domain.StateReconnecting
	}
}

// StatusString renders the state and failure count for displays.
func (m *Monitor) StatusString() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case domain.StateConnected:
		return "Connected"
	case domain.StateDisconnected:
		return statusWithFailures("Disconnected", m.failures)
	case domain.StateReconnecting:
		return statusWithFailures("Reconnecting", m.failures)
	default:
		return "Unknown"
	}
}

func statusWithFailures(label string, failures int) string {
	if failures == 1 {
		return label + " (1 failed check)"
	}
	return fmt.Sprintf("%s (%d failed checks)", label, failures)
}
