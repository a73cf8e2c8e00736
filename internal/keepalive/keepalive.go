// Package keepalive provides the watchdog that keeps the portal session
// alive by re-authenticating when it drops.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/shini4i/gsbwifi/internal/portal"
)

// ErrAlreadyStarted is returned by Start on a running Manager.
var ErrAlreadyStarted = errors.New("keepalive already started")

// Config holds watchdog configuration.
type Config struct {
	// Schedule is a robfig/cron spec, e.g. "@every 5m" or "*/10 * * * *".
	Schedule string
	// MaxFailures is the number of consecutive failed re-logins after which
	// the watchdog gives up until the session is seen healthy again.
	MaxFailures int
}

// DefaultConfig returns default watchdog configuration.
func DefaultConfig() Config {
	return Config{
		Schedule:    "@every 5m",
		MaxFailures: 3,
	}
}

// Operations is the portal surface used by the watchdog. *portal.Service satisfies it.
type Operations interface {
	Status(ctx context.Context) (portal.Status, error)
	Login(ctx context.Context) (portal.Result, error)
}

// Callbacks contains optional callbacks for watchdog events.
type Callbacks struct {
	// OnReconnecting is called before a re-login.
	OnReconnecting func()
	// OnReconnected is called after a successful re-login.
	OnReconnected func(result portal.Result)
	// OnFailed is called once MaxFailures consecutive re-logins have failed.
	OnFailed func(err error)
}

// Outcome describes what a single tick did.
type Outcome int

const (
	OutcomePaused Outcome = iota
	OutcomeStatusError
	OutcomeHealthy
	OutcomeGaveUp
	OutcomeReconnected
	OutcomeReconnectFailed
)

var outcomeNames = map[Outcome]string{
	OutcomePaused:          "paused",
	OutcomeStatusError:     "status_error",
	OutcomeHealthy:         "healthy",
	OutcomeGaveUp:          "gave_up",
	OutcomeReconnected:     "reconnected",
	OutcomeReconnectFailed: "reconnect_failed",
}

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Manager runs the watchdog. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	failures int
	gaveUp   bool
	paused   bool
	cron     *cron.Cron

	config    Config
	ops       Operations
	marker    *PauseMarker
	callbacks Callbacks
	logger    *slog.Logger
}

// NewManager creates a Manager. marker may be nil when no cross-process
// pause is wanted.
func NewManager(cfg Config, ops Operations, marker *PauseMarker) *Manager {
	def := DefaultConfig()
	if cfg.Schedule == "" {
		cfg.Schedule = def.Schedule
	}
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = def.MaxFailures
	}
	return &Manager{
		config: cfg,
		ops:    ops,
		marker: marker,
		logger: slog.Default().With("component", "keepalive"),
	}
}

// SetCallbacks sets the event callbacks.
func (m *Manager) SetCallbacks(cb Callbacks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = cb
}

// Pause stops re-authentication until Resume. With a pause marker the
// marker wins: the next Tick follows its presence.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume re-enables re-authentication and clears the failure counter.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	m.failures = 0
	m.gaveUp = false
}

// Failures returns the number of consecutive failed re-logins.
func (m *Manager) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// isPaused mirrors the pause marker into the manager. A marker cleared by a
// manual login resumes it, which forgives earlier failures.
func (m *Manager) isPaused() bool {
	if m.marker != nil {
		onDisk := m.marker.Paused()
		m.mu.Lock()
		was := m.paused
		m.mu.Unlock()
		switch {
		case onDisk && !was:
			m.logger.Info("Pausing after user logout", "marker", m.marker.Path())
			m.Pause()
		case !onDisk && was:
			m.logger.Info("Pause marker cleared, resuming")
			m.Resume()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Tick runs one watchdog check: Status, then Login if the session dropped.
func (m *Manager) Tick(ctx context.Context) Outcome {
	if m.isPaused() {
		m.logger.Debug("Skipping check: paused after user logout")
		return OutcomePaused
	}

	st, err := m.ops.Status(ctx)
	if err != nil {
		m.logger.Warn("Status check failed", "error", err)
		return OutcomeStatusError
	}

	m.mu.Lock()
	if st.LoggedIn {
		if m.failures > 0 || m.gaveUp {
			m.logger.Info("Session healthy again", "failures", m.failures)
		}
		m.failures = 0
		m.gaveUp = false
		m.mu.Unlock()
		m.logger.Debug("Session healthy", "headline", st.Headline)
		return OutcomeHealthy
	}
	if m.gaveUp {
		m.mu.Unlock()
		m.logger.Debug("Skipping re-login: too many consecutive failures", "max", m.config.MaxFailures)
		return OutcomeGaveUp
	}
	callbacks := m.callbacks
	attempt := m.failures + 1
	m.mu.Unlock()

	m.logger.Info("Session dropped, logging in again", "attempt", attempt, "max", m.config.MaxFailures)
	if callbacks.OnReconnecting != nil {
		callbacks.OnReconnecting()
	}

	result, err := m.ops.Login(ctx)

	m.mu.Lock()
	if err == nil {
		m.failures = 0
		m.mu.Unlock()
		m.logger.Info("Re-login succeeded", "headline", result.Headline)
		if callbacks.OnReconnected != nil {
			callbacks.OnReconnected(result)
		}
		return OutcomeReconnected
	}

	m.failures++
	failures := m.failures
	giveUp := failures >= m.config.MaxFailures
	if giveUp {
		m.gaveUp = true
	}
	m.mu.Unlock()

	m.logger.Error("Re-login failed", "attempt", failures, "reason", result.Details, "error", err)
	if giveUp {
		m.logger.Warn("Max re-login attempts reached", "failures", failures, "max", m.config.MaxFailures)
		if callbacks.OnFailed != nil {
			callbacks.OnFailed(err)
		}
	}
	return OutcomeReconnectFailed
}

// Start schedules Tick on the configured cron spec. Overlapping ticks are
// skipped. ctx is passed to every tick; Stop must still be called.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cronLogger{logger: m.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(m.config.Schedule, func() { m.Tick(ctx) }); err != nil {
		return fmt.Errorf("invalid keepalive schedule %q: %w", m.config.Schedule, err)
	}
	c.Start()
	m.cron = c

	m.logger.Info("Keepalive started", "schedule", m.config.Schedule, "max_failures", m.config.MaxFailures)
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.logger.Info("Keepalive stopped")
}

// ValidateSchedule reports whether spec is a valid cron schedule.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid keepalive schedule %q: %w", spec, err)
	}
	return nil
}
