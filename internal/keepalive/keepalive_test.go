package keepalive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shini4i/gsbwifi/internal/portal"
)

// mockOperations scripts Status and Login results.
type mockOperations struct {
	mu        sync.Mutex
	loggedIn  bool
	statusErr error
	loginErr  error
	statuses  int
	logins    int
	// loginFixes makes a successful Login flip the session to logged in.
	loginFixes bool
}

func (m *mockOperations) Status(context.Context) (portal.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses++
	if m.statusErr != nil {
		return portal.Status{}, m.statusErr
	}
	return portal.Status{LoggedIn: m.loggedIn}, nil
}

func (m *mockOperations) Login(context.Context) (portal.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins++
	if m.loginErr != nil {
		return portal.Result{Details: "Giriş yapılamadı"}, m.loginErr
	}
	if m.loginFixes {
		m.loggedIn = true
	}
	return portal.Result{Success: true, Headline: "Kalan Kota: 892.0 MB"}, nil
}

func (m *mockOperations) counts() (statuses, logins int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses, m.logins
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Config{}, &mockOperations{}, nil)

	assert.Equal(t, DefaultConfig(), m.config)
	assert.Equal(t, "@every 5m", m.config.Schedule)
	assert.Equal(t, 3, m.config.MaxFailures)
}

func TestManager_Tick_Healthy(t *testing.T) {
	ops := &mockOperations{loggedIn: true}
	m := NewManager(DefaultConfig(), ops, nil)

	assert.Equal(t, OutcomeHealthy, m.Tick(context.Background()))

	_, logins := ops.counts()
	assert.Zero(t, logins)
}

func TestManager_Tick_ReconnectsDroppedSession(t *testing.T) {
	ops := &mockOperations{loginFixes: true}
	m := NewManager(DefaultConfig(), ops, nil)

	var reconnecting int
	var reconnected portal.Result
	m.SetCallbacks(Callbacks{
		OnReconnecting: func() { reconnecting++ },
		OnReconnected:  func(r portal.Result) { reconnected = r },
	})

	assert.Equal(t, OutcomeReconnected, m.Tick(context.Background()))
	assert.Equal(t, 1, reconnecting)
	assert.Equal(t, "Kalan Kota: 892.0 MB", reconnected.Headline)

	assert.Equal(t, OutcomeHealthy, m.Tick(context.Background()))
	_, logins := ops.counts()
	assert.Equal(t, 1, logins)
}

func TestManager_Tick_StatusErrorDoesNotLogin(t *testing.T) {
	ops := &mockOperations{statusErr: errors.New("portal unreachable")}
	m := NewManager(DefaultConfig(), ops, nil)

	assert.Equal(t, OutcomeStatusError, m.Tick(context.Background()))

	_, logins := ops.counts()
	assert.Zero(t, logins)
	assert.Zero(t, m.Failures())
}

func TestManager_Tick_GivesUpAfterMaxFailures(t *testing.T) {
	loginErr := errors.New("rejected")
	ops := &mockOperations{loginErr: loginErr}
	m := NewManager(Config{Schedule: "@every 1m", MaxFailures: 3}, ops, nil)

	var failedWith []error
	m.SetCallbacks(Callbacks{OnFailed: func(err error) { failedWith = append(failedWith, err) }})

	for i := 1; i <= 3; i++ {
		assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
		assert.Equal(t, i, m.Failures())
	}
	require.Len(t, failedWith, 1, "OnFailed fires once when the limit is reached")
	assert.ErrorIs(t, failedWith[0], loginErr)

	assert.Equal(t, OutcomeGaveUp, m.Tick(context.Background()))
	_, logins := ops.counts()
	assert.Equal(t, 3, logins)
}

func TestManager_Tick_HealthyResetsGiveUp(t *testing.T) {
	ops := &mockOperations{loginErr: errors.New("rejected")}
	m := NewManager(Config{MaxFailures: 1}, ops, nil)

	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
	assert.Equal(t, OutcomeGaveUp, m.Tick(context.Background()))

	ops.mu.Lock()
	ops.loggedIn = true
	ops.mu.Unlock()
	assert.Equal(t, OutcomeHealthy, m.Tick(context.Background()))
	assert.Zero(t, m.Failures())

	ops.mu.Lock()
	ops.loggedIn = false
	ops.mu.Unlock()
	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
}

func TestManager_PauseResume(t *testing.T) {
	ops := &mockOperations{loginErr: errors.New("rejected")}
	m := NewManager(Config{MaxFailures: 1}, ops, nil)

	m.Pause()
	assert.Equal(t, OutcomePaused, m.Tick(context.Background()))
	statuses, _ := ops.counts()
	assert.Zero(t, statuses)

	assert.Equal(t, OutcomePaused, m.Tick(context.Background()))

	m.Resume()
	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
	assert.Equal(t, OutcomeGaveUp, m.Tick(context.Background()))

	m.Resume()
	assert.Zero(t, m.Failures())
	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
}

func TestManager_PauseMarker(t *testing.T) {
	marker := NewPauseMarker(t.TempDir())
	ops := &mockOperations{loginFixes: true}
	m := NewManager(DefaultConfig(), ops, marker)

	require.NoError(t, marker.Set("logout"))
	assert.Equal(t, OutcomePaused, m.Tick(context.Background()))

	require.NoError(t, marker.Clear())
	assert.Equal(t, OutcomeReconnected, m.Tick(context.Background()))
}

func TestManager_MarkerClearForgivesFailures(t *testing.T) {
	marker := NewPauseMarker(t.TempDir())
	ops := &mockOperations{loginErr: errors.New("rejected")}
	m := NewManager(Config{MaxFailures: 1}, ops, marker)

	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()))
	assert.Equal(t, OutcomeGaveUp, m.Tick(context.Background()))

	require.NoError(t, marker.Set("logout"))
	assert.Equal(t, OutcomePaused, m.Tick(context.Background()))
	assert.Equal(t, 1, m.Failures(), "pausing keeps the counter")

	require.NoError(t, marker.Clear())
	assert.Equal(t, OutcomeReconnectFailed, m.Tick(context.Background()), "cleared marker allows a new attempt")
	assert.Equal(t, 1, m.Failures())
}

func TestManager_MarkerOverridesManualPause(t *testing.T) {
	marker := NewPauseMarker(t.TempDir())
	ops := &mockOperations{loggedIn: true}
	m := NewManager(DefaultConfig(), ops, marker)

	require.NoError(t, marker.Set("logout"))
	assert.Equal(t, OutcomePaused, m.Tick(context.Background()))

	m.Resume()
	assert.Equal(t, OutcomePaused, m.Tick(context.Background()), "marker still present")

	require.NoError(t, marker.Clear())
	assert.Equal(t, OutcomeHealthy, m.Tick(context.Background()))
}

func TestManager_StartStop(t *testing.T) {
	ops := &mockOperations{loggedIn: true}
	m := NewManager(Config{Schedule: "@every 1s", MaxFailures: 3}, ops, nil)

	require.NoError(t, m.Start(context.Background()))
	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)

	assert.Eventually(t, func() bool {
		statuses, _ := ops.counts()
		return statuses >= 1
	}, 3*time.Second, 50*time.Millisecond)

	m.Stop()
	m.Stop() // second Stop is a no-op
}

func TestManager_Start_InvalidSchedule(t *testing.T) {
	m := NewManager(Config{Schedule: "every five minutes"}, &mockOperations{}, nil)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid keepalive schedule")
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 5m"))
	assert.NoError(t, ValidateSchedule("*/10 * * * *"))
	assert.Error(t, ValidateSchedule("sometimes"))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "reconnected", OutcomeReconnected.String())
	assert.Equal(t, "paused", OutcomePaused.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
