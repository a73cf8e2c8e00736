package keepalive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shini4i/gsbwifi/internal/fileutil"
)

// PauseFileName is the marker left in the config directory by a user logout.
const PauseFileName = "paused.json"

// PauseState is the content of the pause marker.
type PauseState struct {
	Reason string    `json:"reason"`
	Since  time.Time `json:"since"`
}

// PauseMarker persists the paused state so that a user logout in one process
// stops a watch running in another.
type PauseMarker struct {
	path string
	now  func() time.Time
}

// NewPauseMarker returns a marker stored in configDir.
func NewPauseMarker(configDir string) *PauseMarker {
	return &PauseMarker{path: filepath.Join(configDir, PauseFileName), now: time.Now}
}

// Path returns the marker file location.
func (p *PauseMarker) Path() string {
	return p.path
}

// Set writes the marker.
func (p *PauseMarker) Set(reason string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return fileutil.WriteJSON(p.path, PauseState{Reason: reason, Since: p.now()}, 0600)
}

// Clear removes the marker.
func (p *PauseMarker) Clear() error {
	return fileutil.RemoveIfExists(p.path)
}

// State returns the stored state. ok is false when the marker is absent.
// An unreadable marker still counts as paused.
func (p *PauseMarker) State() (state PauseState, ok bool, err error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PauseState{}, false, nil
		}
		return PauseState{}, true, fmt.Errorf("failed to read pause marker: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return PauseState{}, true, fmt.Errorf("failed to parse pause marker: %w", err)
	}
	return state, true, nil
}

// Paused reports whether the marker is present.
func (p *PauseMarker) Paused() bool {
	_, ok, _ := p.State()
	return ok
}
