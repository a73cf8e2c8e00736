package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads config_giris<N>.json files written by the desktop
// front-end. Files are never written from here.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a FileProvider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Path returns the file consulted for account.
func (p *FileProvider) Path(account int) string {
	return filepath.Join(p.dir, fmt.Sprintf("config_giris%d.json", account))
}

// Lookup implements Provider.
func (p *FileProvider) Lookup(account int) (Credentials, error) {
	if account < 1 {
		return Credentials{}, ErrInvalidAccount
	}
	data, err := os.ReadFile(p.Path(account))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, ErrNotConfigured
		}
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to unmarshal credentials file: %w", err)
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Empty() {
		return Credentials{}, ErrNotConfigured
	}
	return creds, nil
}
