package credentials

import (
	"os"
	"strings"
)

// Environment variables holding credentials.
const (
	EnvUsername = "WIFI_USERNAME"
	EnvPassword = "WIFI_PASSWORD"
)

// EnvProvider reads WIFI_USERNAME and WIFI_PASSWORD.
// The environment holds a single pair, so it answers for every account.
type EnvProvider struct {
	getenv func(string) string
}

// NewEnvProvider creates an EnvProvider backed by os.Getenv.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{getenv: os.Getenv}
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

// Lookup implements Provider.
func (p *EnvProvider) Lookup(int) (Credentials, error) {
	creds := Credentials{
		Username: strings.TrimSpace(p.getenv(EnvUsername)),
		Password: p.getenv(EnvPassword),
	}
	if creds.Empty() {
		return Credentials{}, ErrNotConfigured
	}
	return creds, nil
}
