// Package credentials provides read-only lookup of portal login credentials
// from the environment, per-account JSON files and the system keyring.
package credentials

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned when no provider holds credentials for the account.
	ErrNotConfigured = errors.New("credentials not configured")
	// ErrInvalidAccount is returned for account numbers below 1.
	ErrInvalidAccount = errors.New("invalid account number: must be at least 1")
)

// Credentials is a username/password pair for the portal login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Empty reports whether either half of the pair is blank.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.Username) == "" || c.Password == ""
}

// String hides the password so credentials can be passed to loggers safely.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, Password: <redacted>}", c.Username)
}

// Provider looks up credentials for a numbered account.
// Implementations return ErrNotConfigured when they hold nothing for it.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Lookup returns the credentials stored for account.
	Lookup(account int) (Credentials, error)
}

// Chain tries providers in order and returns the first complete pair.
type Chain []Provider

// Compile-time check that Chain implements Provider.
var _ Provider = Chain(nil)

// Name implements Provider.
func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, p := range c {
		names = append(names, p.Name())
	}
	return strings.Join(names, ",")
}

// Lookup implements Provider. Providers reporting ErrNotConfigured are skipped;
// any other error stops the chain.
func (c Chain) Lookup(account int) (Credentials, error) {
	if account < 1 {
		return Credentials{}, ErrInvalidAccount
	}
	for _, p := range c {
		creds, err := p.Lookup(account)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				continue
			}
			return Credentials{}, fmt.Errorf("%s provider: %w", p.Name(), err)
		}
		if creds.Empty() {
			continue
		}
		return creds, nil
	}
	return Credentials{}, ErrNotConfigured
}

// DefaultChain returns the lookup order used by the CLI: environment,
// account files under configDir, then the system keyring.
func DefaultChain(configDir string) Chain {
	return Chain{
		NewEnvProvider(),
		NewFileProvider(configDir),
		NewKeyringProvider(),
	}
}
