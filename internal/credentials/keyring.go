package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	zkeyring "github.com/zalando/go-keyring"
)

// KeyringService is the service name under which account secrets are stored.
const KeyringService = "gsbwifi"

// KeyringProvider reads credentials from the system keyring.
// Each account is one secret holding a JSON {"username","password"} object,
// stored under the user name returned by KeyringUser.
type KeyringProvider struct {
	service string
}

// NewKeyringProvider creates a KeyringProvider for the default service.
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{service: KeyringService}
}

// KeyringUser returns the keyring user name for account.
func KeyringUser(account int) string {
	return fmt.Sprintf("account-%d", account)
}

// Name implements Provider.
func (p *KeyringProvider) Name() string { return "keyring" }

// Lookup implements Provider.
func (p *KeyringProvider) Lookup(account int) (Credentials, error) {
	if account < 1 {
		return Credentials{}, ErrInvalidAccount
	}
	secret, err := zkeyring.Get(p.service, KeyringUser(account))
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return Credentials{}, ErrNotConfigured
		}
		return Credentials{}, fmt.Errorf("failed to retrieve credential: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode keyring secret: %w", err)
	}
	if creds.Empty() {
		return Credentials{}, ErrNotConfigured
	}
	return creds, nil
}
