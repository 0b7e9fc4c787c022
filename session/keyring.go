package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// DefaultKeyringService is the keyring service name used for apikit tokens.
	DefaultKeyringService = "apikit"
	// DefaultKeyringUser is the account name under which the token is stored.
	DefaultKeyringUser = "session-token"
)

// KeyringStore keeps the token in the OS credential store:
//   - macOS: Keychain
//   - Linux: Secret Service (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type KeyringStore struct {
	service string
	user    string
}

func NewKeyringStore(service, user string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	if user == "" {
		user = DefaultKeyringUser
	}
	return &KeyringStore{service: service, user: user}
}

func (s *KeyringStore) Load(context.Context) (string, error) {
	v, err := keyring.Get(s.service, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: keyring get: %w", err)
	}
	return v, nil
}

func (s *KeyringStore) Save(_ context.Context, token string) error {
	if err := keyring.Set(s.service, s.user, token); err != nil {
		return fmt.Errorf("session: keyring set: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear(context.Context) error {
	err := keyring.Delete(s.service, s.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("session: keyring delete: %w", err)
	}
	return nil
}
