// Package secrets stores the critique collaborator's API key in the OS
// keychain, falling back to a private JSON file where no keychain exists.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name.
const DefaultService = "toastmaster"

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = keyring.ErrNotFound

const keyAPIKey = "apikey"

// KeyringStore wraps the OS keychain with an optional file fallback.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring wrapper. An empty fallbackPath
// disables the file fallback.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = DefaultService
	}
	return &KeyringStore{service: serviceName, fallbackPath: fallbackPath}
}

func (k *KeyringStore) key(provider string) string {
	return provider + "/" + keyAPIKey
}

// SetAPIKey stores the key for provider.
func (k *KeyringStore) SetAPIKey(provider, value string) error {
	provider = strings.TrimSpace(provider)
	value = strings.TrimSpace(value)
	if provider == "" {
		return errors.New("secrets: provider is required")
	}
	if value == "" {
		return errors.New("secrets: api key is empty")
	}

	err := keyring.Set(k.service, k.key(provider), value)
	if err == nil {
		return nil
	}
	if !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring set: %w", err)
	}
	return k.setFallback(provider, value)
}

// GetAPIKey returns the key for provider, or ErrNotFound.
func (k *KeyringStore) GetAPIKey(provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "", errors.New("secrets: provider is required")
	}

	val, err := keyring.Get(k.service, k.key(provider))
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secrets: keyring get: %w", err)
	}

	fallback, ferr := k.getFallback(provider)
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(ferr, ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

// DeleteAPIKey removes the key for provider from both the keychain and
// the fallback file. Removing a missing key is not an error.
func (k *KeyringStore) DeleteAPIKey(provider string) error {
	provider = strings.TrimSpace(provider)
	kerr := keyring.Delete(k.service, k.key(provider))
	ferr := k.deleteFallback(provider)
	if kerr != nil && !errors.Is(kerr, keyring.ErrNotFound) && !isKeyringUnavailable(kerr) {
		return fmt.Errorf("secrets: keyring delete: %w", kerr)
	}
	return ferr
}

// ResolveAPIKey prefers envValue and otherwise reads the stored key. It
// returns "" when neither is set.
func (k *KeyringStore) ResolveAPIKey(provider, envValue string) string {
	if v := strings.TrimSpace(envValue); v != "" {
		return v
	}
	v, err := k.GetAPIKey(provider)
	if err != nil {
		return ""
	}
	return v
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

// fallbackSecrets maps provider to key.
type fallbackSecrets map[string]string

func (k *KeyringStore) setFallback(provider, value string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return errors.New("secrets: keyring unavailable and no fallback path configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[provider] = value
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) getFallback(provider string) (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", ErrNotFound
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[provider]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (k *KeyringStore) deleteFallback(provider string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[provider]; !ok {
		return nil
	}
	delete(data, provider)
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("secrets: read fallback: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("secrets: decode fallback: %w", err)
	}
	return out, nil
}

func (k *KeyringStore) writeFallbackUnlocked(data fallbackSecrets) error {
	if err := os.MkdirAll(filepath.Dir(k.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("secrets: encode fallback: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("secrets: write fallback: %w", err)
	}
	return nil
}
