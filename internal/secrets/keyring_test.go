package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStoreUsesKeychain(t *testing.T) {
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "secrets.json")
	k := NewKeyringStore("", path)

	if _, err := k.GetAPIKey("gemini"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAPIKey before set error = %v, want ErrNotFound", err)
	}
	if err := k.SetAPIKey("gemini", "  abc123 "); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	got, err := k.GetAPIKey("gemini")
	if err != nil || got != "abc123" {
		t.Fatalf("GetAPIKey() = %q, %v", got, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("fallback file written while keychain works: %v", err)
	}

	if err := k.DeleteAPIKey("gemini"); err != nil {
		t.Fatalf("DeleteAPIKey() error: %v", err)
	}
	if _, err := k.GetAPIKey("gemini"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAPIKey after delete error = %v", err)
	}
	if err := k.DeleteAPIKey("gemini"); err != nil {
		t.Errorf("second DeleteAPIKey() error: %v", err)
	}
}

func TestKeyringStoreFallsBackToFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: secret service not available"))
	t.Cleanup(keyring.MockInit)

	path := filepath.Join(t.TempDir(), "nested", "secrets.json")
	k := NewKeyringStore("toast-test", path)

	if err := k.SetAPIKey("gemini", "file-key"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("fallback file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("fallback file mode = %o, want 600", perm)
	}

	got, err := k.GetAPIKey("gemini")
	if err != nil || got != "file-key" {
		t.Fatalf("GetAPIKey() = %q, %v", got, err)
	}
	if _, err := k.GetAPIKey("other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown provider error = %v", err)
	}

	if err := k.DeleteAPIKey("gemini"); err != nil {
		t.Fatalf("DeleteAPIKey() error: %v", err)
	}
	if _, err := k.GetAPIKey("gemini"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAPIKey after delete error = %v", err)
	}
}

func TestKeyringStoreWithoutFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: secret service not available"))
	t.Cleanup(keyring.MockInit)

	k := NewKeyringStore("toast-test", "")
	if err := k.SetAPIKey("gemini", "x"); err == nil {
		t.Error("expected error with no keychain and no fallback")
	}
}

func TestKeyringStoreValidation(t *testing.T) {
	keyring.MockInit()
	k := NewKeyringStore("", "")
	if err := k.SetAPIKey(" ", "x"); err == nil {
		t.Error("expected error for blank provider")
	}
	if err := k.SetAPIKey("gemini", " "); err == nil {
		t.Error("expected error for blank key")
	}
	if _, err := k.GetAPIKey(""); err == nil {
		t.Error("expected error for blank provider")
	}
}

func TestResolveAPIKey(t *testing.T) {
	keyring.MockInit()
	k := NewKeyringStore("toast-resolve", "")

	if got := k.ResolveAPIKey("gemini", ""); got != "" {
		t.Errorf("nothing stored = %q, want empty", got)
	}
	if err := k.SetAPIKey("gemini", "stored"); err != nil {
		t.Fatal(err)
	}
	if got := k.ResolveAPIKey("gemini", ""); got != "stored" {
		t.Errorf("stored key = %q", got)
	}
	if got := k.ResolveAPIKey("gemini", " env "); got != "env" {
		t.Errorf("env key = %q, want env", got)
	}
}
