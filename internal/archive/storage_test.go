package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetExchange(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"kind":"critique"}`)
	if err := s.PutExchange(ctx, "critique", "ex1", data); err != nil {
		t.Fatalf("PutExchange: %v", err)
	}

	got, err := s.GetExchange(ctx, "critique", "ex1")
	if err != nil {
		t.Fatalf("GetExchange: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetExchange = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "critique", "ex1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	_, err := s.GetExchange(context.Background(), "toppings", "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, want string
	}{
		{"", "critique/abc.json"},
		{"toast", "toast/critique/abc.json"},
		{"/toast/archive/", "toast/archive/critique/abc.json"},
	}
	for _, tc := range tests {
		if got := objectKey(tc.prefix, "critique", "abc"); got != tc.want {
			t.Errorf("objectKey(%q) = %q, want %q", tc.prefix, got, tc.want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	if err != nil || s != nil {
		t.Errorf("disabled backend = (%v, %v), want (nil, nil)", s, err)
	}

	s, err = Open(ctx, Options{Backend: BackendLocal, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("local backend error: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("local backend = %T", s)
	}

	for _, opts := range []Options{
		{Backend: BackendLocal},
		{Backend: BackendS3},
		{Backend: BackendGCS},
		{Backend: "ftp"},
	} {
		if _, err := Open(ctx, opts); err == nil {
			t.Errorf("Open(%+v) expected error", opts)
		}
	}
}
