package keystore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keystore.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "device_uuid", "abc-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, "device_uuid")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "abc-123" {
		t.Errorf("Expected abc-123, got %q", got)
	}

	// Upsert overwrites.
	if err := s.Set(ctx, "device_uuid", "def-456"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, _ = s.Get(ctx, "device_uuid")
	if got != "def-456" {
		t.Errorf("Expected def-456, got %q", got)
	}
}

func TestSQLiteMissingKeyIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "keystore.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}
}

func TestSQLiteDeleteAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keystore.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	s.Close()

	// Values survive a reopen.
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	if got, _ := s.Get(ctx, "a"); got != "" {
		t.Errorf("Expected deleted key to stay gone, got %q", got)
	}
	if got, _ := s.Get(ctx, "b"); got != "2" {
		t.Errorf("Expected persisted value 2, got %q", got)
	}
}
