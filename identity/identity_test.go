package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestConfiguredIDWins(t *testing.T) {
	id, err := Load(t.TempDir(), "slave-from-config")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if id != "slave-from-config" {
		t.Errorf("Expected configured id, got %s", id)
	}
}

func TestGeneratesAndPersistsID(t *testing.T) {
	dir := t.TempDir()

	id, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Generated id %s is not a UUID: %v", id, err)
	}

	// Same id on the next load
	again, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if again != id {
		t.Errorf("Identity not stable across loads: %s vs %s", id, again)
	}
}

func TestRejectsCorruptIDFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "slave-id.txt"), []byte("not a uuid\n"), 0644); err != nil {
		t.Fatalf("Failed to write id file: %v", err)
	}

	if _, err := Load(dir, ""); err == nil {
		t.Error("Expected error for corrupt id file")
	}
}

func TestCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	id, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if id == "" {
		t.Error("Expected generated id")
	}
	if _, err := os.Stat(filepath.Join(dir, "slave-id.txt")); err != nil {
		t.Errorf("Identity file not created: %v", err)
	}
}
