package registry

import (
	"sync"
	"testing"
)

func TestNewRegistryIsEmpty(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("Expected 0 entries, got %d", r.Len())
	}
}

func TestPutAndGet(t *testing.T) {
	r := New()
	r.Put("workload-a", "container-1")

	containerID, ok := r.Get("workload-a")
	if !ok {
		t.Fatal("Entry not found after Put")
	}
	if containerID != "container-1" {
		t.Errorf("Expected container-1, got %s", containerID)
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	r := New()
	r.Put("workload-a", "container-1")
	r.Put("workload-a", "container-2")

	if r.Len() != 1 {
		t.Fatalf("Expected 1 entry per workload id, got %d", r.Len())
	}
	containerID, _ := r.Get("workload-a")
	if containerID != "container-2" {
		t.Errorf("Expected container-2, got %s", containerID)
	}
}

func TestRemove(t *testing.T) {
	r := New()
	r.Put("workload-a", "container-1")
	r.Remove("workload-a")

	if r.Contains("workload-a") {
		t.Error("Entry still present after Remove")
	}

	// Removing an absent id is a no-op
	r.Remove("workload-b")
}

func TestClear(t *testing.T) {
	r := New()
	r.Put("workload-a", "container-1")
	r.Put("workload-b", "container-2")

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry after Clear, got %d entries", r.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New()
	r.Put("workload-a", "container-1")

	snapshot := r.Snapshot()
	snapshot["workload-b"] = "container-2"

	if r.Contains("workload-b") {
		t.Error("Mutating a snapshot changed the registry")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Put("workload-a", "container-1")
			r.Get("workload-a")
			r.Snapshot()
			r.Remove("workload-a")
		}()
	}
	wg.Wait()

	if r.Len() > 1 {
		t.Errorf("Expected at most 1 entry, got %d", r.Len())
	}
}
