package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempWorkload(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed writing temp workload: %v", err)
	}
	return path
}

func TestLoadParsesFourFields(t *testing.T) {
	path := writeTempWorkload(t, "0 P1 6 100\n0 P2 3 100\n")
	jobs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	want := Job{Arrival: 0, Name: "P1", Service: 6, Memory: 100}
	if jobs[0] != want {
		t.Fatalf("jobs[0] = %+v; want %+v", jobs[0], want)
	}
}

func TestLoadSortsByArrivalPreservingTieOrder(t *testing.T) {
	path := writeTempWorkload(t, "5 B 1 1\n0 A 1 1\n5 C 1 1\n")
	jobs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	names := []string{jobs[0].Name, jobs[1].Name, jobs[2].Name}
	want := []string{"A", "B", "C"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v; want %v", names, want)
		}
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeTempWorkload(t, "0 P1 6 100\n\n   \n0 P2 3 100\n")
	jobs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}

func TestLoadRejectsWrongFieldCount(t *testing.T) {
	path := writeTempWorkload(t, "0 P1 6\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for a malformed row")
	}
}

func TestLoadRejectsNonPositiveService(t *testing.T) {
	path := writeTempWorkload(t, "0 P1 0 100\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for zero service time")
	}
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error opening a missing workload file")
	}
}
