package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"sumofix/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLockDetectsHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sumofix.lock")
	if result := CheckLock(path); !result.Passed {
		t.Fatalf("expected free lock, got %s", result.Detail)
	}

	holder := flock.New(path)
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	result := CheckLock(path)
	if result.Passed || !strings.Contains(result.Detail, "held by another run") {
		t.Fatalf("expected held lock, got %+v", result)
	}
}

func TestRunAllSkipsDisabledFeatures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected state dir and lock checks, got %+v", results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithHistory(), testsupport.WithDiskWorkspace())
	results = RunAll(context.Background(), cfg)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	if strings.Join(names, ",") != "State directory,Workspace directory,Run lock,History ledger" {
		t.Fatalf("unexpected checks %v", names)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if !strings.Contains(results[3].Detail, "0 runs recorded") {
		t.Fatalf("unexpected history detail %q", results[3].Detail)
	}
}
