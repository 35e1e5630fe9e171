package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sumofix/internal/testsupport"
)

const sceneDocument = `{"data":{"scene":{"geometries":[{"type":"BoxBufferGeometry"}]},"auth":"sumo.app/api/auth/check","img":"data:image/png;base64,iVBORw0KGgo="}}`

type cliTestEnv struct {
	configPath string
	stateDir   string
	workDir    string
}

func setupCLITestEnv(t *testing.T, historyEnabled bool) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		configPath: filepath.Join(base, "sumofix.toml"),
		stateDir:   filepath.Join(base, "state"),
		workDir:    filepath.Join(base, "work"),
	}
	content := fmt.Sprintf("[paths]\nstate_dir = %q\n\n[history]\nenabled = %t\n\n[logging]\nlevel = \"error\"\n",
		env.stateDir, historyEnabled)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.MkdirAll(env.workDir, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeScene(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.workDir, name)
	testsupport.WriteArchive(t, path,
		testsupport.Member{Name: "data.txt", Data: sceneDocument},
		testsupport.Member{Name: "mesh.bin", Data: "\x01\x02"},
	)
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestFixSingleArchiveAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, true)
	input := env.writeScene(t, "room.sumo")

	out, _, err := runCLI(t, []string{"fix", input}, env.configPath)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	requireContains(t, out, "Repaired room.sumo")
	requireContains(t, out, "Geometries renamed: 1")
	requireContains(t, out, "- auth in data")

	members := testsupport.ReadArchive(t, filepath.Join(env.workDir, "room_fixed.sumo"))
	if len(members) != 2 || members[0].Name != "data.txt" || members[1].Data != "\x01\x02" {
		t.Fatalf("unexpected output members %+v", members)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "1 succeeded, 0 failed")
	requireContains(t, out, "room_fixed.sumo")
}

func TestFixBatchDirectory(t *testing.T) {
	env := setupCLITestEnv(t, false)
	env.writeScene(t, "one.sumo")
	env.writeScene(t, "two.sumo")
	testsupport.WriteFile(t, filepath.Join(env.workDir, "three.sumo"), []byte("corrupt"))

	out, _, err := runCLI(t, []string{"fix", "--batch", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("fix --batch: %v", err)
	}
	requireContains(t, out, "Repaired 2 of 3 archives")
	for _, name := range []string{"one_fixed.sumo", "two_fixed.sumo"} {
		if _, err := os.Stat(filepath.Join(env.workDir, "fixed", name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.workDir, "fixed", "three_fixed.sumo")); !os.IsNotExist(err) {
		t.Fatalf("corrupt archive should produce no output, stat err=%v", err)
	}
}

func TestFixCorruptArchiveFails(t *testing.T) {
	env := setupCLITestEnv(t, false)
	input := filepath.Join(env.workDir, "bad.sumo")
	testsupport.WriteFile(t, input, []byte("not a zip"))

	out, _, err := runCLI(t, []string{"fix", input}, env.configPath)
	if err == nil {
		t.Fatal("expected error for corrupt archive")
	}
	requireContains(t, out, "Failed to repair bad.sumo")
}

func TestFixWithoutTerminalSelectsNothing(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"fix"}, env.configPath)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	requireContains(t, out, "Nothing selected")
}

func TestFixRejectsOutputWithBatch(t *testing.T) {
	env := setupCLITestEnv(t, false)
	if _, _, err := runCLI(t, []string{"fix", "--batch", "--output", "x.sumo", env.workDir}, env.configPath); err == nil {
		t.Fatal("expected flag conflict error")
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, false)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "History is disabled")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, false)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.stateDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestLogsFilteredByRun(t *testing.T) {
	env := setupCLITestEnv(t, true)
	input := env.writeScene(t, "room.sumo")
	if _, _, err := runCLI(t, []string{"fix", input}, env.configPath); err != nil {
		t.Fatalf("fix: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--archive", "room.sumo"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, `"archive repaired"`)

	out, _, err = runCLI(t, []string{"logs", "--run", "no-such-run"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log lines")
}

func TestCheckPasses(t *testing.T) {
	env := setupCLITestEnv(t, true)
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "[ok  ] State directory")
	requireContains(t, out, "History ledger")
}
