package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[[jurisdiction]]
name = "Testville"
channel_url = "https://www.youtube.com/@testville/videos"
meeting_bodies = ["City Council"]
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitCreatesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestConfigShowRedactsKeys(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "Testville") {
		t.Fatalf("expected jurisdiction in output: %q", out)
	}
	if strings.Contains(out, "api_key") {
		t.Fatalf("api keys must never appear in config output: %q", out)
	}
}

func TestStatusEmptyStore(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No meetings tracked yet") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestStatusListsTrackedMeetings(t *testing.T) {
	configPath := writeCLIConfig(t)

	ctx := newCommandContext(&configPath)
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	store, err := meetings.Open(cfg.Paths.StorePath, logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	rec := meetings.Record{
		ID:           "abc123",
		Jurisdiction: "Testville",
		Title:        "City Council Regular Meeting",
		Date:         "2026-08-20",
		Source:       meetings.SourceChannel,
	}
	if err := store.Upsert(rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "abc123") || !strings.Contains(out, "Testville") {
		t.Fatalf("expected tracked record in output: %q", out)
	}
	if !strings.Contains(out, "pending") {
		t.Fatalf("expected pending state in output: %q", out)
	}
}
