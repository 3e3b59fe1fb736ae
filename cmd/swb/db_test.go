package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
)

// writeTestConfig drops a sqlite-backed config into a temp dir and returns
// its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "switchboard.yaml")
	yaml := `
server:
  port: 8080
database:
  driver: sqlite
  path: ` + filepath.Join(dir, "swb.db") + `
departments:
  - support
  - sales
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// initTestDB migrates the config's database and returns a live connection.
func initTestDB(t *testing.T, configPath string) *gorm.DB {
	t.Helper()

	initCmd := newRootCmd()
	initCmd.SetOut(new(bytes.Buffer))
	initCmd.SetErr(new(bytes.Buffer))
	initCmd.SetArgs([]string{"db", "init", "--config", configPath})
	if err := initCmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return gormDB
}

func TestDBCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db --help failed: %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"init", "reset"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestDBInitCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"db", "init", "--config", "/nonexistent/switchboard.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestDBInitCmd_CreatesAndSeeds(t *testing.T) {
	configPath := writeTestConfig(t)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "init", "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Migrated") {
		t.Errorf("expected migration output, got: %s", out)
	}
	if !strings.Contains(out, "support") || !strings.Contains(out, "sales") {
		t.Errorf("expected seeded departments in output, got: %s", out)
	}
}

func TestDBResetCmd_RequiresConfirmation(t *testing.T) {
	configPath := writeTestConfig(t)

	// init first
	initCmd := newRootCmd()
	initCmd.SetOut(new(bytes.Buffer))
	initCmd.SetArgs([]string{"db", "init", "--config", configPath})
	if err := initCmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"db", "reset", "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db reset failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Aborted") {
		t.Errorf("expected abort without confirmation, got: %s", buf.String())
	}
}

func TestDBResetCmd_Yes(t *testing.T) {
	configPath := writeTestConfig(t)

	initCmd := newRootCmd()
	initCmd.SetOut(new(bytes.Buffer))
	initCmd.SetArgs([]string{"db", "init", "--config", configPath})
	if err := initCmd.Execute(); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"db", "reset", "--config", configPath, "--yes"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db reset --yes failed: %v", err)
	}
	if !strings.Contains(buf.String(), "reset successfully") {
		t.Errorf("expected reset confirmation, got: %s", buf.String())
	}
}

func TestConnectFromConfig_SQLite(t *testing.T) {
	configPath := writeTestConfig(t)

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		t.Fatalf("connectFromConfig failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if gormDB == nil {
		t.Fatal("expected non-nil DB")
	}
}
