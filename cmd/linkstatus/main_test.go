package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/database"
	"github.com/nerrad567/linkstatus-core/migrations"
)

// writeConfig writes content to a temp config file and points LINKSTATUS_CONFIG at it.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	return dir
}

// TestRun_InvalidConfig verifies run fails with an explicit but missing config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv(configPathEnv, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidTopologySource verifies validation errors stop startup.
func TestRun_InvalidTopologySource(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
topology:
  source: etcd
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "topology.source") {
		t.Fatalf("run() error = %v, want topology.source validation error", err)
	}
}

// TestRun_MissingTopologyFile verifies a file topology that cannot be read fails startup.
func TestRun_MissingTopologyFile(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
topology:
  source: file
  file: /nonexistent/topology.yaml
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "loading topology") {
		t.Fatalf("run() error = %v, want topology load error", err)
	}
}

// TestRun_EmbeddedTopologyStartupAndShutdown runs the service with only the
// report endpoint and shuts it down via context cancellation.
func TestRun_EmbeddedTopologyStartupAndShutdown(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
upstream:
  url: "http://127.0.0.1:1/api/devices"
  timeout: 1
api:
  host: "127.0.0.1"
  port: 19180
  timeouts:
    read: 5
    write: 5
    idle: 5
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRun_DatabaseTopologySeeded verifies the database path: migrations run,
// the topology is seeded from file and the reporter starts.
func TestRun_DatabaseTopologySeeded(t *testing.T) {
	dir := t.TempDir()
	topoPath := filepath.Join(dir, "topology.yaml")
	topo := `
order: [ds]
ranges:
  ds: {start: 17, end: 32}
links:
  - {source: ds, parent_seq: 17, child_seqs: [1]}
`
	if err := os.WriteFile(topoPath, []byte(topo), 0600); err != nil {
		t.Fatalf("writing topology: %v", err)
	}

	writeConfig(t, `
site:
  id: test-site
upstream:
  url: "http://127.0.0.1:1/api/devices"
  timeout: 1
topology:
  source: database
  file: "`+topoPath+`"
  seed_from_file: true
database:
  path: "`+filepath.Join(dir, "linkstatus.db")+`"
  wal_mode: true
  busy_timeout: 5
reporter:
  enabled: true
  interval: 60
api:
  host: "127.0.0.1"
  port: 19181
  timeouts:
    read: 5
    write: 5
    idle: 5
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "linkstatus.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_MQTTUnreachable verifies an enabled but unreachable broker fails startup.
func TestRun_MQTTUnreachable(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
mqtt:
  enabled: true
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
api:
  host: "127.0.0.1"
  port: 19182
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Fatalf("run() error = %v, want MQTT connection failure", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv(configPathEnv, "")

	path, explicit := getConfigPath()
	if path != defaultConfigPath || explicit {
		t.Errorf("getConfigPath() = %q, %v, want %q, false", path, explicit, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv(configPathEnv, expected)

	path, explicit := getConfigPath()
	if path != expected || !explicit {
		t.Errorf("getConfigPath() = %q, %v, want %q, true", path, explicit, expected)
	}
}

// TestLoadConfig_FallsBackToDefaults verifies a missing default file is not an error.
func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, path, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for built-in defaults", path)
	}
	if cfg.Topology.Source != "embedded" {
		t.Errorf("topology.source = %q, want embedded", cfg.Topology.Source)
	}
}

// TestHealthCheck_NoOptionalClients verifies health check with nothing configured.
func TestHealthCheck_NoOptionalClients(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}
}

// TestRunMigrateDown verifies the -migrate-down path rolls back exactly the
// latest migration of the configured database.
func TestRunMigrateDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "linkstatus.db")
	dbCfg := config.DatabaseConfig{Path: dbPath, BusyTimeout: 5}
	ctx := context.Background()

	db, err := database.Open(dbCfg)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS, "."); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	db.Close() //nolint:errcheck // reopened below

	writeConfig(t, `
upstream:
  url: "http://127.0.0.1:1/api/devices"
database:
  path: "`+dbPath+`"
  busy_timeout: 5
logging:
  level: error
  format: text
`)

	if err := runMigrateDown(ctx); err != nil {
		t.Fatalf("runMigrateDown() error = %v", err)
	}

	db, err = database.Open(dbCfg)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	applied, pending, err := db.MigrationStatus(ctx, migrations.FS, ".")
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 1 {
		t.Errorf("applied=%d pending=%d, want 1/1", len(applied), len(pending))
	}
}

func TestRunMigrateDown_InvalidConfig(t *testing.T) {
	t.Setenv(configPathEnv, "/nonexistent/config.yaml")
	if err := runMigrateDown(context.Background()); err == nil {
		t.Fatal("runMigrateDown() should fail with a missing config file")
	}
}
