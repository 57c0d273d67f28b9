package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
database:
  host: "db.local"
  port: 5432
  user: "svc"
  password: "pw"
  dbname: "printing"
  sslmode: "disable"
tenant:
  id: "t-1"
cloud:
  enabled: true
  sync_interval: 60
discovery:
  subnets:
    - "10.0.0.0/24"
  mdns: true
monitor:
  interval: 10
dispatch:
  max_retries: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("server address wrong: %s", cfg.Server.Address)
	}
	if cfg.Database.Host != "db.local" {
		t.Fatalf("database host wrong: %s", cfg.Database.Host)
	}
	if cfg.Tenant.ID != "t-1" {
		t.Fatalf("tenant wrong: %s", cfg.Tenant.ID)
	}
	if !cfg.Cloud.Enabled || cfg.Cloud.SyncIntervalDuration() != time.Minute {
		t.Fatalf("cloud config wrong: %+v", cfg.Cloud)
	}
	if len(cfg.Discovery.Subnets) != 1 || cfg.Discovery.Subnets[0] != "10.0.0.0/24" {
		t.Fatalf("discovery subnets wrong: %v", cfg.Discovery.Subnets)
	}
	if cfg.Monitor.IntervalDuration() != 10*time.Second {
		t.Fatalf("monitor interval wrong")
	}
	if cfg.Dispatch.MaxRetries != 3 {
		t.Fatalf("dispatch retries wrong")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/does/not/exist.yaml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestDurationDefaults(t *testing.T) {
	var (
		cloud     Cloud
		discovery Discovery
		monitor   Monitor
		dispatch  Dispatch
	)

	if cloud.SyncIntervalDuration() != 5*time.Minute {
		t.Errorf("cloud sync interval default wrong")
	}
	if cloud.TimeoutDuration() != 15*time.Second {
		t.Errorf("cloud timeout default wrong")
	}
	if discovery.ProbeTimeoutDuration() != 750*time.Millisecond {
		t.Errorf("probe timeout default wrong")
	}
	if discovery.ScanTimeoutDuration() != 30*time.Second {
		t.Errorf("scan timeout default wrong")
	}
	if monitor.IntervalDuration() != 30*time.Second {
		t.Errorf("monitor interval default wrong")
	}
	if monitor.TimeoutDuration() != 3*time.Second {
		t.Errorf("monitor timeout default wrong")
	}
	if dispatch.RetryBackoffDuration() != 250*time.Millisecond {
		t.Errorf("retry backoff default wrong")
	}
	if dispatch.TimeoutDuration() != 10*time.Second {
		t.Errorf("dispatch timeout default wrong")
	}
}
