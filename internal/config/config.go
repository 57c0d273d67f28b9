package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	Tenant Tenant `yaml:"tenant"`

	Auth Auth `yaml:"auth"`

	Cloud Cloud `yaml:"cloud"`

	Discovery Discovery `yaml:"discovery"`

	Monitor Monitor `yaml:"monitor"`

	Dispatch Dispatch `yaml:"dispatch"`
}

type Server struct {
	Address string `yaml:"address"`
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type Tenant struct {
	ID string `yaml:"id"`
}

type Auth struct {
	// Operator credentials; the password is stored bcrypt-hashed
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`

	JWT JWT `yaml:"jwt"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Cloud struct {
	Enabled      bool   `yaml:"enabled"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	SyncInterval int    `yaml:"sync_interval"` // In Seconds
	Timeout      int    `yaml:"timeout"`       // In Seconds
}

type Discovery struct {
	Subnets      []string `yaml:"subnets"`
	Ports        []int    `yaml:"ports"`
	Workers      int      `yaml:"workers"`
	ProbeTimeout int      `yaml:"probe_timeout"` // In Milliseconds
	ScanTimeout  int      `yaml:"scan_timeout"`  // In Seconds
	MDNS         bool     `yaml:"mdns"`

	SNMP SNMP `yaml:"snmp"`
}

type SNMP struct {
	Enabled   bool   `yaml:"enabled"`
	Community string `yaml:"community"`
	Timeout   int    `yaml:"timeout"` // In Seconds
}

type Monitor struct {
	Interval int `yaml:"interval"` // In Seconds
	Timeout  int `yaml:"timeout"`  // In Seconds
}

type Dispatch struct {
	MaxRetries   int `yaml:"max_retries"`
	RetryBackoff int `yaml:"retry_backoff"` // In Milliseconds
	Timeout      int `yaml:"timeout"`       // In Seconds
}

// SyncIntervalDuration returns the cloud sync interval with a sane default
func (c Cloud) SyncIntervalDuration() time.Duration {
	if c.SyncInterval <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.SyncInterval) * time.Second
}

// TimeoutDuration returns the cloud request timeout with a sane default
func (c Cloud) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// ProbeTimeoutDuration returns the per-host probe timeout with a sane default
func (d Discovery) ProbeTimeoutDuration() time.Duration {
	if d.ProbeTimeout <= 0 {
		return 750 * time.Millisecond
	}
	return time.Duration(d.ProbeTimeout) * time.Millisecond
}

// ScanTimeoutDuration returns the whole-sweep timeout with a sane default
func (d Discovery) ScanTimeoutDuration() time.Duration {
	if d.ScanTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.ScanTimeout) * time.Second
}

// IntervalDuration returns the probe interval with a sane default
func (m Monitor) IntervalDuration() time.Duration {
	if m.Interval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.Interval) * time.Second
}

// TimeoutDuration returns the per-printer probe timeout with a sane default
func (m Monitor) TimeoutDuration() time.Duration {
	if m.Timeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(m.Timeout) * time.Second
}

// RetryBackoffDuration returns the dispatch retry backoff with a sane default
func (d Dispatch) RetryBackoffDuration() time.Duration {
	if d.RetryBackoff <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(d.RetryBackoff) * time.Millisecond
}

// TimeoutDuration returns the per-dispatch timeout with a sane default
func (d Dispatch) TimeoutDuration() time.Duration {
	if d.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.Timeout) * time.Second
}

func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
