package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type APIConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type PlatformConfig struct {
	Miners          int           `yaml:"miners"`
	MinDifficulty   int           `yaml:"min_difficulty"`
	MaxDifficulty   int           `yaml:"max_difficulty"`
	MinRestInterval time.Duration `yaml:"min_rest_interval"` // pause between operations per miner
	MaxRestInterval time.Duration `yaml:"max_rest_interval"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

type CapsConfig struct {
	Operations         int `yaml:"operations"`          // arrival-time cap
	Blocks             int `yaml:"blocks"`              // arrival-time cap
	Discoveries        int `yaml:"discoveries"`         // arrival-time cap
	OperationsCeiling  int `yaml:"operations_ceiling"`  // sweep-enforced ceiling
	BlocksCeiling      int `yaml:"blocks_ceiling"`      // sweep-enforced ceiling
	DiscoveriesCeiling int `yaml:"discoveries_ceiling"` // sweep-enforced ceiling
}

type DashboardConfig struct {
	ServerURL         string        `yaml:"server_url"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	BackoffEnabled    bool          `yaml:"backoff_enabled"` // grow reconnect delay up to backoff_max
	BackoffMax        time.Duration `yaml:"backoff_max"`
	FastSweepInterval time.Duration `yaml:"fast_sweep_interval"`
	SlowSweepInterval time.Duration `yaml:"slow_sweep_interval"`
	CompletedMaxAge   time.Duration `yaml:"completed_max_age"`
	PollInterval      time.Duration `yaml:"poll_interval"` // REST fallback cadence
	Caps              CapsConfig    `yaml:"caps"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	API       APIConfig       `yaml:"api"`
	Platform  PlatformConfig  `yaml:"platform"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".miningd"),
		API: APIConfig{
			Bind: "127.0.0.1",
			Port: 5001,
		},
		Platform: PlatformConfig{
			Miners:          8,
			MinDifficulty:   40,
			MaxDifficulty:   80,
			MinRestInterval: 15 * time.Second,
			MaxRestInterval: 45 * time.Second,
			MetricsInterval: 30 * time.Second,
		},
		Dashboard: DashboardConfig{
			ServerURL:         "http://127.0.0.1:5001",
			ReconnectDelay:    3 * time.Second,
			FastSweepInterval: time.Minute,
			SlowSweepInterval: 5 * time.Minute,
			CompletedMaxAge:   5 * time.Minute,
			PollInterval:      10 * time.Second,
			Caps: CapsConfig{
				Operations:         10,
				Blocks:             10,
				Discoveries:        10,
				OperationsCeiling:  10,
				BlocksCeiling:      15,
				DiscoveriesCeiling: 20,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file and merges it with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults + env overlay
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand ~ in data_dir
	if len(cfg.DataDir) > 0 && cfg.DataDir[0] == '~' {
		home, _ := os.UserHomeDir()
		cfg.DataDir = filepath.Join(home, cfg.DataDir[1:])
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on top of config values.
func (c *Config) applyEnv() {
	if v := os.Getenv("MININGD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("MININGD_BIND"); v != "" {
		c.API.Bind = v
	}
	if v := os.Getenv("MININGD_SERVER_URL"); v != "" {
		c.Dashboard.ServerURL = v
	}
	if v := os.Getenv("MININGD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MININGD_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// DBPath returns the full path to the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "miningd.db")
}
