/*
Package config loads the process configuration and the working-time
policy from a YAML file.

The policy is loaded once at startup, validated, and handed to the
engine components as an immutable value. Nothing re-reads or mutates it
afterwards; changing policy means restarting the process.

Example file:

	server:
	  listen_addr: ":8080"
	  metrics_addr: ":9090"
	database:
	  path: "./data/worktime.db"
	policy:
	  max_weekly_hours: 48
	  min_daily_rest_hours: 11
	  standard_daily_hours: 8
	  allow_negative_overtime: false
	  lock_approved_intervals: true
	  leave_allocations:
	    vacation: 25
	    sick_leave: 10
	    special_permit: 5
*/
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tempus/worktime-engine/engine"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Policy   PolicyConfig   `yaml:"policy"`
}

type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PolicyConfig is the YAML shape of the working-time policy. Zero
// values fall back to the statutory defaults.
type PolicyConfig struct {
	MaxWeeklyHours        float64        `yaml:"max_weekly_hours"`
	MinDailyRestHours     float64        `yaml:"min_daily_rest_hours"`
	StandardDailyHours    float64        `yaml:"standard_daily_hours"`
	AllowNegativeOvertime bool           `yaml:"allow_negative_overtime"`
	LockApprovedIntervals *bool          `yaml:"lock_approved_intervals"`
	LeaveAllocations      map[string]int `yaml:"leave_allocations"`
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndNormalize()
	return cfg
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = ":9090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "worktime.db"
	}

	p := &c.Policy
	if p.MaxWeeklyHours < 0 || p.MinDailyRestHours < 0 || p.StandardDailyHours < 0 {
		return fmt.Errorf("config: policy hours must not be negative")
	}
	for leaveType, days := range p.LeaveAllocations {
		if !engine.LeaveType(leaveType).Valid() {
			return fmt.Errorf("config: unknown leave type %q in leave_allocations", leaveType)
		}
		if days < 0 {
			return fmt.Errorf("config: allocation for %q must not be negative", leaveType)
		}
	}
	return nil
}

// EnginePolicy converts the YAML policy into the engine's immutable
// Policy value, filling gaps with the statutory defaults.
func (c *Config) EnginePolicy() engine.Policy {
	policy := engine.DefaultPolicy()

	p := c.Policy
	if p.MaxWeeklyHours > 0 {
		policy.MaxWeeklyHours = decimal.NewFromFloat(p.MaxWeeklyHours)
	}
	if p.MinDailyRestHours > 0 {
		policy.MinDailyRestHours = decimal.NewFromFloat(p.MinDailyRestHours)
	}
	if p.StandardDailyHours > 0 {
		policy.StandardDailyHours = decimal.NewFromFloat(p.StandardDailyHours)
	}
	policy.AllowNegativeOvertime = p.AllowNegativeOvertime
	if p.LockApprovedIntervals != nil {
		policy.LockApprovedIntervals = *p.LockApprovedIntervals
	}
	if len(p.LeaveAllocations) > 0 {
		allocations := make(map[engine.LeaveType]int, len(p.LeaveAllocations))
		for leaveType, days := range p.LeaveAllocations {
			allocations[engine.LeaveType(leaveType)] = days
		}
		policy.LeaveAllocations = allocations
	}
	return policy
}
