package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempus/worktime-engine/config"
	"github.com/tempus/worktime-engine/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worktime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfig_Load_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9000"
  metrics_addr: ":9100"
database:
  path: "./test.db"
policy:
  max_weekly_hours: 40
  min_daily_rest_hours: 12
  standard_daily_hours: 7.5
  allow_negative_overtime: true
  lock_approved_intervals: false
  leave_allocations:
    vacation: 30
    sick_leave: 15
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, ":9100", cfg.Server.MetricsAddr)
	assert.Equal(t, "./test.db", cfg.Database.Path)

	policy := cfg.EnginePolicy()
	assert.Equal(t, "40", policy.MaxWeeklyHours.String())
	assert.Equal(t, "12", policy.MinDailyRestHours.String())
	assert.Equal(t, "7.5", policy.StandardDailyHours.String())
	assert.True(t, policy.AllowNegativeOvertime)
	assert.False(t, policy.LockApprovedIntervals)
	assert.Equal(t, 30, policy.Allocation(engine.LeaveVacation))
	assert.Equal(t, 15, policy.Allocation(engine.LeaveSick))
	// The allocation map was replaced wholesale; unlisted types get zero.
	assert.Equal(t, 0, policy.Allocation(engine.LeaveSpecialPermit))
}

func TestConfig_Load_EmptyFileGetsDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)
	assert.Equal(t, "worktime.db", cfg.Database.Path)

	policy := cfg.EnginePolicy()
	assert.Equal(t, "48", policy.MaxWeeklyHours.String())
	assert.Equal(t, "11", policy.MinDailyRestHours.String())
	assert.Equal(t, "8", policy.StandardDailyHours.String())
	assert.True(t, policy.LockApprovedIntervals, "locking defaults on")
	assert.Equal(t, 25, policy.Allocation(engine.LeaveVacation))
}

func TestConfig_Load_RejectsBadPolicy(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative hours", "policy:\n  max_weekly_hours: -1\n"},
		{"unknown leave type", "policy:\n  leave_allocations:\n    sabbatical: 10\n"},
		{"negative allocation", "policy:\n  leave_allocations:\n    vacation: -5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_Load_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Default(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "worktime.db", cfg.Database.Path)
}
