package config

import (
	"testing"
	"time"

	"debinterface-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"NODE_NAME", "POLL_INTERVAL", "BACKOFF_ENABLED", "BACKOFF_MAX_INTERVAL", "BACKOFF_MULTIPLIER",
	"COMMAND_TIMEOUT", "BACKUP_DIR", "BACKUP_RETENTION", "INTERFACES_FILE",
	"DNSMASQ_RANGE_FILE", "DNSMASQ_BACKUP_FILE", "DNSMASQ_INIT_SCRIPT", "DNSMASQ_STRICT",
	"HEALTH_PORT",
}

func TestEnvironmentConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name:      "기본 설정값 사용",
			envVars:   map[string]string{},
			wantError: false,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "3306", cfg.Database.Port)
				assert.Equal(t, "root", cfg.Database.User)
				assert.Equal(t, "debinterface", cfg.Database.Database)
				assert.Equal(t, 30*time.Second, cfg.Agent.PollInterval)
				assert.Equal(t, 30*time.Second, cfg.Agent.CommandTimeout)
				assert.False(t, cfg.Agent.BackoffEnabled)
				assert.Equal(t, "/etc/network/interfaces", cfg.Interfaces.Path)
				assert.Equal(t, "/etc/dnsmasq.d/dhcp-range.conf", cfg.Dnsmasq.RangeFile)
				assert.Equal(t, "/etc/init.d/dnsmasq", cfg.Dnsmasq.InitScript)
				assert.Empty(t, cfg.Dnsmasq.BackupFile)
				assert.False(t, cfg.Dnsmasq.StrictDecoding)
				assert.Equal(t, "8080", cfg.Health.Port)
			},
		},
		{
			name: "환경 변수로 설정 오버라이드",
			envVars: map[string]string{
				"DB_HOST":              "custom-host",
				"DB_NAME":              "custom-db",
				"NODE_NAME":            "ap-node-1",
				"POLL_INTERVAL":        "60s",
				"BACKOFF_ENABLED":      "true",
				"BACKOFF_MAX_INTERVAL": "10m",
				"BACKOFF_MULTIPLIER":   "1.5",
				"INTERFACES_FILE":      "/tmp/interfaces",
				"DNSMASQ_RANGE_FILE":   "/tmp/range.conf",
				"DNSMASQ_BACKUP_FILE":  "/tmp/range.conf.orig",
				"DNSMASQ_STRICT":       "1",
				"HEALTH_PORT":          "9090",
			},
			wantError: false,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "custom-host", cfg.Database.Host)
				assert.Equal(t, "custom-db", cfg.Database.Database)
				assert.Equal(t, "ap-node-1", cfg.Agent.NodeName)
				assert.Equal(t, 60*time.Second, cfg.Agent.PollInterval)
				assert.True(t, cfg.Agent.BackoffEnabled)
				assert.Equal(t, 10*time.Minute, cfg.Agent.BackoffMaxInterval)
				assert.Equal(t, 1.5, cfg.Agent.BackoffMultiplier)
				assert.Equal(t, "/tmp/interfaces", cfg.Interfaces.Path)
				assert.Equal(t, "/tmp/range.conf", cfg.Dnsmasq.RangeFile)
				assert.Equal(t, "/tmp/range.conf.orig", cfg.Dnsmasq.BackupFile)
				assert.True(t, cfg.Dnsmasq.StrictDecoding)
				assert.Equal(t, "9090", cfg.Health.Port)
			},
		},
		{
			name:      "잘못된 값은 기본값 사용",
			envVars:   map[string]string{"POLL_INTERVAL": "soon", "DNSMASQ_STRICT": "maybe"},
			wantError: false,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Second, cfg.Agent.PollInterval)
				assert.False(t, cfg.Dnsmasq.StrictDecoding)
			},
		},
		{
			name:      "음수 폴링 간격",
			envVars:   map[string]string{"POLL_INTERVAL": "-5s"},
			wantError: true,
		},
		{
			name: "백오프 배수가 1 이하",
			envVars: map[string]string{
				"BACKOFF_ENABLED":    "true",
				"BACKOFF_MULTIPLIER": "1",
			},
			wantError: true,
		},
		{
			name: "백오프 최대 간격이 폴링 간격보다 짧음",
			envVars: map[string]string{
				"BACKOFF_ENABLED":      "true",
				"POLL_INTERVAL":        "2m",
				"BACKOFF_MAX_INTERVAL": "1m",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configEnvKeys {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewEnvironmentConfigLoader().Load()
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}
