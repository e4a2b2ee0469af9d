package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"debinterface-agent/internal/domain/constants"
	"debinterface-agent/internal/domain/errors"
)

// Config는 애플리케이션 설정을 담는 구조체입니다
type Config struct {
	Database   DatabaseConfig
	Agent      AgentConfig
	Interfaces InterfacesConfig
	Dnsmasq    DnsmasqConfig
	Health     HealthConfig
}

// DatabaseConfig는 원하는 범위 상태 저장소 연결 설정입니다
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AgentConfig는 폴링 에이전트 설정입니다
type AgentConfig struct {
	NodeName           string
	PollInterval       time.Duration
	BackoffEnabled     bool
	BackoffMaxInterval time.Duration
	BackoffMultiplier  float64
	MaxRetries         int
	RetryDelay         time.Duration
	CommandTimeout     time.Duration
	BackupDirectory    string
	BackupRetention    int
}

// InterfacesConfig는 /etc/network/interfaces 파일 설정입니다
type InterfacesConfig struct {
	Path string
}

// DnsmasqConfig는 dnsmasq 범위 파일과 서비스 설정입니다
type DnsmasqConfig struct {
	RangeFile      string
	BackupFile     string
	InitScript     string
	StrictDecoding bool
}

// HealthConfig는 헬스체크 서버 설정입니다
type HealthConfig struct {
	Port string
}

// ConfigLoader는 설정을 로드하는 인터페이스입니다
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader는 환경 변수에서 설정을 로드합니다
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader는 새로운 EnvironmentConfigLoader를 생성합니다
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load는 환경 변수에서 설정을 읽고 검증합니다
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", constants.DefaultDBHost),
			Port:         getEnvOrDefault("DB_PORT", constants.DefaultDBPort),
			User:         getEnvOrDefault("DB_USER", "root"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			Database:     getEnvOrDefault("DB_NAME", constants.DefaultDBName),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Agent: AgentConfig{
			NodeName:           getEnvOrDefault("NODE_NAME", ""),
			PollInterval:       getEnvDurationOrDefault("POLL_INTERVAL", 30*time.Second),
			BackoffEnabled:     getEnvBoolOrDefault("BACKOFF_ENABLED", false),
			BackoffMaxInterval: getEnvDurationOrDefault("BACKOFF_MAX_INTERVAL", 5*time.Minute),
			BackoffMultiplier:  getEnvFloatOrDefault("BACKOFF_MULTIPLIER", 2.0),
			MaxRetries:         getEnvIntOrDefault("MAX_RETRIES", 3),
			RetryDelay:         getEnvDurationOrDefault("RETRY_DELAY", 2*time.Second),
			CommandTimeout:     getEnvDurationOrDefault("COMMAND_TIMEOUT", constants.DefaultCommandTimeout*time.Second),
			BackupDirectory:    getEnvOrDefault("BACKUP_DIR", constants.DefaultBackupDir),
			BackupRetention:    getEnvIntOrDefault("BACKUP_RETENTION", 10),
		},
		Interfaces: InterfacesConfig{
			Path: getEnvOrDefault("INTERFACES_FILE", constants.InterfacesFile),
		},
		Dnsmasq: DnsmasqConfig{
			RangeFile:      getEnvOrDefault("DNSMASQ_RANGE_FILE", constants.DnsmasqRangeFile),
			BackupFile:     getEnvOrDefault("DNSMASQ_BACKUP_FILE", ""),
			InitScript:     getEnvOrDefault("DNSMASQ_INIT_SCRIPT", constants.DnsmasqInitScript),
			StrictDecoding: getEnvBoolOrDefault("DNSMASQ_STRICT", false),
		},
		Health: HealthConfig{
			Port: getEnvOrDefault("HEALTH_PORT", constants.DefaultHealthPort),
		},
	}

	if err := l.validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate는 설정 값을 검증합니다
func (l *EnvironmentConfigLoader) validate(config *Config) error {
	if config.Database.Host == "" {
		return errors.NewValidationError("database host not configured", nil)
	}
	if config.Database.Port == "" {
		return errors.NewValidationError("database port not configured", nil)
	}
	if config.Database.User == "" {
		return errors.NewValidationError("database user not configured", nil)
	}
	if config.Database.Database == "" {
		return errors.NewValidationError("database name not configured", nil)
	}

	if config.Agent.PollInterval <= 0 {
		return errors.NewValidationError("invalid polling interval", nil)
	}
	if config.Agent.MaxRetries < 0 {
		return errors.NewValidationError("invalid max retry count", nil)
	}
	if config.Agent.BackoffEnabled {
		if config.Agent.BackoffMultiplier <= 1.0 {
			return errors.NewValidationError("backoff multiplier must be greater than 1", nil)
		}
		if config.Agent.BackoffMaxInterval < config.Agent.PollInterval {
			return errors.NewValidationError("backoff max interval must not be shorter than polling interval", nil)
		}
	}

	if config.Interfaces.Path == "" {
		return errors.NewValidationError("interfaces file not configured", nil)
	}
	if config.Dnsmasq.RangeFile == "" {
		return errors.NewValidationError("dnsmasq range file not configured", nil)
	}

	if config.Health.Port == "" {
		return errors.NewValidationError("health check port not configured", nil)
	}

	return nil
}

// 환경 변수 헬퍼 함수들

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
