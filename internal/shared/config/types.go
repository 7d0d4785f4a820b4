// Package config holds the typed configuration sections shared between the
// server and worker binaries. The viper loading logic lives in
// internal/infrastructure/config.
package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT        JWTConfig `mapstructure:"jwt"`
	BcryptCost int       `mapstructure:"bcrypt_cost"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// AffiliationConfig configures the external character-affiliation provider.
type AffiliationConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TokenURL      string `mapstructure:"token_url"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	TimeoutSecs   int    `mapstructure:"timeout_seconds"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours"`
	// RefreshIntervalHrs is how often the worker re-pulls affiliations for
	// every owned character.
	RefreshIntervalHrs int `mapstructure:"refresh_interval_hours"`
}

// SyncConfig tunes the reconciliation dispatcher.
type SyncConfig struct {
	Workers          int    `mapstructure:"workers"`
	RetryBackoffMins int    `mapstructure:"retry_backoff_minutes"`
	MaxAttempts      int    `mapstructure:"max_attempts"`
	CallTimeoutSecs  int    `mapstructure:"call_timeout_seconds"`
	SweepIntervalHrs int    `mapstructure:"sweep_interval_hours"`
	RegistryPath     string `mapstructure:"registry_path"`
}

// AutoGroupConfig controls generated organization/alliance group names.
type AutoGroupConfig struct {
	NameSource       string `mapstructure:"name_source"`       // "name" or "ticker"
	SpaceReplacement string `mapstructure:"space_replacement"` // "" deletes whitespace
}
