package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "aegis/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig        `mapstructure:"auth"`
	Email       sharedConfig.EmailConfig       `mapstructure:"email"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
	Affiliation sharedConfig.AffiliationConfig `mapstructure:"affiliation"`
	Sync        sharedConfig.SyncConfig        `mapstructure:"sync"`
	AutoGroup   sharedConfig.AutoGroupConfig   `mapstructure:"auto_group"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml, applies AEGIS_* environment overrides and
// defaults, and unmarshals the typed configuration.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("AEGIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "aegis_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("auth.jwt.secret", "change-me-in-production")
	viper.SetDefault("auth.jwt.access_exp_minutes", 15)
	viper.SetDefault("auth.bcrypt_cost", 12)

	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@aegis.local")
	viper.SetDefault("email.from_name", "Aegis")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("affiliation.base_url", "")
	viper.SetDefault("affiliation.token_url", "")
	viper.SetDefault("affiliation.client_id", "")
	viper.SetDefault("affiliation.client_secret", "")
	viper.SetDefault("affiliation.timeout_seconds", 10)
	viper.SetDefault("affiliation.cache_ttl_hours", 2)
	viper.SetDefault("affiliation.refresh_interval_hours", 6)

	viper.SetDefault("sync.workers", 4)
	viper.SetDefault("sync.retry_backoff_minutes", 10)
	viper.SetDefault("sync.max_attempts", 3)
	viper.SetDefault("sync.call_timeout_seconds", 30)
	viper.SetDefault("sync.sweep_interval_hours", 12)
	viper.SetDefault("sync.registry_path", "./configs/services.yaml")

	viper.SetDefault("auto_group.name_source", "name")
	viper.SetDefault("auto_group.space_replacement", " ")
}
