package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "marzhelp/internal/shared/config"
)

type Config struct {
	// Environment selects the migration strategy for `migrate up`:
	// gorm auto-migrate in development, SQL scripts elsewhere.
	Environment   string                           `mapstructure:"environment"`
	PanelDatabase sharedConfig.DatabaseConfig      `mapstructure:"panel_database"`
	BotDatabase   sharedConfig.DatabaseConfig      `mapstructure:"bot_database"`
	Logger        sharedConfig.LoggerConfig        `mapstructure:"logger"`
	Redis         sharedConfig.RedisConfig         `mapstructure:"redis"`
	Telegram      sharedConfig.TelegramConfig      `mapstructure:"telegram"`
	Email         sharedConfig.EmailConfig         `mapstructure:"email"`
	Notifications sharedConfig.NotificationsConfig `mapstructure:"notifications"`
	Worker        sharedConfig.WorkerConfig        `mapstructure:"worker"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
		viper.AddConfigPath("/etc/marzhelp")
	}

	viper.SetEnvPrefix("MARZHELP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
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
	viper.SetDefault("environment", "production")

	// Panel database defaults (Marzban's own MySQL instance)
	viper.SetDefault("panel_database.host", "localhost")
	viper.SetDefault("panel_database.port", 3306)
	viper.SetDefault("panel_database.username", "root")
	viper.SetDefault("panel_database.password", "")
	viper.SetDefault("panel_database.database", "marzban")
	viper.SetDefault("panel_database.max_idle_conns", 5)
	viper.SetDefault("panel_database.max_open_conns", 20)
	viper.SetDefault("panel_database.conn_max_lifetime", 60)

	// Bot database defaults
	viper.SetDefault("bot_database.host", "localhost")
	viper.SetDefault("bot_database.port", 3306)
	viper.SetDefault("bot_database.username", "root")
	viper.SetDefault("bot_database.password", "")
	viper.SetDefault("bot_database.database", "marzhelp")
	viper.SetDefault("bot_database.max_idle_conns", 5)
	viper.SetDefault("bot_database.max_open_conns", 20)
	viper.SetDefault("bot_database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Telegram defaults
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.request_timeout_seconds", 10)

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@marzhelp.local")
	viper.SetDefault("email.from_name", "Marzhelp")

	// Notification defaults
	viper.SetDefault("notifications.channel", "telegram")
	viper.SetDefault("notifications.language", "en")
	viper.SetDefault("notifications.owners", []string{})

	// Worker defaults: one-minute ticks like the original crontab entry,
	// archive every 15 minutes, capacity warnings once a day.
	viper.SetDefault("worker.tick_interval_minutes", 1)
	viper.SetDefault("worker.archive_interval_minutes", 15)
	viper.SetDefault("worker.capacity_warn_interval_minutes", 1440)
	viper.SetDefault("worker.timezone", "Asia/Tehran")
	viper.SetDefault("worker.snapshot_cache_ttl_minutes", 30)
}
