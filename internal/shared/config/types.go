package config

import "fmt"

// DatabaseConfig describes one MySQL connection. The worker talks to two
// of them: the external, read-mostly panel database (admins, users,
// deletions, reset logs, plus the enforcement triggers) and the bot
// database this project owns (admin_settings, admin_usage).
type DatabaseConfig struct {
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

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	// APIBaseURL overrides the default https://api.telegram.org, useful for
	// local Bot API servers or test doubles.
	APIBaseURL     string `mapstructure:"api_base_url"`
	RequestTimeout int    `mapstructure:"request_timeout_seconds"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// NotificationsConfig selects the delivery channel and who receives
// owner-level alerts. Owners are chat IDs for the telegram channel and
// addresses for the email channel.
type NotificationsConfig struct {
	Channel  string   `mapstructure:"channel"`
	Language string   `mapstructure:"language"`
	Owners   []string `mapstructure:"owners"`
}

// WorkerConfig controls the reconciliation cadence. Intervals are minutes.
type WorkerConfig struct {
	TickIntervalMinutes         int    `mapstructure:"tick_interval_minutes"`
	ArchiveIntervalMinutes      int    `mapstructure:"archive_interval_minutes"`
	CapacityWarnIntervalMinutes int    `mapstructure:"capacity_warn_interval_minutes"`
	Timezone                    string `mapstructure:"timezone"`
	SnapshotCacheTTLMinutes     int    `mapstructure:"snapshot_cache_ttl_minutes"`
}
