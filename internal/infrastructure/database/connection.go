package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marzhelp/internal/shared/config"
	"marzhelp/internal/shared/logger"
)

// Connections holds the two database handles the worker operates on:
// the panel database (admins, users, usage logs, deletions; also hosts
// the enforcement triggers) and the bot database (tenant settings and
// usage archive).
type Connections struct {
	panel *gorm.DB
	bot   *gorm.DB
}

// Panel returns the panel database handle.
func (c *Connections) Panel() *gorm.DB {
	return c.panel
}

// Bot returns the bot database handle.
func (c *Connections) Bot() *gorm.DB {
	return c.bot
}

// Connect opens both databases and verifies connectivity. A failure here
// is fatal for the worker; there is nothing useful it can do without
// either handle.
func Connect(panelCfg, botCfg *config.DatabaseConfig) (*Connections, error) {
	panel, err := open(panelCfg, "panel")
	if err != nil {
		return nil, err
	}
	bot, err := open(botCfg, "bot")
	if err != nil {
		return nil, err
	}
	return &Connections{panel: panel, bot: bot}, nil
}

func open(cfg *config.DatabaseConfig, name string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: newFilteredLogger(),
	}

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s database instance: %w", name, err)
	}

	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	lifetime := time.Duration(cfg.ConnMaxLifetime) * time.Minute
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", name, err)
	}

	logger.Info("database connected",
		slog.String("name", name),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	return db, nil
}

// Close closes both underlying connection pools.
func (c *Connections) Close() error {
	var errs []string
	for name, db := range map[string]*gorm.DB{"panel": c.panel, "bot": c.bot} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close databases: %s", strings.Join(errs, "; "))
	}
	return nil
}

// filteredLogger suppresses gorm's record-not-found noise. Absent settings
// rows are an expected condition handled by the reconciliation loop.
type filteredLogger struct {
	gormlogger.Interface
}

func newFilteredLogger() gormlogger.Interface {
	return &filteredLogger{
		Interface: gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func (l *filteredLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err == gorm.ErrRecordNotFound {
		return
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
