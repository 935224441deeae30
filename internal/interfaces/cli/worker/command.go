// Package worker implements the reconciliation worker command.
package worker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marzhelp/internal/application/reconcile"
	"marzhelp/internal/infrastructure/cache"
	"marzhelp/internal/infrastructure/config"
	"marzhelp/internal/infrastructure/database"
	"marzhelp/internal/infrastructure/email"
	"marzhelp/internal/infrastructure/enforcement"
	"marzhelp/internal/infrastructure/i18n"
	"marzhelp/internal/infrastructure/repository"
	"marzhelp/internal/infrastructure/scheduler"
	"marzhelp/internal/infrastructure/telegram"
	"marzhelp/internal/shared/biztime"
	"marzhelp/internal/shared/logger"
)

var (
	configPath string
	once       bool
)

// NewCommand creates the worker command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the quota reconciliation worker",
		Long:  `Continuously reconcile tenant quotas: aggregate usage, update statuses, send notifications, and maintain enforcement rules.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single reconciliation pass and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting quota reconciliation worker")

	if err := biztime.SetTimezone(cfg.Worker.Timezone); err != nil {
		log.Warnw("invalid timezone, keeping default",
			"timezone", cfg.Worker.Timezone, "error", err)
	}

	conns, err := database.Connect(&cfg.PanelDatabase, &cfg.BotDatabase)
	if err != nil {
		return fmt.Errorf("failed to connect databases: %w", err)
	}
	defer conns.Close()

	service, cleanup, err := buildService(cfg, conns, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if once {
		log.Infow("running single reconciliation pass")
		return service.RunTick(cmd.Context())
	}

	sched := scheduler.NewReconciliationScheduler(
		service,
		time.Duration(cfg.Worker.TickIntervalMinutes)*time.Minute,
		time.Duration(cfg.Worker.ArchiveIntervalMinutes)*time.Minute,
		time.Duration(cfg.Worker.CapacityWarnIntervalMinutes)*time.Minute,
		log,
	)
	sched.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	sched.Stop()
	log.Infow("quota reconciliation worker stopped")
	return nil
}

func buildService(cfg *config.Config, conns *database.Connections, log logger.Interface) (*reconcile.Service, func(), error) {
	adminRepo := repository.NewAdminRepository(conns.Panel())
	settingsRepo := repository.NewAdminSettingsRepository(conns.Bot())
	usageRepo := repository.NewUsageRepository(conns.Panel())
	archiveRepo := repository.NewAdminUsageRepository(conns.Bot())
	ruleStore := enforcement.NewTriggerRuleStore(conns.Panel())

	var notifier reconcile.Notifier
	switch cfg.Notifications.Channel {
	case "email":
		notifier = email.NewNotifier(&cfg.Email)
	default:
		bot := telegram.NewBotService(&cfg.Telegram, log.With("component", "telegram"))
		notifier = telegram.NewNotifier(bot)
	}

	snapshotCache := cache.NewSnapshotCache(&cfg.Redis,
		time.Duration(cfg.Worker.SnapshotCacheTTLMinutes)*time.Minute)
	cleanup := func() {
		if err := snapshotCache.Close(); err != nil {
			log.Warnw("failed to close snapshot cache", "error", err)
		}
	}

	service := reconcile.NewService(
		adminRepo,
		settingsRepo,
		usageRepo,
		archiveRepo,
		ruleStore,
		notifier,
		snapshotCache,
		cfg.Notifications.Owners,
		i18n.Normalize(cfg.Notifications.Language),
		log.With("component", "reconcile"),
	)
	return service, cleanup, nil
}
