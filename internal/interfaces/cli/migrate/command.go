// Package migrate implements the database migration commands.
package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"marzhelp/internal/infrastructure/config"
	"marzhelp/internal/infrastructure/database"
	"marzhelp/internal/infrastructure/migration"
	"marzhelp/internal/shared/logger"
)

var (
	configPath string
	name       string
	steps      int
)

// NewCommand creates the migrate command. Migrations only ever touch
// the bot database; the panel schema belongs to the panel.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage bot database migrations including running migrations, rolling back, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

type cliEnv struct {
	environment string
	scriptsPath string
	conns       *database.Connections
	log         logger.Interface
}

func initEnv() (*cliEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	conns, err := database.Connect(&cfg.PanelDatabase, &cfg.BotDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect databases: %w", err)
	}

	scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
	if err != nil {
		conns.Close()
		return nil, fmt.Errorf("failed to get scripts path: %w", err)
	}

	return &cliEnv{
		environment: cfg.Environment,
		scriptsPath: scriptsPath,
		conns:       conns,
		log:         logger.NewLogger(),
	}, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	env, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer env.conns.Close()

	env.log.Infow("running up migrations", "environment", env.environment)

	// Strategy follows the environment: development auto-migrates the
	// bot models, test/production apply the SQL scripts.
	manager := migration.NewManager(env.environment)
	if err := manager.Migrate(env.conns.Bot(), migration.AutoMigrateModels()...); err != nil {
		env.log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	env.log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	env, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer env.conns.Close()

	env.log.Infow("running down migrations", "steps", steps)

	strategy := migration.NewGolangMigrateStrategy(env.scriptsPath)
	migrateStrategy, ok := strategy.(*migration.GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("down migration is only supported with golang-migrate strategy")
	}
	if err := migrateStrategy.MigrateDown(env.conns.Bot(), steps); err != nil {
		env.log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	env.log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer env.conns.Close()

	strategy := migration.NewGolangMigrateStrategy(env.scriptsPath)
	migrateStrategy, ok := strategy.(*migration.GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("status check is only supported with golang-migrate strategy")
	}

	version, dirty, err := migrateStrategy.GetVersion(env.conns.Bot())
	if err != nil {
		env.log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", env.environment)
	fmt.Printf("  Current Version: %d\n", version)
	fmt.Printf("  Dirty:           %v\n", dirty)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	env, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer env.conns.Close()

	env.log.Infow("creating new migration", "name", name)

	generator := migration.NewGenerator(env.scriptsPath)
	if err := generator.CreateMigration(name); err != nil {
		env.log.Errorw("failed to create migration", "error", err)
		return fmt.Errorf("failed to create migration: %w", err)
	}

	return nil
}
