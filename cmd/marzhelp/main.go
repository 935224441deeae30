package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marzhelp/internal/interfaces/cli/migrate"
	"marzhelp/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marzhelp",
		Short: "Quota reconciliation for multi-tenant Marzban panels",
		Long:  `marzhelp keeps tenant panels honest: it aggregates their usage, flips panel statuses, sends quota notifications, and maintains database-level enforcement rules.`,
	}

	rootCmd.AddCommand(
		worker.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
