package cmd

import (
	"fmt"

	"github.com/freshersjob/freshersjob/internal/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Migrations",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cmd.Help())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display status of each migration",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		return m.MigrationStatus()
	}),
}

var migrateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new empty migration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return fmt.Errorf("unable to read flag `name`: %w", err)
		}
		return migrations.CreateMigration(name)
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run up migrations",
	Long:  "Run all pending 'up' migrations by default.\nIf step is provided, it will run `N` 'up' migrations.",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return fmt.Errorf("unable to read flag `step`: %w", err)
		}
		return m.Up(step)
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Run down migrations",
	Long:  "Revert all applied migrations by default.\nIf step is provided, it will revert the last `N` migrations.",
	RunE: withMigrator(func(cmd *cobra.Command, m *migrations.Migrator) error {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			return fmt.Errorf("unable to read flag `step`: %w", err)
		}
		return m.Down(step)
	}),
}

func withMigrator(run func(*cobra.Command, *migrations.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		m, err := migrations.NewMigrator()
		if err != nil {
			return fmt.Errorf("unable to initialize migrator: %w", err)
		}
		return run(cmd, m)
	}
}

// Register the "migrate" command
func init() {
	migrateCreateCmd.Flags().StringP("name", "n", "", "Name for the migration")
	migrateCmd.AddCommand(migrateCreateCmd)

	migrateUpCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateUpCmd)

	migrateDownCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateDownCmd)

	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(migrateCmd)
}
