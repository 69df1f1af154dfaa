package cli

import (
	"github.com/spf13/cobra"
)

func (h *handler) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.withMigrator(cmd, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return h.reportVersion(cmd, m, "Migrations applied")
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return h.fieldError(cmd, "Steps", "Steps must be at least 1")
			}
			return h.withMigrator(cmd, func(m Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return h.reportVersion(cmd, m, "Migrations rolled back")
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.withMigrator(cmd, func(m Migrator) error {
				return h.reportVersion(cmd, m, "Schema version")
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func (h *handler) withMigrator(cmd *cobra.Command, fn func(m Migrator) error) error {
	m, err := h.backend.Migrator()
	if err != nil {
		return h.fail(cmd, err)
	}
	defer closeQuietly(h.log, "migrator", m)

	if err := fn(m); err != nil {
		return h.fail(cmd, err)
	}
	return nil
}

func (h *handler) reportVersion(cmd *cobra.Command, m Migrator, message string) error {
	status, err := m.Version()
	if err != nil {
		return err
	}
	return h.success(cmd, message, status)
}
