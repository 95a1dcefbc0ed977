package main

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !slices.Contains(postgres.MigrationCommands, command) {
				return fmt.Errorf("unknown migration command %q (want one of %s)",
					command, strings.Join(postgres.MigrationCommands, ", "))
			}

			cfg, l, err := loadRuntime()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := postgres.Migrate(cmd.Context(), db, l, command); err != nil {
				return err
			}
			l.Info("migration command completed", slog.String("command", command))
			return nil
		},
	}
}
