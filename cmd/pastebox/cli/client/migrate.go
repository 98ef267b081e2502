package client

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	config "github.com/mwantia/pastebox/internal/config/server"
	"github.com/mwantia/pastebox/pkg/db/store"
	"github.com/mwantia/pastebox/pkg/log"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and manage the store schema",
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateRollbackCommand())

	return cmd
}

// withStore connects to the configured store without migrating it.
func withStore(run func(ctx context.Context, cmd *cobra.Command, s *store.SQLiteStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		logger := log.NewLoggerService("pastebox", cfg.Log)
		s, err := store.NewSQLiteStore(store.ConfigFromServer(cfg.Store, logger.Named("store")))
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Connect(ctx); err != nil {
			return err
		}
		return run(ctx, cmd, s)
	}
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *store.SQLiteStore) error {
			if err := s.Migrate(ctx); err != nil {
				return err
			}

			version, err := s.Migrator().CurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		}),
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *store.SQLiteStore) error {
			statuses, err := s.Migrator().Status(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tDESCRIPTION\tSTATUS")
			for _, status := range statuses {
				state := "pending"
				if status.Applied {
					state = "applied"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", status.Version, status.Description, state)
			}
			return w.Flush()
		}),
	}
}

func newMigrateRollbackCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		Long:  "Roll back the last applied migration. Rolling back the initial migration deletes all pastes and tags and needs --confirm.",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *store.SQLiteStore) error {
			if !confirm {
				return fmt.Errorf("rollback drops stored data, rerun with --confirm")
			}

			if err := s.Migrator().Rollback(ctx); err != nil {
				return err
			}

			version, err := s.Migrator().CurrentVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&confirm, "confirm", "c", false, "confirms the rollback")

	return cmd
}
