package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/config"
	"github.com/Veraticus/envelope/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; run this to check the schema
or to prepare a database for the widget server.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	slog.Info("Starting database migration", "database", cfg.DatabasePath, "status_only", status)

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		version, dirty, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintln(out, cli.FormatTitle("Database Migration Status"))
		fmt.Fprintf(out, "  Database:        %s\n", cfg.DatabasePath)
		fmt.Fprintf(out, "  Current version: %d\n", version)
		fmt.Fprintf(out, "  Latest version:  %d\n", storage.ExpectedSchemaVersion)
		switch {
		case dirty:
			fmt.Fprintln(out, cli.FormatError("Schema is dirty; a previous migration failed part way"))
		case version < storage.ExpectedSchemaVersion:
			fmt.Fprintln(out, cli.FormatWarning("Migrations pending; run 'envelope migrate'"))
		default:
			fmt.Fprintln(out, cli.FormatSuccess("Schema is up to date"))
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Database migrations completed successfully"))
	return nil
}
