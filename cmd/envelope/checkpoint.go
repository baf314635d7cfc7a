package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints save the whole database, history included, before risky changes.
Imports, prunes and close runs take an automatic checkpoint first.`,
		Example: `  # Create a checkpoint before editing old transactions
  envelope checkpoint create --tag before-cleanup

  # List all checkpoints
  envelope checkpoint list

  # Restore from a checkpoint
  envelope checkpoint restore before-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// openCheckpoints opens storage and its checkpoint manager.
func openCheckpoints(ctx context.Context) (*storage.SQLiteStorage, *storage.CheckpointManager, error) {
	store, _, err := openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	manager, err := store.NewCheckpointManager()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return store, manager, nil
}

// autoCheckpoint snapshots the database before a bulk change. Failure is logged, not fatal.
func autoCheckpoint(ctx context.Context, a *app, reason string) {
	manager, err := a.store.NewCheckpointManager()
	if err != nil {
		slog.Warn("Failed to create checkpoint manager", "error", err)
		return
	}
	info, err := manager.AutoCheckpoint(ctx, reason)
	if err != nil {
		slog.Warn("Failed to create automatic checkpoint", "reason", reason, "error", err)
		return
	}
	slog.Info("Created automatic checkpoint", "id", info.ID)
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := manager.Create(ctx, tag, description)
			if err != nil {
				return fmt.Errorf("failed to create checkpoint: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(info.ID),
				formatFileSize(info.FileSize))
			if info.Description != "" {
				fmt.Fprintf(out, "  Description: %s\n", info.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag/name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checkpoints, err := manager.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list checkpoints: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(checkpoints) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No checkpoints found."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor)
			fmt.Fprintln(w, strings.Join([]string{
				headerStyle.Render("NAME"),
				headerStyle.Render("CREATED"),
				headerStyle.Render("SIZE"),
				headerStyle.Render("TRANSACTIONS"),
				headerStyle.Render("MONTHS"),
				headerStyle.Render("WEEKS"),
				headerStyle.Render("TYPE"),
			}, "\t"))

			now := time.Now()
			for _, cp := range checkpoints {
				typeLabel := "manual"
				if cp.IsAuto {
					typeLabel = "auto"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					cli.InfoStyle.Render(cp.ID),
					formatRelativeTime(cp.CreatedAt, now),
					formatFileSize(cp.FileSize),
					cp.Transactions,
					cp.MonthlyRows,
					cp.WeeklyRows,
					cli.SubtitleStyle.Render(typeLabel),
				)
			}
			return w.Flush()
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore database from a checkpoint",
		Long:  `Replace the current database with a checkpoint. The widget mirror is rewritten from the restored settings.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			info, err := manager.Info(ctx, id)
			if err != nil {
				_ = store.Close()
				return fmt.Errorf("failed to get checkpoint info: %w", err)
			}

			fmt.Fprintf(out, "%s This will replace your current database with checkpoint %s.\n",
				cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(id))
			fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			if info.Description != "" {
				fmt.Fprintf(out, "  Description: %s\n", info.Description)
			}
			ok, err := confirm(ctx, cmd, "Continue?", force)
			if err != nil || !ok {
				_ = store.Close()
				return err
			}

			// Restore closes the database.
			if err := manager.Restore(ctx, id); err != nil {
				return fmt.Errorf("failed to restore checkpoint: %w", err)
			}

			// Reopening refreshes the widget mirror from the restored settings.
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			a.Close()

			fmt.Fprintf(out, "%s Restored from checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, manager, err := openCheckpoints(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := manager.Info(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get checkpoint info: %w", err)
			}

			ok, err := confirm(ctx, cmd, fmt.Sprintf("Permanently delete checkpoint %s (%s)?", id, formatFileSize(info.FileSize)), force)
			if err != nil || !ok {
				return err
			}
			if err := manager.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete checkpoint: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
