package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "✉️  Weekly and monthly envelope budgeting",
		Long: `envelope tracks spending against a monthly envelope, splits what is left
after bills and goals into weekly allowances, and keeps an immutable history
of every closed month and week.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}

	// Global flags
	cmd.PersistentFlags().String("config", "", "config file (default: $HOME/.config/envelope/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(settingsCmd())
	cmd.AddCommand(categoriesCmd())
	cmd.AddCommand(txCmd())
	cmd.AddCommand(quickAddCmd())
	cmd.AddCommand(billsCmd())
	cmd.AddCommand(goalsCmd())
	cmd.AddCommand(ratesCmd())
	cmd.AddCommand(summaryCmd())
	cmd.AddCommand(widgetCmd())
	cmd.AddCommand(closeCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(dashboardCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(importCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(authCmd())
	cmd.AddCommand(checkpointCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	v := viper.GetViper()
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "envelope"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ENVELOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := common.ParseLevel(v.GetString("logging.level"))
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded", "file", v.ConfigFileUsed())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "envelope %s\n", version)
		},
	}
}
