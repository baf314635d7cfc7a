package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/config"
	"github.com/Veraticus/envelope/internal/sheets"
)

// newReportWriter builds the sheets client. Tests swap it for a mock.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export budget history",
	}

	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write history to a Google spreadsheet",
		Long: `Writes three tabs: Monthly History, Weekly Logs and Current Month.
Each export replaces the tabs' contents. Without sheets.spreadsheet_id a new
spreadsheet is created; put its ID in your config to reuse it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			months, err := a.ledger.MonthHistory(ctx)
			if err != nil {
				return err
			}
			summary, err := a.ledger.Summary(ctx)
			if err != nil {
				return err
			}
			weeks, err := a.ledger.WeekHistory(ctx)
			if err != nil {
				return err
			}
			data := sheets.BuildTabData(time.Now(), summary, months, weeks)

			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing was written"))
				fmt.Fprintf(out, "  %s: %d rows\n", sheets.TabMonthlyHistory, len(data.Months))
				fmt.Fprintf(out, "  %s: %d rows\n", sheets.TabWeeklyLogs, len(data.Weeks))
				fmt.Fprintf(out, "  %s: %d rows\n", sheets.TabCurrentMonth, len(data.CurrentMonth))
				return nil
			}

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("google sheets is not configured (run 'envelope auth sheets'): %w", err)
			}
			writer, err := newReportWriter(ctx, *sheetsCfg)
			if err != nil {
				return err
			}

			id, err := writer.Write(ctx, data)
			if err != nil {
				return fmt.Errorf("failed to export to google sheets: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Exported budget history"))
			fmt.Fprintf(out, "  https://docs.google.com/spreadsheets/d/%s\n", id)
			if sheetsCfg.SpreadsheetID == "" {
				fmt.Fprintf(out, "  Add sheets.spreadsheet_id: %s to your config to update this spreadsheet next time.\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the export without writing it")

	return cmd
}
