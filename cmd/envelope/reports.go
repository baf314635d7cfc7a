package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/widget"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Refresh or inspect the exchange rate",
		Long: `When the envelope is budgeted in a different currency than you spend in,
the envelope is converted with the latest fetched rate. A failed fetch falls
back to the last stored rate for the same pair.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch a live rate for the configured pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.ledger.RefreshRate(ctx)
			if err != nil {
				return err
			}
			writeRateStatus(cmd, status)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the stored rate without fetching",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			writeRateStatus(cmd, a.ledger.RateStatus())
			return nil
		},
	})

	return cmd
}

func writeRateStatus(cmd *cobra.Command, status ledger.RateStatus) {
	out := cmd.OutOrStdout()
	if status.From.IsZero() || status.From == status.To {
		fmt.Fprintln(out, cli.FormatInfo("Single currency budget; no conversion needed"))
		return
	}
	fmt.Fprintf(out, "%s1 %s = %s %s\n", cli.LabelStyle.Render("Rate"), status.From, status.Rate.String(), status.To)
	fmt.Fprintf(out, "%s%s\n", cli.LabelStyle.Render("State"), cli.FormatRateState(status.State))
	if status.Err != nil {
		fmt.Fprintln(out, cli.FormatWarning("Last fetch failed: "+status.Err.Error()))
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show this week, this month and goal progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.closePeriods(ctx); err != nil {
				return err
			}
			summary, err := a.ledger.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
			return nil
		},
	}
}

func widgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "widget",
		Short: "Show the compact weekly figures the widget displays",
		Long: `Computes the widget figures the way the widget process does: settings come
from the mirror file and the rate is never fetched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cfg, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := widget.NewService(widget.NewFile(cfg.WidgetPath), store, cfg.Location,
				widget.WithSubunitRate(cfg.AllowSubunitRate))
			summary, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderWidget(summary))
			return nil
		},
	}
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Record every closed month and week",
		Long: `Writes a savings snapshot for every closed month with expenses and a log
for every closed week that does not have one yet. Records are immutable;
running close again only adds periods that closed since.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Close", "Run 'envelope close' again to record the remaining periods.")

			autoCheckpoint(ctx, a, "close")

			result, err := a.ledger.ClosePeriods(ctx, cli.ProgressFunc(cmd.ErrOrStderr(), "Closing periods"))
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if result.Months == 0 && result.Weeks == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("Nothing to close."))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %d months and %d weeks", result.Months, result.Weeks)))
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show monthly savings and weekly logs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "months",
		Short: "Monthly savings, current month first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.ledger.MonthHistory(ctx)
			if err != nil {
				return err
			}
			return cli.WriteMonthHistory(cmd.OutOrStdout(), rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "weeks",
		Short: "Closed weeks, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			logs, err := a.ledger.WeekHistory(ctx)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("No closed weeks yet."))
				return nil
			}
			slog.Debug("weekly history", "weeks", len(logs))
			return cli.WriteWeekHistory(cmd.OutOrStdout(), logs)
		},
	})

	return cmd
}
