package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change budget settings",
		Long: `Budget settings live in the database and are mirrored to the widget file
on every change.`,
		Example: `  # Budget 2,800 USD a month, spent in pesos
  envelope settings set --envelope 2800 --budget-currency USD --spending-currency MXN

  # Weeks start on Monday, months on the 19th
  envelope settings set --week-start monday --month-start-day 19`,
	}

	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(setSettingsCmd())

	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.ledger.Settings(ctx)
			if err != nil {
				return err
			}
			writeSettings(cmd.OutOrStdout(), settings, a.mirror.Path())
			return nil
		},
	}
}

func setSettingsCmd() *cobra.Command {
	var (
		envelope         string
		spendingCurrency string
		budgetCurrency   string
		weekStart        string
		monthStartDay    int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Long:  `Only the flags you pass are changed. Pass --budget-currency none to go back to a single currency.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.ledger.Settings(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("envelope") {
				if settings.MonthlyEnvelope, err = parseAmount(envelope); err != nil {
					return err
				}
			}
			if flags.Changed("spending-currency") {
				code, err := model.ParseCurrencyCode(spendingCurrency)
				if err != nil {
					return err
				}
				if code.IsZero() {
					return fmt.Errorf("spending currency cannot be empty")
				}
				settings.SpendingCurrency = code
			}
			if flags.Changed("budget-currency") {
				if strings.EqualFold(budgetCurrency, "none") {
					budgetCurrency = ""
				}
				if settings.BudgetCurrency, err = model.ParseCurrencyCode(budgetCurrency); err != nil {
					return err
				}
			}
			if flags.Changed("week-start") {
				if settings.WeekStart, err = model.ParseWeekStart(weekStart); err != nil {
					return err
				}
			}
			if flags.Changed("month-start-day") {
				settings.MonthStartDay = monthStartDay
			}

			if err := a.ledger.SaveSettings(ctx, settings); err != nil {
				return err
			}

			saved, err := a.ledger.Settings(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Settings saved"))
			writeSettings(out, saved, a.mirror.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&envelope, "envelope", "", "Monthly envelope amount")
	cmd.Flags().StringVar(&spendingCurrency, "spending-currency", "", "Currency transactions are recorded in")
	cmd.Flags().StringVar(&budgetCurrency, "budget-currency", "", "Currency the envelope is denominated in (none for single currency)")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "First day of the week (sunday, monday)")
	cmd.Flags().IntVar(&monthStartDay, "month-start-day", 1, "Day of month the budget month starts (1-28)")

	return cmd
}

func writeSettings(out io.Writer, s model.Settings, mirrorPath string) {
	budgetCurrency := "same as spending"
	if !s.BudgetCurrency.IsZero() {
		budgetCurrency = string(s.BudgetCurrency)
	}
	rate := "none"
	if s.CachedRate != nil {
		rate = fmt.Sprintf("1 %s = %s %s (trade date %s)", s.CachedRate.From, s.CachedRate.Rate.String(), s.CachedRate.To, s.CachedRate.TradeDate)
	}

	lines := []string{
		fmt.Sprintf("%s%s", cli.LabelStyle.Render("Monthly envelope"), cli.FormatMoney(s.MonthlyEnvelope, s.EffectiveBudgetCurrency())),
		fmt.Sprintf("%s%s", cli.LabelStyle.Render("Spending currency"), s.SpendingCurrency),
		fmt.Sprintf("%s%s", cli.LabelStyle.Render("Budget currency"), budgetCurrency),
		fmt.Sprintf("%s%s", cli.LabelStyle.Render("Week starts on"), s.WeekStart),
		fmt.Sprintf("%s%d", cli.LabelStyle.Render("Month starts on day"), s.MonthStartDay),
		fmt.Sprintf("%s%s", cli.LabelStyle.Render("Cached rate"), rate),
	}
	if mirrorPath != "" {
		lines = append(lines, fmt.Sprintf("%s%s", cli.LabelStyle.Render("Widget mirror"), mirrorPath))
	}
	fmt.Fprintln(out, cli.RenderBox("Settings", strings.Join(lines, "\n")))
}
