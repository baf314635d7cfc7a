package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bills",
		Aliases: []string{"bill"},
		Short:   "Manage recurring bills",
		Long: `Recurring bills are planning data: active bills are committed out of the
monthly envelope before the weekly allowance is computed. They never create
transactions on their own.`,
		Example: `  envelope bills add 1200 Rent --category Housing --frequency monthly
  envelope bills toggle <id>`,
	}

	cmd.AddCommand(listBillsCmd())
	cmd.AddCommand(addBillCmd())
	cmd.AddCommand(editBillCmd())
	cmd.AddCommand(toggleBillCmd())
	cmd.AddCommand(deleteBillCmd())

	return cmd
}

func listBillsCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			bills, err := a.ledger.Bills(ctx, activeOnly)
			if err != nil {
				return err
			}
			if len(bills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("No bills found."))
				return nil
			}
			return cli.WriteBills(cmd.OutOrStdout(), bills)
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active bills")

	return cmd
}

func addBillCmd() *cobra.Command {
	var category, frequency, notes string

	cmd := &cobra.Command{
		Use:   "add <amount> <name>",
		Short: "Add a recurring bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			freq, err := model.ParseFrequency(frequency)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			bill, err := a.ledger.AddBill(ctx, ledger.BillInput{
				Amount:       amount,
				Name:         args[1],
				CategoryName: category,
				Notes:        notes,
				Frequency:    freq,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s bill %s (%s a month)",
				bill.Frequency, bill.Name, cli.FormatAmount(bill.MonthlyEquivalent()))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.FallbackCategory(model.KindExpense), "Expense category")
	cmd.Flags().StringVar(&frequency, "frequency", string(model.FrequencyMonthly), "How often it is due (weekly, monthly, yearly)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")

	return cmd
}

func editBillCmd() *cobra.Command {
	var name, amount, category, frequency, notes string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recurring bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			var freq model.Frequency
			if frequency != "" {
				if freq, err = model.ParseFrequency(frequency); err != nil {
					return err
				}
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			bill, err := a.ledger.UpdateBill(ctx, args[0], ledger.BillInput{
				Amount:       amt,
				Name:         name,
				CategoryName: category,
				Notes:        notes,
				Frequency:    freq,
				ClearNotes:   cmd.Flags().Changed("notes") && notes == "",
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated bill "+bill.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New expense category")
	cmd.Flags().StringVar(&frequency, "frequency", "", "New frequency")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes (empty removes them)")

	return cmd
}

func toggleBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			bill, err := a.ledger.ToggleBill(ctx, args[0])
			if err != nil {
				return err
			}
			state := "paused"
			if bill.IsActive {
				state = "active"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Bill %s is now %s", bill.Name, state)))
			return nil
		},
	}
}

func deleteBillCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := confirm(ctx, cmd, fmt.Sprintf("Delete bill %s?", args[0]), force)
			if err != nil || !ok {
				return err
			}
			if err := a.ledger.DeleteBill(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted bill "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Manage per-category spending goals",
		Long: `A goal caps spending in one expense category per week or per budget month.
Goal limits are allocated out of the envelope, and goal categories do not
count toward weekly discretionary spending.`,
		Example: `  envelope goals add Dining 120 --period weekly`,
	}

	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(addGoalCmd())
	cmd.AddCommand(editGoalCmd())
	cmd.AddCommand(deleteGoalCmd())

	return cmd
}

func listGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with their current progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			goals, err := a.ledger.Goals(ctx)
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("No goals found."))
				return nil
			}
			if err := cli.WriteGoals(cmd.OutOrStdout(), goals); err != nil {
				return err
			}

			summary, err := a.ledger.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderGoals(summary))
			return nil
		},
	}
}

func addGoalCmd() *cobra.Command {
	var period, notes string

	cmd := &cobra.Command{
		Use:   "add <category> <limit>",
		Short: "Add a spending goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			p, err := model.ParseGoalPeriod(period)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			goal, err := a.ledger.AddGoal(ctx, ledger.GoalInput{
				Limit:        limit,
				CategoryName: args[0],
				Notes:        notes,
				Period:       p,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s goal for %s: %s",
				goal.Period, goal.CategoryName, cli.FormatAmount(goal.Limit))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(model.GoalMonthly), "Goal period (weekly, monthly)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")

	return cmd
}

func editGoalCmd() *cobra.Command {
	var limit, category, period, notes string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a spending goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amt, err := parseAmount(limit)
			if err != nil {
				return err
			}
			var p model.GoalPeriod
			if period != "" {
				if p, err = model.ParseGoalPeriod(period); err != nil {
					return err
				}
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			goal, err := a.ledger.UpdateGoal(ctx, args[0], ledger.GoalInput{
				Limit:        amt,
				CategoryName: category,
				Notes:        notes,
				Period:       p,
				ClearNotes:   cmd.Flags().Changed("notes") && notes == "",
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated goal for "+goal.CategoryName))
			return nil
		},
	}

	cmd.Flags().StringVarP(&limit, "limit", "l", "", "New limit")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New expense category")
	cmd.Flags().StringVarP(&period, "period", "p", "", "New period")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes (empty removes them)")

	return cmd
}

func deleteGoalCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a spending goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := confirm(ctx, cmd, fmt.Sprintf("Delete goal %s?", args[0]), force)
			if err != nil || !ok {
				return err
			}
			if err := a.ledger.DeleteGoal(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted goal "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
