package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and manage income and expenses",
		Example: `  # Record an expense
  envelope tx add 42.50 "Farmers market" --category Groceries

  # Record income yesterday
  envelope tx add 1200 "Invoice 17" --kind income --category Salary --date yesterday

  # This month's dining
  envelope tx list --category Dining --from 2025-02-01`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(deleteTxCmd())
	cmd.AddCommand(pruneTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var category, kind, date, note, bill string

	cmd := &cobra.Command{
		Use:   "add <amount> <title>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			at, err := parseDate(date, a.cfg.Location, time.Now())
			if err != nil {
				return err
			}
			if category == "" {
				category = model.FallbackCategory(k)
			}

			in := ledger.TransactionInput{
				Title:        args[1],
				Amount:       amount,
				Kind:         k,
				Date:         at,
				Note:         note,
				CategoryName: category,
			}
			if bill != "" {
				in.BillID = &bill
			}

			txn, err := a.ledger.AddTransaction(ctx, in)
			if err != nil {
				return withCategoryHint(ctx, a.ledger, k, category, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s in %s (%s)",
				txn.Kind, cli.FormatAmount(txn.Amount), txn.Category.Name, txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name (defaults to the Other fallback)")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.KindExpense), "Transaction kind (expense, income)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD, today or yesterday (default now)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Free-form note")
	cmd.Flags().StringVar(&bill, "bill", "", "ID of the recurring bill this payment belongs to")

	return cmd
}

func listTxCmd() *cobra.Command {
	var category, kind, from, to string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			k, err := parseKindFlag(kind)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			start, err := parseDate(from, a.cfg.Location, now)
			if err != nil {
				return err
			}
			end, err := parseDate(to, a.cfg.Location, now)
			if err != nil {
				return err
			}
			if !end.IsZero() {
				end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}

			txns, err := a.ledger.Transactions(ctx, service.TransactionFilter{
				Start:    start,
				End:      end,
				Kind:     k,
				Category: category,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("No transactions found."))
				return nil
			}
			return cli.WriteTransactions(cmd.OutOrStdout(), txns)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only expense or income")
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	return cmd
}

func editTxCmd() *cobra.Command {
	var title, amount, category, date, note string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Long: `Change any of a transaction's fields. Flags you leave out keep their
current value; the kind cannot change. Pass --note "" to remove the note.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			at, err := parseDate(date, a.cfg.Location, time.Now())
			if err != nil {
				return err
			}

			txn, err := a.ledger.UpdateTransaction(ctx, args[0], ledger.TransactionInput{
				Title:        title,
				Amount:       amt,
				Date:         at,
				Note:         note,
				CategoryName: category,
				ClearNote:    cmd.Flags().Changed("note") && note == "",
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s: %s %s in %s",
				txn.ID, txn.Title, cli.FormatAmount(txn.Amount), txn.Category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date")
	cmd.Flags().StringVarP(&note, "note", "n", "", "New note (empty removes it)")

	return cmd
}

func deleteTxCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := confirm(ctx, cmd, fmt.Sprintf("Delete transaction %s?", args[0]), force)
			if err != nil || !ok {
				return err
			}
			if err := a.ledger.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func pruneTxCmd() *cobra.Command {
	var before string
	var force bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old transactions, keeping their history",
		Long: `Delete every transaction dated before --before. Closed months and weeks are
recorded first, and an automatic checkpoint is taken before anything is deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cutoff, err := parseDate(before, a.cfg.Location, time.Now())
			if err != nil {
				return err
			}
			if cutoff.IsZero() {
				return fmt.Errorf("--before is required")
			}

			ok, err := confirm(ctx, cmd, fmt.Sprintf("Delete all transactions before %s?", cutoff.Format(time.DateOnly)), force)
			if err != nil || !ok {
				return err
			}
			autoCheckpoint(ctx, a, "prune")

			n, err := a.ledger.PruneTransactions(ctx, cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions", n)))
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Cutoff date (YYYY-MM-DD); earlier transactions are deleted")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func quickAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quick-add <amount> <description> [category]",
		Short: "Record an expense right now",
		Long: `The shortcut entry point: records an expense dated now with the note
"Added via Shortcut". The category defaults to Other.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			category := model.FallbackCategory(model.KindExpense)
			if len(args) == 3 {
				category = args[2]
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.ledger.QuickAdd(ctx, amount, args[1], category)
			if err != nil {
				return withCategoryHint(ctx, a.ledger, model.KindExpense, category, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s to %s", cli.FormatAmount(txn.Amount), txn.Category.Name)))
			return nil
		},
	}
}
