package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage transaction categories",
		Long: `Categories group transactions and goals. Names are unique within a kind
and the default categories cannot be deleted.

Renaming a category does not touch transactions already recorded under it.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
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

			categories, err := a.ledger.Categories(ctx, k)
			if err != nil {
				return err
			}
			return cli.WriteCategories(cmd.OutOrStdout(), categories)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list expense or income categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var icon, color, kind string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			category, err := a.ledger.AddCategory(ctx, ledger.CategoryInput{Name: args[0], Icon: icon, Color: color, Kind: k})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s category %s", category.Kind, category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	cmd.Flags().StringVar(&color, "color", "", "Color name")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.KindExpense), "Category kind (expense, income)")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var name, icon, color, kind string

	cmd := &cobra.Command{
		Use:   "update <id-or-name>",
		Short: "Rename a category or change its icon or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			current, err := resolveCategory(ctx, a.ledger, k, args[0])
			if err != nil {
				return err
			}
			updated, err := a.ledger.UpdateCategory(ctx, current.ID, ledger.CategoryInput{Name: name, Icon: icon, Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %s", updated.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&icon, "icon", "", "New icon")
	cmd.Flags().StringVar(&color, "color", "", "New color")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Kind to look the name up in when it exists for both")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var kind string
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a category",
		Long: `Delete a custom category. Transactions, bills and goals keep the name they
were recorded with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			category, err := resolveCategory(ctx, a.ledger, k, args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(ctx, cmd, fmt.Sprintf("Delete %s category %s?", category.Kind, category.Name), force)
			if err != nil || !ok {
				return err
			}
			if err := a.ledger.DeleteCategory(ctx, category.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Kind to look the name up in when it exists for both")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

// resolveCategory finds a category by ID or, failing that, by name.
func resolveCategory(ctx context.Context, l *ledger.Ledger, kind model.Kind, ref string) (*model.Category, error) {
	categories, err := l.Categories(ctx, kind)
	if err != nil {
		return nil, err
	}

	var matches []model.Category
	for _, c := range categories {
		if c.ID == ref {
			return &c, nil
		}
		if model.SameName(c.Name, ref) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		if suggestion, ok := closestCategory(ref, categories); ok {
			return nil, fmt.Errorf("%w: category %s (did you mean %q?)", storage.ErrNotFound, ref, suggestion)
		}
		return nil, fmt.Errorf("%w: category %s", storage.ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("category %q exists for both kinds; pass --kind", ref)
	}
}
