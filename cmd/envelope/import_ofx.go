package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/config"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/ofx"
	"github.com/Veraticus/envelope/internal/pattern"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx [files or directories...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.
Debits become expenses and credits become income. Each line remembers its
bank transaction ID, so importing the same file twice adds nothing.

Lines matching an import.rules entry in the config file take that rule's
category; everything else falls back to --category or --income-category.`,
		Example: `  # Import a single file into Groceries
  envelope import ofx ~/Downloads/checking_jan.qfx --category Groceries

  # Import every OFX/QFX file in a directory
  envelope import ofx ~/Downloads/statements/

  # Preview without saving
  envelope import ofx ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("category", "c", model.FallbackCategory(model.KindExpense), "Category for imported expenses")
	cmd.Flags().String("income-category", model.FallbackCategory(model.KindIncome), "Category for imported income")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	expenseCategory, _ := cmd.Flags().GetString("category")
	incomeCategory, _ := cmd.Flags().GetString("income-category")
	out := cmd.OutOrStdout()

	files, err := collectOFXFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	rules, err := config.LoadImportRules(viper.GetViper())
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Import", "Run the same import again; lines already imported are skipped.")

	slog.Info("Importing OFX files", "file_count", len(files), "rules", rules.Len(), "dry_run", dryRun)

	parser := ofx.NewParser()
	var inputs []ledger.TransactionInput
	seen := make(map[string]bool)
	matched := 0
	for _, path := range files {
		entries, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", filepath.Base(path), err)))
			continue
		}

		added := 0
		for _, e := range entries {
			note := e.Note()
			if seen[note] {
				continue
			}
			seen[note] = true
			added++

			category, ok := rules.Categorize(pattern.Line{Title: e.Title, Amount: e.Amount, Kind: e.Kind})
			switch {
			case ok:
				matched++
			case e.Kind == model.KindIncome:
				category = incomeCategory
			default:
				category = expenseCategory
			}
			inputs = append(inputs, ledger.TransactionInput{
				Date:         e.Date,
				Amount:       e.Amount,
				Title:        e.Title,
				Note:         note,
				CategoryName: category,
				Kind:         e.Kind,
			})
		}
		fmt.Fprintf(out, "  %s %s: %d transactions\n", cli.FolderIcon, filepath.Base(path), added)
	}

	if len(inputs) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}
	if matched > 0 {
		fmt.Fprintf(out, "  %d transactions categorized by import rules\n", matched)
	}
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, nothing saved", len(inputs))))
		return nil
	}

	autoCheckpoint(ctx, a, "import")

	result, err := a.ledger.Import(ctx, inputs, cli.ProgressFunc(cmd.ErrOrStderr(), "Importing"))
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("import failed after %d transactions: %w", result.Imported, err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d already present)", result.Imported, result.Skipped)))
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parser.ParseFile(cmd.Context(), f)
}

// collectOFXFiles expands globs and directories into a list of OFX/QFX files.
func collectOFXFiles(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		info, err := os.Stat(pattern)
		if err == nil && info.IsDir() {
			entries, err := os.ReadDir(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", pattern, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && isOFXFile(entry.Name()) {
					files = append(files, filepath.Join(pattern, entry.Name()))
				}
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
		files = append(files, matches...)
	}
	return files, nil
}

func isOFXFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}
