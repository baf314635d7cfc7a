package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04", time.RFC3339}

// parseAmount reads a decimal amount. An empty string is zero so edits can leave it unchanged.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// parseDate reads a date in loc. Empty means the zero time; "today" and
// "yesterday" resolve against now.
func parseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return time.Time{}, nil
	case "today":
		return now.In(loc), nil
	case "yesterday":
		return now.In(loc).AddDate(0, 0, -1), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
}

// parseKindFlag accepts an empty kind as "every kind".
func parseKindFlag(s string) (model.Kind, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return model.ParseKind(s)
}

// confirm asks on the command's stdin unless force is set.
func confirm(ctx context.Context, cmd *cobra.Command, question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	reader := cli.NewNonBlockingReader(cmd.InOrStdin())
	ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(), question)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("Cancelled."))
	}
	return ok, nil
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if m := int(duration.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if h := int(duration.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if d := int(duration.Hours() / 24); d != 1 {
			return fmt.Sprintf("%d days ago", d)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// closestCategory returns the category name nearest to name when the distance
// is small enough to be a typo.
func closestCategory(name string, categories []model.Category) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	best, bestDist := "", -1
	for _, c := range categories {
		d := levenshtein.ComputeDistance(want, strings.ToLower(c.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	if bestDist < 0 || bestDist > max(1, len(want)/3) {
		return "", false
	}
	return best, true
}

// withCategoryHint adds a suggestion to a missing category error.
func withCategoryHint(ctx context.Context, l *ledger.Ledger, kind model.Kind, name string, err error) error {
	if !errors.Is(err, model.ErrMissingCategory) {
		return err
	}
	categories, lerr := l.Categories(ctx, kind)
	if lerr != nil {
		return err
	}
	if suggestion, ok := closestCategory(name, categories); ok {
		return fmt.Errorf("%w (did you mean %q?)", err, suggestion)
	}
	return err
}
