package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/service"
)

// ReportWriter exports budget history somewhere. It returns the spreadsheet id.
type ReportWriter interface {
	Write(ctx context.Context, data TabData) (string, error)
}

// spreadsheetAPI is the part of the Sheets API the writer needs. Tab ids are keyed by title.
type spreadsheetAPI interface {
	Open(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	Create(ctx context.Context, title, timeZone string, tabs []string) (string, map[string]int64, error)
	AddTabs(ctx context.Context, spreadsheetID string, tabs []string) (map[string]int64, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	api    spreadsheetAPI
	logger *slog.Logger
	config Config
}

var _ ReportWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&googleAPI{service: srv}, config, logger), nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{api: api, config: config, logger: logger}
}

// Write replaces the contents of every tab with data.
func (w *Writer) Write(ctx context.Context, data TabData) (string, error) {
	w.logger.Info("starting sheets export",
		"months", len(data.Months),
		"weeks", len(data.Weeks),
		"month", fmt.Sprintf("%s to %s", data.Month.Start.Format(time.DateOnly), data.Month.End.Format(time.DateOnly)))

	retryOpts := service.RetryOptions{
		MaxAttempts:  max(w.config.RetryAttempts, 1),
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var (
		spreadsheetID string
		tabIDs        map[string]int64
	)
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, tabIDs, err = w.getOrCreateSpreadsheet(ctx)
		return classify(err)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	tabs := map[string][][]any{
		TabMonthlyHistory: monthlyHistoryValues(data),
		TabWeeklyLogs:     weeklyLogValues(data),
		TabCurrentMonth:   currentMonthValues(data),
	}

	for _, tab := range Tabs {
		values := tabs[tab]
		err := common.WithRetry(ctx, func() error {
			if err := w.api.Clear(ctx, spreadsheetID, quoteTab(tab)+"!A:Z"); err != nil {
				return classify(fmt.Errorf("failed to clear %s: %w", tab, err))
			}
			return classify(w.api.Update(ctx, spreadsheetID, quoteTab(tab)+"!A1", values))
		}, retryOpts)
		if err != nil {
			return spreadsheetID, fmt.Errorf("failed to write %s: %w", tab, err)
		}
		w.logger.Debug("wrote tab", "tab", tab, "rows", len(values))
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.api.BatchUpdate(ctx, spreadsheetID, formattingRequests(tabIDs)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed", "spreadsheet_id", spreadsheetID)
	return spreadsheetID, nil
}

// classify tags Google API errors for common.WithRetry. Quota and server errors
// are retried, other API errors are final and anything else is left untagged.
func classify(err error) error {
	var apiErr *googleapi.Error
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		var wait time.Duration
		if secs, perr := strconv.Atoi(apiErr.Header.Get("Retry-After")); perr == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
		return common.Transient(fmt.Errorf("%w: %w", common.ErrRateLimit, err), wait)
	case apiErr.Code >= http.StatusInternalServerError:
		return common.Transient(err, 0)
	default:
		return common.Permanent(err)
	}
}

// getOrCreateSpreadsheet opens the configured spreadsheet, adding missing tabs, or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		id, tabIDs, err := w.api.Create(ctx, w.config.SpreadsheetName, w.config.TimeZone, Tabs)
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet", "id", id)
		return id, tabIDs, nil
	}

	tabIDs, err := w.api.Open(ctx, w.config.SpreadsheetID)
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	var missing []string
	for _, tab := range Tabs {
		if _, ok := tabIDs[tab]; !ok {
			missing = append(missing, tab)
		}
	}
	if len(missing) > 0 {
		added, err := w.api.AddTabs(ctx, w.config.SpreadsheetID, missing)
		if err != nil {
			return "", nil, fmt.Errorf("unable to add tabs: %w", err)
		}
		for title, id := range added {
			tabIDs[title] = id
		}
	}
	return w.config.SpreadsheetID, tabIDs, nil
}

func quoteTab(tab string) string {
	return "'" + tab + "'"
}

func monthlyHistoryValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Months)+1)
	values = append(values, []any{
		"Month Start", "Month End", "Budget", "Budget Currency", "Rate",
		"Budget (Spending Currency)", "Spent", "Savings", "Spending Currency", "Status",
	})
	for _, m := range data.Months {
		status := "Closed"
		if m.IsCurrent {
			status = "Current"
		}
		values = append(values, []any{
			m.MonthStart.Format(time.DateOnly),
			m.MonthEnd.Format(time.DateOnly),
			m.BudgetAmount.StringFixed(2),
			m.BudgetCurrency,
			m.ExchangeRate.String(),
			m.BudgetInSpendingCurrency.StringFixed(2),
			m.Spent.StringFixed(2),
			m.Savings.StringFixed(2),
			m.SpendingCurrency,
			status,
		})
	}
	return values
}

func weeklyLogValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Weeks)+1)
	values = append(values, []any{
		"Week Start", "Week End", "Total Available", "Rolled Over", "Unused Rolled Forward", "Goals With Leftover", "Currency",
	})
	for _, w := range data.Weeks {
		values = append(values, []any{
			w.WeekStart.Format(time.DateOnly),
			w.WeekEnd.Format(time.DateOnly),
			w.TotalAvailable.StringFixed(2),
			w.RolledOverAmount.StringFixed(2),
			w.UnusedRolledForward.StringFixed(2),
			w.GoalsWithLeftover,
			w.Currency,
		})
	}
	return values
}

func currentMonthValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.CurrentMonth)+4)
	values = append(values,
		[]any{"Figure", "Amount (" + data.Currency + ")"},
	)
	for _, row := range data.CurrentMonth {
		values = append(values, []any{row.Label, row.Value.StringFixed(2)})
	}
	values = append(values,
		[]any{},
		[]any{"Month", fmt.Sprintf("%s to %s", data.Month.Start.Format("Jan 2, 2006"), data.Month.End.Format("Jan 2, 2006"))},
		[]any{"Generated", data.GeneratedAt.Format(time.RFC3339)},
	)
	return values
}

// formattingRequests bolds and freezes the header row of every tab and resizes its columns.
func formattingRequests(tabIDs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range Tabs {
		id, ok := tabIDs[tab]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: id, StartRowIndex: 0, EndRowIndex: 1},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{SheetId: id, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 10},
				},
			},
		)
	}
	return requests
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// googleAPI adapts *sheets.Service to spreadsheetAPI.
type googleAPI struct {
	service *sheets.Service
}

func tabIDs(spreadsheet *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

func (g *googleAPI) Open(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	spreadsheet, err := g.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return tabIDs(spreadsheet), nil
}

func (g *googleAPI) Create(ctx context.Context, title, timeZone string, tabs []string) (string, map[string]int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title, TimeZone: timeZone},
	}
	for _, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", nil, err
	}
	return created.SpreadsheetId, tabIDs(created), nil
}

func (g *googleAPI) AddTabs(ctx context.Context, spreadsheetID string, tabs []string) (map[string]int64, error) {
	requests := make([]*sheets.Request, 0, len(tabs))
	for _, tab := range tabs {
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
		})
	}

	resp, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(tabs))
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return ids, nil
}

func (g *googleAPI) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleAPI) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (g *googleAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
