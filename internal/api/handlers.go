package api

import (
	"net/http"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

type handlers struct {
	reader Reader
	loc    *time.Location
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) widget(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reader.Widget(r.Context())
	if err != nil {
		writeFailure(w, r, "widget", err)
		return
	}
	writeJSON(w, http.StatusOK, newWidgetResponse(summary))
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reader.Summary(r.Context())
	if err != nil {
		writeFailure(w, r, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (h *handlers) months(w http.ResponseWriter, r *http.Request) {
	n, err := parseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	rows, err := h.reader.MonthHistory(r.Context())
	if err != nil {
		writeFailure(w, r, "month history", err)
		return
	}
	writeJSON(w, http.StatusOK, newMonthResponses(limit(rows, n)))
}

func (h *handlers) weeks(w http.ResponseWriter, r *http.Request) {
	n, err := parseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	logs, err := h.reader.WeekHistory(r.Context())
	if err != nil {
		writeFailure(w, r, "week history", err)
		return
	}
	writeJSON(w, http.StatusOK, newWeekResponses(limit(logs, n), h.loc))
}

func (h *handlers) transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must be <= to")
		return
	}

	filter := service.TransactionFilter{Start: from, Category: query.Get("category")}
	if !to.IsZero() {
		filter.End = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if k := query.Get("kind"); k != "" {
		kind, err := model.ParseKind(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid kind")
			return
		}
		filter.Kind = kind
	}
	if filter.Limit, err = parseIntParam(query.Get("limit"), 100); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	txns, err := h.reader.Transactions(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, "transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponses(txns, h.loc))
}
