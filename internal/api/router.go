// Package api serves the read-only budget figures over HTTP for the widget and other local clients.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

// Reader is the read side of the ledger.
type Reader interface {
	Widget(ctx context.Context) (budget.WidgetSummary, error)
	Summary(ctx context.Context) (budget.Summary, error)
	MonthHistory(ctx context.Context) ([]history.MonthRow, error)
	WeekHistory(ctx context.Context) ([]model.WeeklyLog, error)
	Transactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
}

// NewRouter builds the HTTP handler.
func NewRouter(reader Reader, loc *time.Location) http.Handler {
	h := &handlers{reader: reader, loc: loc}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/widget", h.widget)
		r.Get("/summary", h.summary)
		r.Get("/transactions", h.transactions)
		r.Route("/history", func(r chi.Router) {
			r.Get("/months", h.months)
			r.Get("/weeks", h.weeks)
		})
	})

	return r
}

// NewServer wraps the router in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()))
	})
}
