package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "   \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	valid := func() *model.Transaction {
		return newExpense("t1", "Other", "9.99", day(2025, 1, 1))
	}

	tests := []struct {
		txn     *model.Transaction
		wantIs  error
		name    string
		wantErr bool
	}{
		{name: "valid", txn: valid()},
		{name: "nil", txn: nil, wantErr: true, wantIs: ErrNilParameter},
		{
			name: "missing id",
			txn: func() *model.Transaction {
				tx := valid()
				tx.ID = ""
				return tx
			}(),
			wantErr: true,
			wantIs:  ErrEmptyString,
		},
		{
			name: "zero amount",
			txn: func() *model.Transaction {
				tx := valid()
				tx.Amount = decimal.Zero
				return tx
			}(),
			wantErr: true,
			wantIs:  model.ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("validateTransaction() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestValidateHistoryRows(t *testing.T) {
	snap := snapshot("m1", 1)
	if err := validateSnapshot(&snap); err != nil {
		t.Errorf("validateSnapshot() unexpected error = %v", err)
	}
	snap.MonthEnd = snap.MonthStart.AddDate(0, 0, -2)
	if err := validateSnapshot(&snap); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("validateSnapshot() error = %v, want ErrInvalidDateRange", err)
	}

	log := weeklyLog("w1", 0)
	log.WeekStart = log.WeekStart.AddDate(-100, 0, 0)
	if err := validateWeeklyLog(&log); err != nil {
		t.Errorf("validateWeeklyLog() unexpected error = %v", err)
	}
	log.ID = ""
	if err := validateWeeklyLog(&log); !errors.Is(err, ErrEmptyString) {
		t.Errorf("validateWeeklyLog() error = %v, want ErrEmptyString", err)
	}
}
