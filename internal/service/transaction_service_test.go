package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/testutil"
	"github.com/finoa/finos-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateTransaction_Success(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewTransactionService(repo)
	svc.SetEventPublisher(publisher)
	owner := uuid.New()
	date := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

	tx, err := svc.CreateTransaction(context.Background(), owner, CreateTransactionInput{
		Name:     "  Weekly groceries ",
		Amount:   decimal.RequireFromString("42.499"),
		Category: domain.CategoryFoodDining,
		Date:     &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tx.ID == uuid.Nil {
		t.Error("Expected ID to be assigned")
	}
	if tx.OwnerID != owner {
		t.Errorf("Expected owner %s, got %s", owner, tx.OwnerID)
	}
	if tx.Name != "Weekly groceries" {
		t.Errorf("Expected trimmed name, got %q", tx.Name)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("Expected amount rounded to 42.50, got %s", tx.Amount)
	}
	if !tx.Date.Equal(date) {
		t.Errorf("Expected date %s, got %s", date, tx.Date)
	}

	if len(publisher.Events) != 2 {
		t.Fatalf("Expected 2 events published, got %d", len(publisher.Events))
	}
	if publisher.Events[0].Event.Type != "transaction.created" || publisher.Events[0].OwnerID != owner {
		t.Errorf("Unexpected first event %+v", publisher.Events[0])
	}
	if publisher.Events[1].Event.Type != "summary.stale" {
		t.Errorf("Expected summary.stale, got %s", publisher.Events[1].Event.Type)
	}
}

func TestCreateTransaction_DefaultsDateToNow(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	tx, err := svc.CreateTransaction(context.Background(), uuid.New(), CreateTransactionInput{
		Name:     "Coffee",
		Amount:   decimal.Zero,
		Category: domain.CategoryFoodDining,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !tx.Date.Equal(fixed) {
		t.Errorf("Expected date %s, got %s", fixed, tx.Date)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc := NewTransactionService(testutil.NewMockTransactionRepository())
	owner := uuid.New()

	tests := []struct {
		name    string
		owner   uuid.UUID
		input   CreateTransactionInput
		wantErr error
	}{
		{
			name:    "missing owner",
			owner:   uuid.Nil,
			input:   CreateTransactionInput{Name: "x", Amount: decimal.NewFromInt(1), Category: domain.CategoryOther},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "blank name",
			owner:   owner,
			input:   CreateTransactionInput{Name: "   ", Amount: decimal.NewFromInt(1), Category: domain.CategoryOther},
			wantErr: domain.ErrNameRequired,
		},
		{
			name:    "name too long",
			owner:   owner,
			input:   CreateTransactionInput{Name: strings.Repeat("a", domain.MaxTransactionNameLength+1), Amount: decimal.NewFromInt(1), Category: domain.CategoryOther},
			wantErr: domain.ErrNameTooLong,
		},
		{
			name:    "negative amount",
			owner:   owner,
			input:   CreateTransactionInput{Name: "Refund", Amount: decimal.NewFromInt(-5), Category: domain.CategoryOther},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown category",
			owner:   owner,
			input:   CreateTransactionInput{Name: "Cat food", Amount: decimal.NewFromInt(5), Category: "Pets"},
			wantErr: domain.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), tt.owner, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateTransaction_StoreFailure(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.CreateFn = func(*domain.Transaction) (*domain.Transaction, error) {
		return nil, domain.ErrStoreUnavailable
	}
	publisher := testutil.NewMockEventPublisher()
	svc := NewTransactionService(repo)
	svc.SetEventPublisher(publisher)

	_, err := svc.CreateTransaction(context.Background(), uuid.New(), CreateTransactionInput{
		Name: "Bus", Amount: decimal.NewFromInt(2), Category: domain.CategoryTransport,
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
	if len(publisher.Events) != 0 {
		t.Errorf("Expected no events on failure, got %d", len(publisher.Events))
	}
}

func TestCreateTransaction_TruncatesToMillisecond(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)
	owner := uuid.New()
	date := time.Date(2023, 12, 31, 23, 59, 59, 999500000, time.UTC)

	tx, err := svc.CreateTransaction(context.Background(), owner, CreateTransactionInput{
		Name:     "Late dinner",
		Amount:   decimal.NewFromInt(20),
		Category: domain.CategoryFoodDining,
		Date:     &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := time.Date(2023, 12, 31, 23, 59, 59, 999000000, time.UTC)
	if !tx.Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, tx.Date)
	}
	_, end := util.PreviousCalendarMonth(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if tx.Date.After(end) {
		t.Errorf("Expected %v to fall inside December ending %v", tx.Date, end)
	}
}
