package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/finoa/finos-backend/internal/testutil"
	"github.com/google/uuid"
)

func newTestTransactionHandler(repo *testutil.MockTransactionRepository, loc *time.Location) (*TransactionHandler, *testutil.MockEventPublisher) {
	transactionService := service.NewTransactionService(repo)
	publisher := testutil.NewMockEventPublisher()
	transactionService.SetEventPublisher(publisher)
	return NewTransactionHandler(transactionService, loc), publisher
}

func TestCreateTransaction_Success(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	handler, publisher := newTestTransactionHandler(repo, time.UTC)
	ownerID := uuid.New()

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions",
		`{"name": "Groceries", "amount": 150.5, "category": "Food & Dining", "date": "2024-01-10"}`)
	withOwner(c, ownerID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CreateTransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Item.Name != "Groceries" {
		t.Errorf("Expected name 'Groceries', got %s", response.Item.Name)
	}
	if response.Item.Amount != "150.50" {
		t.Errorf("Expected amount '150.50', got %s", response.Item.Amount)
	}
	if response.Item.Category != "Food & Dining" {
		t.Errorf("Expected category 'Food & Dining', got %s", response.Item.Category)
	}
	if response.Item.Date != "2024-01-10T00:00:00Z" {
		t.Errorf("Expected date '2024-01-10T00:00:00Z', got %s", response.Item.Date)
	}

	if len(repo.Transactions) != 1 || repo.Transactions[0].OwnerID != ownerID {
		t.Errorf("Expected one transaction stored for the owner, got %+v", repo.Transactions)
	}
	if len(publisher.Events) != 2 {
		t.Errorf("Expected created and stale events, got %d", len(publisher.Events))
	}
}

func TestCreateTransaction_AmountAsString(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	handler, _ := newTestTransactionHandler(repo, time.UTC)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions",
		`{"name": "Metro", "amount": "42", "category": "Transportation"}`)
	withOwner(c, uuid.New())

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CreateTransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Item.Amount != "42.00" {
		t.Errorf("Expected amount '42.00', got %s", response.Item.Amount)
	}
	if response.Item.Date == "" {
		t.Error("Expected date to default to now")
	}
}

func TestCreateTransaction_BareDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	repo := testutil.NewMockTransactionRepository()
	handler, _ := newTestTransactionHandler(repo, loc)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions",
		`{"name": "Movie", "amount": 300, "category": "Entertainment", "date": "2024-02-01"}`)
	withOwner(c, uuid.New())

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	want := time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)
	if !repo.Transactions[0].Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, repo.Transactions[0].Date)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"amount": 10, "category": "Shopping"}`, "name"},
		{"blank name", `{"name": "   ", "amount": 10, "category": "Shopping"}`, "name"},
		{"missing amount", `{"name": "Shirt", "category": "Shopping"}`, "amount"},
		{"negative amount", `{"name": "Shirt", "amount": -5, "category": "Shopping"}`, "amount"},
		{"missing category", `{"name": "Shirt", "amount": 10}`, "category"},
		{"unknown category", `{"name": "Shirt", "amount": 10, "category": "Pets"}`, "category"},
		{"bad date", `{"name": "Shirt", "amount": 10, "category": "Shopping", "date": "yesterday"}`, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockTransactionRepository()
			handler, publisher := newTestTransactionHandler(repo, time.UTC)

			c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions", tt.body)
			withOwner(c, uuid.New())

			if err := handler.CreateTransaction(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}

			var problem ProblemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			found := false
			for _, fe := range problem.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on field %q, got %+v", tt.field, problem.Errors)
			}
			if len(repo.Transactions) != 0 || len(publisher.Events) != 0 {
				t.Error("Expected nothing stored or published")
			}
		})
	}
}

func TestCreateTransaction_InvalidJSON(t *testing.T) {
	handler, _ := newTestTransactionHandler(testutil.NewMockTransactionRepository(), time.UTC)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions", `{"name": "Shirt", "amount": "ten"}`)
	withOwner(c, uuid.New())

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateTransaction_StoreFailure(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	repo.CreateFn = func(transaction *domain.Transaction) (*domain.Transaction, error) {
		return nil, domain.ErrStoreUnavailable
	}
	handler, _ := newTestTransactionHandler(repo, time.UTC)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/transactions",
		`{"name": "Rent", "amount": 1000, "category": "Bills & Utilities"}`)
	withOwner(c, uuid.New())

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}
