package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is an in-memory implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.RWMutex
	ByID     map[uuid.UUID]*domain.User
	ByEmail  map[string]*domain.User
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:    make(map[uuid.UUID]*domain.User),
		ByEmail: make(map[string]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email, matching the stored lower-cased form
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.ByEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create stores a user, rejecting duplicate emails
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ByEmail[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
	return user, nil
}

// MockTransactionRepository is an in-memory implementation of domain.TransactionRepository.
// Aggregations are computed over the stored rows so services can be tested end to end.
type MockTransactionRepository struct {
	mu                      sync.RWMutex
	Transactions            []*domain.Transaction
	CreateFn                func(transaction *domain.Transaction) (*domain.Transaction, error)
	ListRecentFn            func(ownerID uuid.UUID, limit int) ([]*domain.Transaction, error)
	SumByCategoryFn         func(ownerID uuid.UUID, from, to time.Time) ([]domain.CategoryTotal, error)
	SumByMonthFn            func(ownerID uuid.UUID, loc *time.Location) ([]domain.MonthTotal, error)
	SumForCategoryInRangeFn func(ownerID uuid.UUID, category domain.Category, from, to time.Time) (domain.CategoryRangeTotal, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Create stores a transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}
	m.Transactions = append(m.Transactions, transaction)
	return transaction, nil
}

// AddTransaction stores a transaction without going through CreateFn (helper for tests)
func (m *MockTransactionRepository) AddTransaction(ownerID uuid.UUID, name string, amount string, category domain.Category, date time.Time) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &domain.Transaction{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Date:      date,
		CreatedAt: date,
	}
	m.Transactions = append(m.Transactions, tx)
	return tx
}

// Delete removes an owner's transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, tx := range m.Transactions {
		if tx.ID == id && tx.OwnerID == ownerID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

// ListRecent returns up to limit of the owner's transactions, newest first
func (m *MockTransactionRepository) ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ownerID, limit)
	}
	owned := m.owned(ownerID)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Date.After(owned[j].Date)
	})
	if limit >= 0 && len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

// SumByCategory totals the owner's transactions in [from, to] per category
func (m *MockTransactionRepository) SumByCategory(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.CategoryTotal, error) {
	if m.SumByCategoryFn != nil {
		return m.SumByCategoryFn(ownerID, from, to)
	}
	totals := make(map[domain.Category]decimal.Decimal)
	for _, tx := range m.owned(ownerID) {
		if inRange(tx.Date, from, to) {
			totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		}
	}
	result := make([]domain.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, domain.CategoryTotal{Category: category, Total: total})
	}
	return result, nil
}

// SumByMonth totals the owner's transactions per calendar month in loc
func (m *MockTransactionRepository) SumByMonth(ctx context.Context, ownerID uuid.UUID, loc *time.Location) ([]domain.MonthTotal, error) {
	if m.SumByMonthFn != nil {
		return m.SumByMonthFn(ownerID, loc)
	}
	type key struct{ year, month int }
	totals := make(map[key]decimal.Decimal)
	for _, tx := range m.owned(ownerID) {
		local := tx.Date.In(loc)
		k := key{local.Year(), int(local.Month())}
		totals[k] = totals[k].Add(tx.Amount)
	}
	result := make([]domain.MonthTotal, 0, len(totals))
	for k, total := range totals {
		result = append(result, domain.MonthTotal{Year: k.year, Month: k.month, Total: total})
	}
	return result, nil
}

// SumForCategoryInRange totals and counts one category in [from, to]
func (m *MockTransactionRepository) SumForCategoryInRange(ctx context.Context, ownerID uuid.UUID, category domain.Category, from, to time.Time) (domain.CategoryRangeTotal, error) {
	if m.SumForCategoryInRangeFn != nil {
		return m.SumForCategoryInRangeFn(ownerID, category, from, to)
	}
	result := domain.CategoryRangeTotal{Total: decimal.Zero}
	for _, tx := range m.owned(ownerID) {
		if tx.Category == category && inRange(tx.Date, from, to) {
			result.Total = result.Total.Add(tx.Amount)
			result.Count++
		}
	}
	return result, nil
}

func (m *MockTransactionRepository) owned(ownerID uuid.UUID) []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// AssistantCall records one Complete invocation
type AssistantCall struct {
	SystemInstruction string
	Payload           string
}

// MockAssistant is a scripted language-model collaborator
type MockAssistant struct {
	mu    sync.Mutex
	Reply string
	Err   error
	Calls []AssistantCall
}

// NewMockAssistant creates a MockAssistant that answers with reply
func NewMockAssistant(reply string) *MockAssistant {
	return &MockAssistant{Reply: reply}
}

// Complete records the call and returns the scripted reply
func (m *MockAssistant) Complete(ctx context.Context, systemInstruction, userPayload string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, AssistantCall{SystemInstruction: systemInstruction, Payload: userPayload})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// MockReportStore keeps uploaded reports in memory
type MockReportStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	UploadErr error
	BaseURL   string
}

// NewMockReportStore creates a new MockReportStore
func NewMockReportStore() *MockReportStore {
	return &MockReportStore{
		Objects: make(map[string][]byte),
		BaseURL: "https://reports.test",
	}
}

// Upload stores the object body under key
func (m *MockReportStore) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	return key, nil
}

// GeneratePresignedURL returns a fake signed URL for an uploaded key
func (m *MockReportStore) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return "", errors.New("object not found")
	}
	return m.BaseURL + "/" + key + "?expires=" + expiry.String(), nil
}

// PublishedEvent captures one Publish call
type PublishedEvent struct {
	OwnerID uuid.UUID
	Event   websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(ownerID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{OwnerID: ownerID, Event: event})
}
