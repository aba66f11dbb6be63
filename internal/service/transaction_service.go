package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(ownerID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Name     string
	Amount   decimal.Decimal
	Category domain.Category
	Date     *time.Time
}

// CreateTransaction validates and stores an expense. Date defaults to now.
func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Category.IsValid() {
		return nil, domain.ErrInvalidCategory
	}

	date := s.now().UTC()
	if input.Date != nil {
		date = *input.Date
	}
	// stored timestamps keep millisecond precision so month windows ending at .999 cover them
	date = date.Truncate(time.Millisecond)

	created, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		OwnerID:  ownerID,
		Name:     name,
		Amount:   input.Amount.Round(2),
		Category: input.Category,
		Date:     date,
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("category", string(created.Category)).
		Msg("Transaction created")

	s.publishEvent(ownerID, websocket.TransactionCreated(created))
	s.publishEvent(ownerID, websocket.SummaryStale())
	return created, nil
}

