package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AssistantInstruction is the system instruction sent with every question
const AssistantInstruction = "You are Finos, an AI finance assistant. Use the provided transactions to answer the user's question with clear numbers and 1-2 helpful suggestions. If the user asks for totals, compute precisely. If information is insufficient, say what is missing and suggest how to track it."

// AssistantNotConfiguredText is answered when no assistant is wired and nothing could be computed
const AssistantNotConfiguredText = "AI is not configured. Please set OPENAI_API_KEY."

var lastMonthPattern = regexp.MustCompile(`(?i)last\s+month`)

// Assistant is the language-model collaborator. A nil Assistant means none is configured.
type Assistant interface {
	Complete(ctx context.Context, systemInstruction, userPayload string) (string, error)
}

// AskService answers free-text spending questions
type AskService struct {
	transactionRepo domain.TransactionRepository
	aggregation     *AggregationService
	classifier      *Classifier
	assistant       Assistant
	currencySymbol  string
}

// NewAskService creates a new AskService. assistant may be nil.
func NewAskService(transactionRepo domain.TransactionRepository, aggregation *AggregationService, classifier *Classifier, assistant Assistant, currencySymbol string) *AskService {
	return &AskService{
		transactionRepo: transactionRepo,
		aggregation:     aggregation,
		classifier:      classifier,
		assistant:       assistant,
		currencySymbol:  currencySymbol,
	}
}

type contextTransaction struct {
	Amount   json.Number     `json:"amount"`
	Category domain.Category `json:"category"`
	Date     string          `json:"date"`
}

type contextComputed struct {
	Total    json.Number     `json:"total"`
	Count    int64           `json:"count"`
	Category domain.Category `json:"category"`
	Period   string          `json:"period"`
}

type assistantPayload struct {
	Question     string               `json:"question"`
	Transactions []contextTransaction `json:"transactions"`
	Computed     *contextComputed     `json:"computed"`
}

// Answer resolves the question against the owner's data at instant now
func (s *AskService) Answer(ctx context.Context, ownerID uuid.UUID, question string, now time.Time) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrQuestionRequired
	}

	computed, err := s.compute(ctx, ownerID, question, now)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactionRepo.ListRecent(ctx, ownerID, domain.QueryContextLimit)
	if err != nil {
		return nil, fmt.Errorf("load query context: %w", err)
	}

	if s.assistant == nil {
		return &domain.Answer{
			Text:     s.fallbackText(computed),
			Computed: computed,
			Source:   domain.AnswerSourceFallback,
		}, nil
	}

	payload, err := buildAssistantPayload(question, recent, computed, s.aggregation.Location())
	if err != nil {
		return nil, err
	}

	reply, err := s.assistant.Complete(ctx, AssistantInstruction, payload)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Assistant request failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrAssistantFailed, err)
	}

	return &domain.Answer{
		Text:     reply,
		Computed: computed,
		Source:   domain.AnswerSourceAssistant,
	}, nil
}

// compute returns the deterministic figure when the question names a category and last month
func (s *AskService) compute(ctx context.Context, ownerID uuid.UUID, question string, now time.Time) (*domain.Computed, error) {
	category, ok := s.classifier.Classify(question)
	if !ok || !lastMonthPattern.MatchString(question) {
		return nil, nil
	}

	start, end := util.PreviousCalendarMonth(now.In(s.aggregation.Location()))
	total, err := s.aggregation.SumForCategoryInRange(ctx, ownerID, category, start, end)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("category", string(category)).
		Str("total", total.Total.String()).
		Msg("Computed last month total")

	return &domain.Computed{
		Total:    total.Total,
		Count:    total.Count,
		Category: category,
		Period:   domain.PeriodLastMonth,
	}, nil
}

func (s *AskService) fallbackText(computed *domain.Computed) string {
	if computed == nil {
		return AssistantNotConfiguredText
	}
	return fmt.Sprintf("You spent %s%s on %s last month. Consider setting a monthly cap and tracking with categories.",
		s.currencySymbol, computed.Total.StringFixed(2), computed.Category)
}

func buildAssistantPayload(question string, recent []*domain.Transaction, computed *domain.Computed, loc *time.Location) (string, error) {
	payload := assistantPayload{
		Question:     question,
		Transactions: make([]contextTransaction, 0, len(recent)),
	}
	for _, tx := range recent {
		payload.Transactions = append(payload.Transactions, contextTransaction{
			Amount:   json.Number(tx.Amount.String()),
			Category: tx.Category,
			Date:     tx.Date.In(loc).Format("2006-01-02"),
		})
	}
	if computed != nil {
		payload.Computed = &contextComputed{
			Total:    json.Number(computed.Total.String()),
			Count:    computed.Count,
			Category: computed.Category,
			Period:   computed.Period,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode assistant payload: %w", err)
	}
	return string(data), nil
}
