package domain

import "github.com/shopspring/decimal"

// PeriodLastMonth is the only period the deterministic path answers
const PeriodLastMonth = "last month"

// Computed is the deterministic figure attached to an answer when the
// question names a category and last month
type Computed struct {
	Total    decimal.Decimal
	Count    int64
	Category Category
	Period   string
}

// Answer is the result of answering a free-text question
type Answer struct {
	Text     string
	Computed *Computed
	// Source records which path produced Text: "assistant" or "fallback"
	Source string
}

const (
	AnswerSourceAssistant = "assistant"
	AnswerSourceFallback  = "fallback"
)
