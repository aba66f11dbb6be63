package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is one of the fixed spending categories
type Category string

const (
	CategoryFoodDining    Category = "Food & Dining"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills & Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

// Categories lists every category a transaction may carry, in display order
var Categories = []Category{
	CategoryFoodDining,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is a single owner-scoped expense record. Transactions are never
// updated in place.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"ownerId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Validation constants
const (
	MaxTransactionNameLength = 255
	// QueryContextLimit caps how many recent transactions are sent to the assistant
	QueryContextLimit = 200
)

// TransactionRepository is the owner-scoped transaction store. Every method
// filters strictly by ownerID; date ranges are inclusive on both ends.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Transaction, error)
	SumByCategory(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]CategoryTotal, error)
	SumByMonth(ctx context.Context, ownerID uuid.UUID, loc *time.Location) ([]MonthTotal, error)
	SumForCategoryInRange(ctx context.Context, ownerID uuid.UUID, category Category, from, to time.Time) (CategoryRangeTotal, error)
}
