package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/google/uuid"
)

// AggregationService computes owner-scoped sums over the transaction store.
// Results are never cached.
type AggregationService struct {
	transactionRepo domain.TransactionRepository
	location        *time.Location
}

// NewAggregationService creates a new AggregationService. Monthly groups are
// computed in loc.
func NewAggregationService(transactionRepo domain.TransactionRepository, loc *time.Location) *AggregationService {
	if loc == nil {
		loc = time.UTC
	}
	return &AggregationService{
		transactionRepo: transactionRepo,
		location:        loc,
	}
}

// Location returns the time zone used for calendar grouping
func (s *AggregationService) Location() *time.Location {
	return s.location
}

// SumByCategory returns per-category totals over [from, to], largest first.
// Equal totals are ordered by category name.
func (s *AggregationService) SumByCategory(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.CategoryTotal, error) {
	if err := validateScope(ownerID, from, to); err != nil {
		return nil, err
	}

	totals, err := s.transactionRepo.SumByCategory(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if cmp := totals[i].Total.Cmp(totals[j].Total); cmp != 0 {
			return cmp > 0
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// SumByMonth returns totals for every (year, month) in the owner's history, oldest first
func (s *AggregationService) SumByMonth(ctx context.Context, ownerID uuid.UUID) ([]domain.MonthTotal, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	totals, err := s.transactionRepo.SumByMonth(ctx, ownerID, s.location)
	if err != nil {
		return nil, fmt.Errorf("sum by month: %w", err)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})
	return totals, nil
}

// SumForCategoryInRange returns the total and count of one category over [from, to]
func (s *AggregationService) SumForCategoryInRange(ctx context.Context, ownerID uuid.UUID, category domain.Category, from, to time.Time) (domain.CategoryRangeTotal, error) {
	if err := validateScope(ownerID, from, to); err != nil {
		return domain.CategoryRangeTotal{}, err
	}
	if !category.IsValid() {
		return domain.CategoryRangeTotal{}, domain.ErrInvalidCategory
	}

	result, err := s.transactionRepo.SumForCategoryInRange(ctx, ownerID, category, from, to)
	if err != nil {
		return domain.CategoryRangeTotal{}, fmt.Errorf("sum for category %q: %w", category, err)
	}
	return result, nil
}

func validateScope(ownerID uuid.UUID, from, to time.Time) error {
	if ownerID == uuid.Nil {
		return domain.ErrUnauthorized
	}
	if from.After(to) {
		return domain.ErrInvalidRange
	}
	return nil
}
