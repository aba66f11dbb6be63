package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const transactionColumns = `id, owner_id, name, amount, category, date, created_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL.
// Every statement is scoped by owner_id.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO transactions (owner_id, name, amount, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		transaction.OwnerID, transaction.Name, amount, string(transaction.Category), transaction.Date,
	)
	created, err := scanTransaction(row)
	if err != nil {
		return nil, mapError(fmt.Errorf("insert transaction: %w", err))
	}
	return created, nil
}

// Delete hard-deletes one of the owner's transactions
func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return mapError(fmt.Errorf("delete transaction: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListRecent returns up to limit of the owner's transactions, newest first
func (r *TransactionRepository) ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, mapError(fmt.Errorf("list transactions: %w", err))
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("list transactions: %w", err))
	}
	return result, nil
}

// SumByCategory totals the owner's transactions dated within [from, to] per category
func (r *TransactionRepository) SumByCategory(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.CategoryTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
		GROUP BY category`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, mapError(fmt.Errorf("sum by category: %w", err))
	}
	defer rows.Close()

	var result []domain.CategoryTotal
	for rows.Next() {
		var category string
		var total pgtype.Numeric
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		result = append(result, domain.CategoryTotal{
			Category: domain.Category(category),
			Total:    pgNumericToDecimal(total),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("sum by category: %w", err))
	}
	return result, nil
}

// SumByMonth totals the owner's whole history per calendar month as observed in loc
func (r *TransactionRepository) SumByMonth(ctx context.Context, ownerID uuid.UUID, loc *time.Location) ([]domain.MonthTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT EXTRACT(YEAR FROM date AT TIME ZONE $2)::int AS year,
			EXTRACT(MONTH FROM date AT TIME ZONE $2)::int AS month,
			COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1
		GROUP BY 1, 2
		ORDER BY 1, 2`,
		ownerID, loc.String(),
	)
	if err != nil {
		return nil, mapError(fmt.Errorf("sum by month: %w", err))
	}
	defer rows.Close()

	var result []domain.MonthTotal
	for rows.Next() {
		var year, month int
		var total pgtype.Numeric
		if err := rows.Scan(&year, &month, &total); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		result = append(result, domain.MonthTotal{Year: year, Month: month, Total: pgNumericToDecimal(total)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("sum by month: %w", err))
	}
	return result, nil
}

// SumForCategoryInRange totals and counts one category within [from, to]
func (r *TransactionRepository) SumForCategoryInRange(ctx context.Context, ownerID uuid.UUID, category domain.Category, from, to time.Time) (domain.CategoryRangeTotal, error) {
	var total pgtype.Numeric
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM transactions
		WHERE owner_id = $1 AND category = $2 AND date >= $3 AND date <= $4`,
		ownerID, string(category), from, to,
	).Scan(&total, &count)
	if err != nil {
		return domain.CategoryRangeTotal{}, mapError(fmt.Errorf("sum for category: %w", err))
	}
	return domain.CategoryRangeTotal{Total: pgNumericToDecimal(total), Count: count}, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var category string
	var amount pgtype.Numeric
	if err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Name, &amount, &category, &tx.Date, &tx.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Amount = pgNumericToDecimal(amount)
	tx.Category = domain.Category(category)
	return &tx, nil
}
