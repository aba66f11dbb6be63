package postgres

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionRowColumns = []string{"id", "owner_id", "name", "amount", "category", "date", "created_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestTransactionRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)

	ownerID := uuid.New()
	id := uuid.New()
	date := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	created := date.Add(time.Hour)

	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(ownerID, "Groceries", pgxmock.AnyArg(), "Food & Dining", date).
		WillReturnRows(pgxmock.NewRows(transactionRowColumns).
			AddRow(id, ownerID, "Groceries", "150.50", "Food & Dining", date, created))

	tx, err := repo.Create(context.Background(), &domain.Transaction{
		OwnerID:  ownerID,
		Name:     "Groceries",
		Amount:   decimal.RequireFromString("150.50"),
		Category: domain.CategoryFoodDining,
		Date:     date,
	})
	require.NoError(t, err)
	assert.Equal(t, id, tx.ID)
	assert.Equal(t, ownerID, tx.OwnerID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, domain.CategoryFoodDining, tx.Category)
	assert.True(t, tx.CreatedAt.Equal(created))
}

func TestTransactionRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID, id := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM transactions`).
		WithArgs(id, ownerID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM transactions`).
		WithArgs(id, ownerID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), ownerID, id))
	assert.ErrorIs(t, repo.Delete(context.Background(), ownerID, id), domain.ErrTransactionNotFound)
}

func TestTransactionRepository_ListRecent(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID := uuid.New()
	newer := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	older := newer.AddDate(0, 0, -3)

	mock.ExpectQuery(`FROM transactions\s+WHERE owner_id = \$1\s+ORDER BY date DESC`).
		WithArgs(ownerID, 200).
		WillReturnRows(pgxmock.NewRows(transactionRowColumns).
			AddRow(uuid.New(), ownerID, "Cab", "80", "Transportation", newer, newer).
			AddRow(uuid.New(), ownerID, "Lunch", "12.25", "Food & Dining", older, older))

	txs, err := repo.ListRecent(context.Background(), ownerID, 200)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Cab", txs[0].Name)
	assert.Equal(t, "12.25", txs[1].Amount.StringFixed(2))
}

func TestTransactionRepository_SumByCategory(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID := uuid.New()
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)

	mock.ExpectQuery(`SELECT category, COALESCE\(SUM\(amount\), 0\)`).
		WithArgs(ownerID, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"category", "total"}).
			AddRow("Food & Dining", "400.00").
			AddRow("Travel", "1250.75"))

	totals, err := repo.SumByCategory(context.Background(), ownerID, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, domain.CategoryFoodDining, totals[0].Category)
	assert.Equal(t, "400.00", totals[0].Total.StringFixed(2))
	assert.Equal(t, "1250.75", totals[1].Total.StringFixed(2))
}

func TestTransactionRepository_SumByMonthUsesLocation(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID := uuid.New()
	loc := time.FixedZone("Asia/Kolkata", 19800)

	mock.ExpectQuery(`AT TIME ZONE \$2`).
		WithArgs(ownerID, "Asia/Kolkata").
		WillReturnRows(pgxmock.NewRows([]string{"year", "month", "total"}).
			AddRow(2023, 12, "100").
			AddRow(2024, 1, "70.5"))

	months, err := repo.SumByMonth(context.Background(), ownerID, loc)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, []int{months[0].Year, months[1].Year})
	assert.Equal(t, []int{12, 1}, []int{months[0].Month, months[1].Month})
	assert.Equal(t, "70.50", months[1].Total.StringFixed(2))
}

func TestTransactionRepository_SumForCategoryInRange(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID := uuid.New()
	from := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	mock.ExpectQuery(`COUNT\(\*\)`).
		WithArgs(ownerID, "Food & Dining", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"total", "count"}).AddRow("400.00", int64(3)))

	result, err := repo.SumForCategoryInRange(context.Background(), ownerID, domain.CategoryFoodDining, from, to)
	require.NoError(t, err)
	assert.Equal(t, "400.00", result.Total.StringFixed(2))
	assert.Equal(t, int64(3), result.Count)
}

func TestTransactionRepository_ConnectivityIsUnavailable(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepository(mock)
	ownerID := uuid.New()

	mock.ExpectQuery(`FROM transactions`).
		WithArgs(ownerID, 200).
		WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
	mock.ExpectQuery(`FROM transactions`).
		WithArgs(ownerID, 200).
		WillReturnError(errors.New("syntax error"))

	_, err := repo.ListRecent(context.Background(), ownerID, 200)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = repo.ListRecent(context.Background(), ownerID, 200)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}
