package invoicerepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_CreateInvoice(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()
	inv := &domain.Invoice{UserID: 1, ExternalID: "ext-1", Amount: decimal.NewFromInt(50), Status: domain.InvoicePending}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO invoices`)).
		WithArgs(1, "ext-1", pgxmock.AnyArg(), "pending").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(3, created))

	require.NoError(t, repo.CreateInvoice(context.Background(), inv))
	assert.Equal(t, 3, inv.ID)
	assert.Equal(t, created, inv.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockInvoice(t *testing.T) {
	repo, mock := NewMock(t)
	paid := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE external_id = $1 FOR UPDATE`)).
		WithArgs("ext-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "external_id", "amount", "status", "created_at", "paid_at"}).
			AddRow(3, 1, "ext-1", "50.00", "paid", paid, &paid))

	inv, err := repo.LockInvoice(context.Background(), "ext-1")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, domain.InvoicePaid, inv.Status)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(50)))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE external_id = $1 FOR UPDATE`)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	inv, err = repo.LockInvoice(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, inv)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkInvoicePaid(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE invoices SET status = $1, paid_at = $2 WHERE id = $3`)).
		WithArgs("paid", now, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.MarkInvoicePaid(context.Background(), 3, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
