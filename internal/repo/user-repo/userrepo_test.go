package userrepo

import (
	"context"
	"errors"
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

var columns = []string{"id", "login", "role", "balance", "total_spent", "current_discount", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_LockUser(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		userID    int
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:   "Locks existing user",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 FOR UPDATE`)).
					WithArgs(1).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(1, "buyer", "user", "30.00", "0", 0, created))
			},
			result: &domain.User{
				ID:         1,
				Login:      "buyer",
				Role:       "user",
				Balance:    decimal.RequireFromString("30.00"),
				TotalSpent: decimal.Zero,
				CreatedAt:  created,
			},
		},
		{
			name:   "Missing user returns nil",
			userID: 42,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 FOR UPDATE`)).
					WithArgs(42).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:   "Database error",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 FOR UPDATE`)).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.LockUser(context.Background(), tt.userID)

			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.result == nil {
				assert.Nil(t, user)
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, tt.result.ID, user.ID)
			assert.Equal(t, tt.result.Login, user.Login)
			assert.True(t, tt.result.Balance.Equal(user.Balance))
			assert.True(t, tt.result.TotalSpent.Equal(user.TotalSpent))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ApplyDelta(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 1).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(1, "buyer", "user", "5.00", "25.00", 0, time.Now()))

	user, err := repo.ApplyDelta(context.Background(), 1, decimal.NewFromInt(-25), decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(5)))
	assert.True(t, user.TotalSpent.Equal(decimal.NewFromInt(25)))

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 2).
		WillReturnError(errors.New("check constraint"))

	_, err = repo.ApplyDelta(context.Background(), 2, decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetDiscount(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET current_discount = $1 WHERE id = $2`)).
		WithArgs(10, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.SetDiscount(context.Background(), 1, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}
