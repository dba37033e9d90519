package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

const userColumns = `id, login, role, balance, total_spent, current_discount, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Login, &user.Role, &user.Balance, &user.TotalSpent, &user.CurrentDiscount, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(repo.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get user", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// LockUser takes a row-exclusive lock held until the surrounding transaction ends.
func (repo *Repository) LockUser(ctx context.Context, userID int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	user, err := scanUser(repo.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock user", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) ApplyDelta(ctx context.Context, userID int, balanceDelta, spentDelta decimal.Decimal) (*domain.User, error) {
	query := `
		UPDATE users
		SET balance = balance + $1,
			total_spent = GREATEST(total_spent + $2, 0)
		WHERE id = $3
		RETURNING ` + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, balanceDelta, spentDelta, userID))
	if err != nil {
		zap.L().Error("can't apply balance delta", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) SetDiscount(ctx context.Context, userID int, discount int) error {
	_, err := repo.db.Exec(ctx, `UPDATE users SET current_discount = $1 WHERE id = $2`, discount, userID)
	if err != nil {
		zap.L().Error("can't update discount", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
