package transactionrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) AppendTransaction(ctx context.Context, entry *domain.Transaction) error {
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal transaction metadata: %w", err)
	}
	if entry.Metadata == nil {
		meta = []byte(`{}`)
	}
	query := `
		INSERT INTO transactions (user_id, kind, amount, balance_before, balance_after, placement_id, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err = r.db.QueryRow(ctx, query,
		entry.UserID, string(entry.Kind), entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.PlacementID, entry.Description, meta,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		zap.L().Error("can't append transaction", zap.Int("user_id", entry.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID, limit, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, kind, amount, balance_before, balance_after, placement_id, description, metadata, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		var (
			tx   domain.Transaction
			kind string
			meta []byte
		)
		err := rows.Scan(&tx.ID, &tx.UserID, &kind, &tx.Amount, &tx.BalanceBefore, &tx.BalanceAfter,
			&tx.PlacementID, &tx.Description, &meta, &tx.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan transaction row", zap.Error(err))
			return nil, err
		}
		tx.Kind = domain.TransactionKind(kind)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &tx.Metadata); err != nil {
				return nil, fmt.Errorf("decode transaction metadata: %w", err)
			}
		}
		entries = append(entries, tx)
	}
	return entries, rows.Err()
}

// SumTransactions returns the signed sum of every ledger entry of the user.
func (r *Repository) SumTransactions(ctx context.Context, userID int) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		zap.L().Error("failed to sum transactions", zap.Int("user_id", userID), zap.Error(err))
		return decimal.Zero, err
	}
	return sum, nil
}
