package invoicerepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
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

func (r *Repository) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (user_id, external_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, inv.UserID, inv.ExternalID, inv.Amount, inv.Status).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		zap.L().Error("can't create invoice", zap.Int("user_id", inv.UserID), zap.Error(err))
		return err
	}
	return nil
}

// LockInvoice locks the invoice row by its gateway id. Returns nil when unknown.
func (r *Repository) LockInvoice(ctx context.Context, externalID string) (*domain.Invoice, error) {
	query := `
		SELECT id, user_id, external_id, amount, status, created_at, paid_at
		FROM invoices
		WHERE external_id = $1
		FOR UPDATE
	`
	var inv domain.Invoice
	err := r.db.QueryRow(ctx, query, externalID).
		Scan(&inv.ID, &inv.UserID, &inv.ExternalID, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock invoice", zap.String("external_id", externalID), zap.Error(err))
		return nil, err
	}
	return &inv, nil
}

func (r *Repository) MarkInvoicePaid(ctx context.Context, invoiceID int, paidAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE invoices SET status = $1, paid_at = $2 WHERE id = $3`, domain.InvoicePaid, paidAt, invoiceID)
	if err != nil {
		zap.L().Error("can't mark invoice paid", zap.Int("invoice_id", invoiceID), zap.Error(err))
		return err
	}
	return nil
}
