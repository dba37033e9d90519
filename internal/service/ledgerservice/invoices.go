package ledgerservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

func (s *Service) CreateInvoice(ctx context.Context, userID int, amount decimal.Decimal) (*domain.Invoice, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("invoice amount must be positive")
	}
	if !wholeCents(amount) {
		return nil, domain.Validation("invoice amount %s has fractions of a cent", amount)
	}
	if _, err := s.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	inv := &domain.Invoice{
		UserID:     userID,
		ExternalID: uuid.NewString(),
		Amount:     amount,
		Status:     domain.InvoicePending,
	}
	if err := s.invoices.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

// ConfirmInvoice credits a paid invoice once. A repeated confirmation of a
// paid invoice is a successful no-op.
func (s *Service) ConfirmInvoice(ctx context.Context, externalID string) (*domain.Invoice, error) {
	var result *domain.Invoice
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.LockInvoice(ctx, externalID)
		if err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		if inv == nil {
			return &domain.Error{Kind: domain.KindNotFound, Message: fmt.Sprintf("invoice %s not found", externalID)}
		}
		result = inv
		if inv.Status == domain.InvoicePaid {
			zap.L().Info("invoice already paid", zap.String("external_id", externalID))
			return nil
		}

		user, err := s.LockUser(ctx, inv.UserID)
		if err != nil {
			return err
		}
		_, err = s.Credit(ctx, user, inv.Amount, decimal.Zero, Entry{
			Kind:        domain.TransactionDeposit,
			Description: "Invoice payment",
			Metadata:    map[string]any{"invoice_id": inv.ExternalID},
		})
		if err != nil {
			return err
		}
		now := time.Now()
		if err := s.invoices.MarkInvoicePaid(ctx, inv.ID, now); err != nil {
			return fmt.Errorf("mark invoice paid: %w", err)
		}
		inv.Status = domain.InvoicePaid
		inv.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
