package ledgerservice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
)

type UserRepo interface {
	GetUser(ctx context.Context, userID int) (*domain.User, error)
	LockUser(ctx context.Context, userID int) (*domain.User, error)
	ApplyDelta(ctx context.Context, userID int, balanceDelta, spentDelta decimal.Decimal) (*domain.User, error)
	SetDiscount(ctx context.Context, userID int, discount int) error
}

type TransactionRepo interface {
	AppendTransaction(ctx context.Context, entry *domain.Transaction) error
	ListTransactions(ctx context.Context, userID, limit, offset int) ([]domain.Transaction, error)
	SumTransactions(ctx context.Context, userID int) (decimal.Decimal, error)
}

type InvoiceRepo interface {
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	LockInvoice(ctx context.Context, externalID string) (*domain.Invoice, error)
	MarkInvoicePaid(ctx context.Context, invoiceID int, paidAt time.Time) error
}

type AuditRepo interface {
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
}

type NotificationRepo interface {
	AppendNotification(ctx context.Context, n *domain.Notification) error
}

type Service struct {
	users         UserRepo
	transactions  TransactionRepo
	invoices      InvoiceRepo
	audit         AuditRepo
	notifications NotificationRepo
	txManager     pg.TXManager
	pricing       *pricing.Config
}

func New(
	users UserRepo,
	transactions TransactionRepo,
	invoices InvoiceRepo,
	audit AuditRepo,
	notifications NotificationRepo,
	txManager pg.TXManager,
	pricingCfg *pricing.Config,
) *Service {
	return &Service{
		users:         users,
		transactions:  transactions,
		invoices:      invoices,
		audit:         audit,
		notifications: notifications,
		txManager:     txManager,
		pricing:       pricingCfg,
	}
}

// Entry describes the ledger row written next to a balance change.
type Entry struct {
	Kind        domain.TransactionKind
	PlacementID *int
	Description string
	Metadata    map[string]any
}

// LockUser locks the user row for the rest of the caller's transaction.
func (s *Service) LockUser(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.users.LockUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, domain.NotFound("user", userID)
	}
	return user, nil
}

// Charge debits amount and adds it to total_spent. The user must be locked by
// the caller and the call must run inside the caller's transaction.
func (s *Service) Charge(ctx context.Context, user *domain.User, amount decimal.Decimal, entry Entry) (*domain.User, error) {
	if user.Balance.LessThan(amount) {
		return nil, domain.InsufficientFunds(amount, user.Balance)
	}
	return s.move(ctx, user, amount.Neg(), amount, entry)
}

// Credit adds amount to the balance and spentDelta to total_spent. Refunds pass
// a negative spentDelta so the tier follows real spend.
func (s *Service) Credit(ctx context.Context, user *domain.User, amount, spentDelta decimal.Decimal, entry Entry) (*domain.User, error) {
	return s.move(ctx, user, amount, spentDelta, entry)
}

func (s *Service) move(ctx context.Context, user *domain.User, balanceDelta, spentDelta decimal.Decimal, entry Entry) (*domain.User, error) {
	before := user.Balance
	updated, err := s.users.ApplyDelta(ctx, user.ID, balanceDelta, spentDelta)
	if err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}
	tx := &domain.Transaction{
		UserID:        user.ID,
		Kind:          entry.Kind,
		Amount:        balanceDelta,
		BalanceBefore: before,
		BalanceAfter:  updated.Balance,
		PlacementID:   entry.PlacementID,
		Description:   entry.Description,
		Metadata:      entry.Metadata,
	}
	if err := s.transactions.AppendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	*user = *updated
	return user, nil
}

// SyncTier recomputes the discount from total_spent and stores it when it
// changed. Runs inside the caller's transaction, after the money moved.
func (s *Service) SyncTier(ctx context.Context, user *domain.User) (bool, error) {
	tier := s.pricing.TierFor(user.TotalSpent)
	if tier.Discount == user.CurrentDiscount {
		return false, nil
	}
	previous := user.CurrentDiscount
	if err := s.users.SetDiscount(ctx, user.ID, tier.Discount); err != nil {
		return false, fmt.Errorf("set discount: %w", err)
	}
	user.CurrentDiscount = tier.Discount

	kind, title := "tier_upgrade", "Discount tier upgraded"
	if tier.Discount < previous {
		kind, title = "tier_downgrade", "Discount tier changed"
	}
	userID := user.ID
	err := s.notifications.AppendNotification(ctx, &domain.Notification{
		UserID:  &userID,
		Type:    kind,
		Title:   title,
		Message: fmt.Sprintf("Your tier is now %s with a %d%% discount", tier.Name, tier.Discount),
		Metadata: map[string]any{
			"tier":              tier.Name,
			"discount":          tier.Discount,
			"previous_discount": previous,
		},
	})
	if err != nil {
		return false, fmt.Errorf("append tier notification: %w", err)
	}
	zap.L().Info("discount tier changed",
		zap.Int("user_id", user.ID), zap.Int("from", previous), zap.Int("to", tier.Discount))
	return true, nil
}

func wholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

func (s *Service) Deposit(ctx context.Context, userID int, amount decimal.Decimal, description string) (*domain.User, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("deposit amount must be positive")
	}
	if !wholeCents(amount) {
		return nil, domain.Validation("deposit amount %s has fractions of a cent", amount)
	}
	var result *domain.User
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		result, err = s.Credit(ctx, user, amount, decimal.Zero, Entry{
			Kind:        domain.TransactionDeposit,
			Description: description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdminAdjust moves a user's balance by a signed amount. total_spent is left
// alone, so adjustments never change the tier.
func (s *Service) AdminAdjust(ctx context.Context, adminID, userID int, amount decimal.Decimal, reason string) (*domain.User, error) {
	if amount.IsZero() {
		return nil, domain.Validation("adjustment amount must not be zero")
	}
	if !wholeCents(amount) {
		return nil, domain.Validation("adjustment amount %s has fractions of a cent", amount)
	}
	var result *domain.User
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		admin, err := s.users.GetUser(ctx, adminID)
		if err != nil {
			return fmt.Errorf("get admin: %w", err)
		}
		if !admin.IsAdmin() {
			return domain.Unauthorized("balance adjustment requires admin role")
		}
		user, err := s.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance.Add(amount).IsNegative() {
			return domain.InsufficientFunds(amount.Neg(), user.Balance)
		}
		result, err = s.Credit(ctx, user, amount, decimal.Zero, Entry{
			Kind:        domain.TransactionAdminAdjustment,
			Description: reason,
			Metadata:    map[string]any{"admin_id": adminID},
		})
		if err != nil {
			return err
		}
		return s.audit.AppendAudit(ctx, &domain.AuditEntry{
			ActorID:    adminID,
			Action:     "balance_adjust",
			EntityType: "user",
			EntityID:   userID,
			Details:    map[string]any{"amount": amount.StringFixed(2), "reason": reason},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("user", userID)
	}
	return user, nil
}

const (
	DefaultTransactionsLimit = 50
	MaxTransactionsLimit     = 200
)

func (s *Service) GetUserTransactions(ctx context.Context, userID, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionsLimit
	}
	if limit > MaxTransactionsLimit {
		limit = MaxTransactionsLimit
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := s.transactions.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch transactions", zap.Error(err))
		return nil, err
	}
	return txs, nil
}

type LedgerReport struct {
	UserID     int             `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	Replayed   decimal.Decimal `json:"replayed"`
	Consistent bool            `json:"consistent"`
}

// VerifyLedger checks that the transaction log replays to the stored balance.
func (s *Service) VerifyLedger(ctx context.Context, userID int) (*LedgerReport, error) {
	var report *LedgerReport
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		sum, err := s.transactions.SumTransactions(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum transactions: %w", err)
		}
		report = &LedgerReport{
			UserID:     userID,
			Balance:    user.Balance,
			Replayed:   sum,
			Consistent: sum.Equal(user.Balance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		zap.L().Warn("ledger mismatch", zap.Int("user_id", userID),
			zap.String("balance", report.Balance.String()), zap.String("replayed", report.Replayed.String()))
	}
	return report, nil
}
