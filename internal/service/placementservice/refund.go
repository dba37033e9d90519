package placementservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
)

type RefundResult struct {
	PlacementID int             `json:"placement_id"`
	UserID      int             `json:"user_id"`
	Refunded    bool            `json:"refunded"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	TierChanged bool            `json:"tier_changed"`

	siteID int
	postID *int
}

type removal struct {
	actorID int
	action  string
	// reject keeps the row as rejected instead of deleting it
	reject bool
	reason string
}

// reverse undoes a purchase for a placement whose owner row and placement row
// are already locked. Money goes back to the owner and total_spent drops by
// the same amount. Free placements are removed without a refund.
func (s *Service) reverse(ctx context.Context, p *domain.Placement, owner *domain.User, rm removal) (*RefundResult, error) {
	result := &RefundResult{PlacementID: p.ID, UserID: owner.ID, siteID: p.SiteID, postID: p.WordPressPostID}

	if p.Status.Refundable() && p.FinalPrice.IsPositive() {
		placementRef := p.ID
		updated, err := s.ledger.Credit(ctx, owner, p.FinalPrice, p.FinalPrice.Neg(), ledgerservice.Entry{
			Kind:        domain.TransactionRefund,
			PlacementID: &placementRef,
			Description: fmt.Sprintf("Refund for placement %d", p.ID),
			Metadata:    map[string]any{"action": rm.action, "actor_id": rm.actorID},
		})
		if err != nil {
			return nil, err
		}
		owner = updated
		result.Refunded = true
		result.Amount = p.FinalPrice
		if result.TierChanged, err = s.ledger.SyncTier(ctx, owner); err != nil {
			return nil, err
		}
	}
	result.Balance = owner.Balance

	if p.Status.Active() {
		if _, err := s.sites.LockSite(ctx, p.SiteID); err != nil {
			return nil, fmt.Errorf("lock site: %w", err)
		}
		for _, contentID := range p.ContentIDs {
			if _, err := s.contents.LockContent(ctx, contentID); err != nil {
				return nil, fmt.Errorf("lock content: %w", err)
			}
		}
		if err := s.sites.AdjustQuota(ctx, p.SiteID, p.Type, -1); err != nil {
			return nil, fmt.Errorf("restore site quota: %w", err)
		}
		for _, contentID := range p.ContentIDs {
			if err := s.contents.AdjustUsage(ctx, contentID, -1); err != nil {
				return nil, fmt.Errorf("restore content usage: %w", err)
			}
		}
	}

	details := map[string]any{
		"user_id":     owner.ID,
		"site_id":     p.SiteID,
		"status":      string(p.Status),
		"final_price": p.FinalPrice.StringFixed(2),
		"refunded":    result.Refunded,
	}
	if rm.reason != "" {
		details["reason"] = rm.reason
	}
	if err := s.record(ctx, rm.actorID, rm.action, p.ID, details); err != nil {
		return nil, err
	}

	if rm.reject {
		p.Status = domain.StatusRejected
		p.RejectionReason = rm.reason
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return nil, fmt.Errorf("update placement: %w", err)
		}
	} else if err := s.placements.DeletePlacement(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("delete placement: %w", err)
	}
	return result, nil
}

// Refund lets a buyer delete a paid placement of their own.
func (s *Service) Refund(ctx context.Context, userID, placementID int) (*RefundResult, error) {
	var result *RefundResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, userID)
		if err != nil {
			return err
		}
		if !p.Status.Refundable() {
			return domain.InvalidState("placement %d is %s and can't be refunded", p.ID, p.Status)
		}
		result, err = s.reverse(ctx, p, owner, removal{actorID: userID, action: "placement_refund"})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logRefund(result, userID)
	s.unpublishAfterCommit(ctx, result.PlacementID, result.siteID, result.postID)
	return result, nil
}

// DeleteAndRefund is the admin delete. The refund always goes to the
// placement owner, never to the admin.
func (s *Service) DeleteAndRefund(ctx context.Context, adminID, placementID int) (*RefundResult, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	var result *RefundResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		result, err = s.reverse(ctx, p, owner, removal{actorID: adminID, action: "placement_admin_delete"})
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Placement %d was removed by an administrator", p.ID)
		if result.Refunded {
			msg += fmt.Sprintf("; %s returned to your balance", money(result.Amount))
		}
		return s.notify(ctx, &owner.ID, "placement_deleted", "Placement removed", msg,
			map[string]any{"placement_id": p.ID, "refunded": result.Refunded})
	})
	if err != nil {
		return nil, err
	}
	s.logRefund(result, adminID)
	s.unpublishAfterCommit(ctx, result.PlacementID, result.siteID, result.postID)
	return result, nil
}

func (s *Service) logRefund(r *RefundResult, actorID int) {
	zap.L().Info("placement removed",
		zap.Int("placement_id", r.PlacementID),
		zap.Int("user_id", r.UserID),
		zap.Int("actor_id", actorID),
		zap.Bool("refunded", r.Refunded),
		zap.String("amount", r.Amount.String()))
}
