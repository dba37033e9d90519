package placementservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
)

type RenewResult struct {
	Placement   *domain.Placement `json:"placement"`
	Price       decimal.Decimal   `json:"price"`
	Balance     decimal.Decimal   `json:"balance"`
	TierChanged bool              `json:"tier_changed"`
}

// Renew extends a placed link by one renewal period, counted from its current expiry.
func (s *Service) Renew(ctx context.Context, userID, placementID int) (*RenewResult, error) {
	return s.renew(ctx, userID, placementID, false)
}

// AutoRenew is the scheduler's renewal. It does nothing when the owner turned
// auto-renewal off in the meantime. An owner who cannot pay is told once per
// expiry date; later attempts inside the window stay silent.
func (s *Service) AutoRenew(ctx context.Context, placementID int) (*RenewResult, error) {
	res, err := s.renew(ctx, 0, placementID, true)
	if err == nil || domain.KindOf(err) != domain.KindInsufficientFunds {
		return res, err
	}
	if nerr := s.markRenewalFailed(ctx, placementID, err); nerr != nil {
		zap.L().Error("can't notify about failed auto-renewal", zap.Int("placement_id", placementID), zap.Error(nerr))
	}
	return nil, err
}

func (s *Service) markRenewalFailed(ctx context.Context, placementID int, cause error) error {
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.ExpiresAt == nil {
			return nil
		}
		if p.RenewalFailedFor != nil && p.RenewalFailedFor.Equal(*p.ExpiresAt) {
			return nil
		}
		expires := *p.ExpiresAt
		p.RenewalFailedFor = &expires
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		return s.notify(ctx, &p.UserID, "auto_renewal_failed", "Auto-renewal failed",
			fmt.Sprintf("Placement %d could not be renewed: %s", placementID, cause.Error()),
			map[string]any{"placement_id": placementID, "expires_at": expires})
	})
}

func (s *Service) renew(ctx context.Context, userID, placementID int, auto bool) (*RenewResult, error) {
	var result *RenewResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, user, err := s.lockPlacement(ctx, placementID, userID)
		if err != nil {
			return err
		}
		if p.Type != domain.PlacementLink {
			return domain.InvalidState("only links can be renewed")
		}
		if p.Status != domain.StatusPlaced {
			return domain.InvalidState("placement %d is %s, only placed links can be renewed", p.ID, p.Status)
		}
		if auto && !p.AutoRenewal {
			result = &RenewResult{Placement: p, Balance: user.Balance}
			return nil
		}

		site, err := s.sites.GetSite(ctx, p.SiteID)
		if err != nil {
			return fmt.Errorf("get site: %w", err)
		}
		ownsSite := site != nil && site.OwnerID == user.ID
		quote := s.pricing.RenewalQuote(s.discountFor(user), ownsSite)

		kind := domain.TransactionRenewal
		if auto {
			kind = domain.TransactionAutoRenewal
		}
		placementRef := p.ID
		user, err = s.ledger.Charge(ctx, user, quote.Final, ledgerservice.Entry{
			Kind:        kind,
			PlacementID: &placementRef,
			Description: fmt.Sprintf("Renewal of placement %d", p.ID),
			Metadata:    map[string]any{"discount_applied": quote.Discount},
		})
		if err != nil {
			return err
		}

		now := s.now()
		oldExpires := p.ExpiresAt
		base := now
		if oldExpires != nil {
			base = *oldExpires
		}
		newExpires := base.Add(s.pricing.RenewalPeriod)
		p.ExpiresAt = &newExpires
		p.LastRenewalAt = &now
		p.RenewalCount++
		p.RenewalPrice = quote.Final
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		err = s.placements.AppendRenewal(ctx, &domain.Renewal{
			PlacementID:  p.ID,
			UserID:       user.ID,
			Price:        quote.Final,
			OldExpiresAt: oldExpires,
			NewExpiresAt: newExpires,
			Auto:         auto,
		})
		if err != nil {
			return fmt.Errorf("append renewal: %w", err)
		}

		tierChanged, err := s.ledger.SyncTier(ctx, user)
		if err != nil {
			return err
		}
		err = s.notify(ctx, &user.ID, "placement_renewed", "Placement renewed",
			fmt.Sprintf("Placement %d renewed until %s for %s", p.ID, newExpires.Format("2006-01-02"), money(quote.Final)),
			map[string]any{"placement_id": p.ID, "auto": auto})
		if err != nil {
			return err
		}
		result = &RenewResult{Placement: p, Price: quote.Final, Balance: user.Balance, TierChanged: tierChanged}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateSite(ctx, result.Placement.SiteID)
	return result, nil
}

func (s *Service) ToggleAutoRenewal(ctx context.Context, userID, placementID int, enabled bool) (*domain.Placement, error) {
	var result *domain.Placement
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPlacement(ctx, placementID, userID)
		if err != nil {
			return err
		}
		if p.Type != domain.PlacementLink {
			return domain.InvalidState("auto-renewal applies to links only")
		}
		if !p.Status.Active() {
			return domain.InvalidState("placement %d is %s", p.ID, p.Status)
		}
		p.AutoRenewal = enabled
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
