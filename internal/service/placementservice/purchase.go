package placementservice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
)

type PurchaseRequest struct {
	ProjectID     int                  `json:"project_id"`
	SiteID        int                  `json:"site_id"`
	Type          domain.PlacementType `json:"type"`
	ContentIDs    []int                `json:"content_ids"`
	ScheduledDate *time.Time           `json:"scheduled_publish_date,omitempty"`
	AutoRenewal   bool                 `json:"auto_renewal"`
}

type PurchaseResult struct {
	Placement   *domain.Placement `json:"placement"`
	Balance     decimal.Decimal   `json:"balance"`
	TierChanged bool              `json:"tier_changed"`
}

func (s *Service) validatePurchase(req PurchaseRequest, now time.Time) error {
	if !req.Type.Valid() {
		return domain.Validation("unknown placement type %q", req.Type)
	}
	if len(req.ContentIDs) != 1 {
		return domain.Validation("exactly one content id is required, got %d", len(req.ContentIDs))
	}
	if req.ScheduledDate != nil {
		if !req.ScheduledDate.After(now) {
			return domain.Validation("scheduled publish date must be in the future")
		}
		if req.ScheduledDate.After(now.Add(s.pricing.MaxScheduleAhead)) {
			return domain.Validation("scheduled publish date must be within %d days", int(s.pricing.MaxScheduleAhead.Hours()/24))
		}
	}
	return nil
}

// Purchase charges the buyer and creates the placement in one transaction.
func (s *Service) Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResult, error) {
	now := s.now()
	if err := s.validatePurchase(req, now); err != nil {
		return nil, err
	}

	var result *PurchaseResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.purchase(ctx, userID, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("placement purchased",
		zap.Int("user_id", userID),
		zap.Int("placement_id", result.Placement.ID),
		zap.String("status", string(result.Placement.Status)),
		zap.String("price", result.Placement.FinalPrice.String()))
	s.afterCommit(ctx, result.Placement)
	return result, nil
}

func (s *Service) purchase(ctx context.Context, userID int, req PurchaseRequest, now time.Time) (*PurchaseResult, error) {
	user, err := s.ledger.LockUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	project, err := s.contents.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, domain.NotFound("project", req.ProjectID)
	}
	if project.UserID != user.ID {
		return nil, domain.Unauthorized("project %d belongs to another user", project.ID)
	}

	site, err := s.sites.LockSite(ctx, req.SiteID)
	if err != nil {
		return nil, fmt.Errorf("lock site: %w", err)
	}
	if site == nil {
		return nil, domain.NotFound("site", req.SiteID)
	}
	ownsSite := site.OwnerID == user.ID
	if !site.IsPublic && !ownsSite {
		return nil, domain.Unauthorized("site %d is private", site.ID)
	}
	if !site.AvailableForPurchase {
		return nil, domain.InvalidState("site %d is closed for purchase", site.ID)
	}
	if !site.Sells(req.Type) {
		return nil, domain.Validation("site %d does not accept %s placements", site.ID, req.Type)
	}
	if used, max := site.Quota(req.Type); used >= max {
		return nil, domain.QuotaExceeded("site %d has no free %s slots (%d/%d)", site.ID, req.Type, used, max)
	}

	exists, err := s.placements.HasActivePlacement(ctx, project.ID, site.ID, req.Type)
	if err != nil {
		return nil, fmt.Errorf("check active placement: %w", err)
	}
	if exists {
		return nil, domain.InvalidState("project %d already has an active %s on site %d", project.ID, req.Type, site.ID)
	}

	for _, contentID := range req.ContentIDs {
		content, err := s.contents.LockContent(ctx, contentID)
		if err != nil {
			return nil, fmt.Errorf("lock content: %w", err)
		}
		if content == nil {
			return nil, domain.NotFound("content", contentID)
		}
		if content.ProjectID != project.ID {
			return nil, domain.Validation("content %d does not belong to project %d", contentID, project.ID)
		}
		if content.Kind != req.Type {
			return nil, domain.Validation("content %d is a %s, not a %s", contentID, content.Kind, req.Type)
		}
		if content.Exhausted() {
			return nil, domain.QuotaExceeded("content %d reached its usage limit (%d)", contentID, content.UsageLimit)
		}
	}

	discount := s.discountFor(user)
	quote := s.pricing.PurchaseQuote(req.Type, discount, ownsSite)
	if user.Balance.LessThan(quote.Final) {
		return nil, domain.InsufficientFunds(quote.Final, user.Balance)
	}

	p := &domain.Placement{
		UserID:          user.ID,
		ProjectID:       project.ID,
		SiteID:          site.ID,
		Type:            req.Type,
		OriginalPrice:   quote.Original,
		DiscountApplied: quote.Discount,
		FinalPrice:      quote.Final,
		PurchasedAt:     now,
		ContentIDs:      append([]int(nil), req.ContentIDs...),
	}
	if req.Type == domain.PlacementLink {
		expires := now.Add(s.pricing.RenewalPeriod)
		p.ExpiresAt = &expires
		p.RenewalPrice = s.pricing.RenewalQuote(discount, ownsSite).Final
		p.AutoRenewal = req.AutoRenewal
	}
	if req.ScheduledDate != nil {
		date := req.ScheduledDate.UTC()
		p.ScheduledPublishDate = &date
	}

	switch {
	case !user.IsAdmin() && !ownsSite:
		p.Status = domain.StatusPendingApproval
	case p.ScheduledPublishDate != nil:
		p.Status = domain.StatusScheduled
	default:
		p.Status = domain.StatusPending
	}

	if err := s.placements.CreatePlacement(ctx, p); err != nil {
		return nil, fmt.Errorf("create placement: %w", err)
	}
	placementID := p.ID
	user, err = s.ledger.Charge(ctx, user, p.FinalPrice, ledgerservice.Entry{
		Kind:        domain.TransactionPurchase,
		PlacementID: &placementID,
		Description: fmt.Sprintf("Purchase of %s on %s", p.Type, site.URL),
		Metadata: map[string]any{
			"site_id":          site.ID,
			"project_id":       project.ID,
			"original_price":   p.OriginalPrice.StringFixed(2),
			"discount_applied": p.DiscountApplied,
		},
	})
	if err != nil {
		return nil, err
	}

	for _, contentID := range p.ContentIDs {
		if err := s.contents.AdjustUsage(ctx, contentID, 1); err != nil {
			return nil, fmt.Errorf("adjust content usage: %w", err)
		}
	}
	if err := s.sites.AdjustQuota(ctx, site.ID, p.Type, 1); err != nil {
		return nil, fmt.Errorf("adjust site quota: %w", err)
	}

	tierChanged, err := s.ledger.SyncTier(ctx, user)
	if err != nil {
		return nil, err
	}

	if p.Status == domain.StatusPendingApproval {
		err = s.notify(ctx, nil, "placement_pending_approval", "Placement awaits moderation",
			fmt.Sprintf("Placement %d on %s needs approval", p.ID, site.URL),
			map[string]any{"placement_id": p.ID, "site_id": site.ID, "user_id": user.ID})
		if err != nil {
			return nil, err
		}
	}

	return &PurchaseResult{Placement: p, Balance: user.Balance, TierChanged: tierChanged}, nil
}
