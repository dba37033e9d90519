package placementservice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

// AutoRenewWindow is how far ahead of expiry auto-renewal kicks in.
const AutoRenewWindow = 24 * time.Hour

func (s *Service) DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Placement, error) {
	return s.placements.FindScheduledDue(ctx, now, limit)
}

func (s *Service) ExpiringLinks(ctx context.Context, before time.Time, limit int) ([]domain.Placement, error) {
	return s.placements.FindExpiring(ctx, before, limit)
}

// PromoteScheduled moves a due scheduled placement to pending and hands it to the publisher.
func (s *Service) PromoteScheduled(ctx context.Context, placementID int) error {
	var promoted *domain.Placement
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.Status != domain.StatusScheduled {
			return nil
		}
		if p.ScheduledPublishDate != nil && p.ScheduledPublishDate.After(s.now()) {
			return nil
		}
		p.Status = domain.StatusPending
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		promoted = p
		return nil
	})
	if err != nil {
		return err
	}
	if promoted != nil {
		s.afterCommit(ctx, promoted)
	}
	return nil
}

// Expire ends a placed link whose expiry passed. No money moves; the slot
// and the content usage are released.
func (s *Service) Expire(ctx context.Context, placementID int) error {
	var expired *domain.Placement
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		now := s.now()
		if p.Status != domain.StatusPlaced || p.Type != domain.PlacementLink || p.ExpiresAt == nil || p.ExpiresAt.After(now) {
			return nil
		}

		if _, err := s.sites.LockSite(ctx, p.SiteID); err != nil {
			return fmt.Errorf("lock site: %w", err)
		}
		for _, contentID := range p.ContentIDs {
			if _, err := s.contents.LockContent(ctx, contentID); err != nil {
				return fmt.Errorf("lock content: %w", err)
			}
		}
		if err := s.sites.AdjustQuota(ctx, p.SiteID, p.Type, -1); err != nil {
			return fmt.Errorf("release site quota: %w", err)
		}
		for _, contentID := range p.ContentIDs {
			if err := s.contents.AdjustUsage(ctx, contentID, -1); err != nil {
				return fmt.Errorf("release content usage: %w", err)
			}
		}

		p.Status = domain.StatusExpired
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		expired = p
		return s.notify(ctx, &owner.ID, "placement_expired", "Placement expired",
			fmt.Sprintf("Placement %d expired on %s", p.ID, p.ExpiresAt.Format("2006-01-02")),
			map[string]any{"placement_id": p.ID})
	})
	if err != nil {
		return err
	}
	if expired != nil {
		zap.L().Info("placement expired", zap.Int("placement_id", expired.ID))
		s.unpublishAfterCommit(ctx, expired.ID, expired.SiteID, expired.WordPressPostID)
	}
	return nil
}

// TickResult counts what one sequential scheduler pass did.
type TickResult struct {
	Published int `json:"published"`
	Renewed   int `json:"renewed"`
	Expired   int `json:"expired"`
	Failed    int `json:"failed"`
}

// PublishDue promotes every due scheduled placement one after another.
func (s *Service) PublishDue(ctx context.Context, now time.Time, limit int) (int, int, error) {
	due, err := s.DueScheduled(ctx, now, limit)
	if err != nil {
		return 0, 0, err
	}
	var done, failed int
	for _, p := range due {
		if err := s.PromoteScheduled(ctx, p.ID); err != nil {
			zap.L().Error("can't promote scheduled placement", zap.Int("placement_id", p.ID), zap.Error(err))
			failed++
			continue
		}
		done++
	}
	return done, failed, nil
}

func (s *Service) AutoRenewDue(ctx context.Context, now time.Time, limit int) (int, int, error) {
	expiring, err := s.ExpiringLinks(ctx, now.Add(AutoRenewWindow), limit)
	if err != nil {
		return 0, 0, err
	}
	var done, failed int
	for _, p := range expiring {
		if !p.AutoRenewal {
			continue
		}
		res, err := s.AutoRenew(ctx, p.ID)
		if err != nil {
			zap.L().Warn("auto-renewal failed", zap.Int("placement_id", p.ID), zap.Error(err))
			failed++
			continue
		}
		if res.Price.IsPositive() {
			done++
		}
	}
	return done, failed, nil
}

func (s *Service) ExpireDue(ctx context.Context, now time.Time, limit int) (int, int, error) {
	expiring, err := s.ExpiringLinks(ctx, now, limit)
	if err != nil {
		return 0, 0, err
	}
	var done, failed int
	for _, p := range expiring {
		if err := s.Expire(ctx, p.ID); err != nil {
			zap.L().Error("can't expire placement", zap.Int("placement_id", p.ID), zap.Error(err))
			failed++
			continue
		}
		done++
	}
	return done, failed, nil
}

// Tick runs one full pass: publish, renew, then expire what is left.
func (s *Service) Tick(ctx context.Context, limit int) (*TickResult, error) {
	now := s.now()
	res := &TickResult{}

	published, failed, err := s.PublishDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	res.Published, res.Failed = published, res.Failed+failed

	renewed, failed, err := s.AutoRenewDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	res.Renewed, res.Failed = renewed, res.Failed+failed

	expired, failed, err := s.ExpireDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	res.Expired, res.Failed = expired, res.Failed+failed
	return res, nil
}
