package placementservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

// PublicationTask is everything the publisher needs for one placement.
type PublicationTask struct {
	Placement *domain.Placement
	Site      *domain.Site
	Contents  []domain.Content
}

func (s *Service) PublicationTask(ctx context.Context, placementID int) (*PublicationTask, error) {
	p, err := s.placements.GetPlacement(ctx, placementID)
	if err != nil {
		return nil, fmt.Errorf("get placement: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("placement", placementID)
	}
	site, err := s.sites.GetSite(ctx, p.SiteID)
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}
	if site == nil {
		return nil, domain.NotFound("site", p.SiteID)
	}
	task := &PublicationTask{Placement: p, Site: site}
	for _, contentID := range p.ContentIDs {
		c, err := s.contents.GetContent(ctx, contentID)
		if err != nil {
			return nil, fmt.Errorf("get content: %w", err)
		}
		if c == nil {
			return nil, domain.NotFound("content", contentID)
		}
		task.Contents = append(task.Contents, *c)
	}
	return task, nil
}

// CompletePublication marks a pending placement placed. It reports false when
// the placement was removed while it was being published; the caller then
// owns the cleanup of the remote post.
func (s *Service) CompletePublication(ctx context.Context, placementID int, postID *int) (bool, error) {
	var (
		siteID   int
		orphaned bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, 0)
		if domain.KindOf(err) == domain.KindNotFound {
			orphaned = true
			return nil
		}
		if err != nil {
			return err
		}
		siteID = p.SiteID
		if p.Status != domain.StatusPending {
			zap.L().Warn("publication finished for non-pending placement",
				zap.Int("placement_id", p.ID), zap.String("status", string(p.Status)))
			return nil
		}
		now := s.now()
		p.Status = domain.StatusPlaced
		p.PublishedAt = &now
		p.WordPressPostID = postID
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		return s.notify(ctx, &owner.ID, "placement_published", "Placement published",
			fmt.Sprintf("Placement %d is live", p.ID), map[string]any{"placement_id": p.ID})
	})
	if err != nil {
		return false, err
	}
	if orphaned {
		zap.L().Warn("placement removed during publication", zap.Int("placement_id", placementID))
		return false, nil
	}
	s.cache.InvalidateSite(ctx, siteID)
	return true, nil
}

// FailPublication marks a pending placement failed and tells the admins.
// The charge stays; an operator retries or refunds.
func (s *Service) FailPublication(ctx context.Context, placementID int, reason string) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.Status != domain.StatusPending {
			return nil
		}
		p.Status = domain.StatusFailed
		p.FailureReason = reason
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		return s.notify(ctx, nil, "publication_failed", "Publication failed",
			fmt.Sprintf("Placement %d failed to publish: %s", p.ID, reason),
			map[string]any{"placement_id": p.ID, "site_id": p.SiteID})
	})
	if err != nil {
		return err
	}
	zap.L().Warn("placement publication failed", zap.Int("placement_id", placementID), zap.String("reason", reason))
	return nil
}

// UnpublishFailed tells admins that a remote post outlived its placement and
// has to be removed by hand.
func (s *Service) UnpublishFailed(ctx context.Context, placementID, siteID, postID int, reason string) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		return s.notify(ctx, nil, "unpublish_failed", "Remote post not deleted",
			fmt.Sprintf("Post %d of placement %d is still live on site %d: %s", postID, placementID, siteID, reason),
			map[string]any{"placement_id": placementID, "site_id": siteID, "post_id": postID})
	})
	if err != nil {
		return err
	}
	zap.L().Warn("remote post left behind", zap.Int("placement_id", placementID), zap.Int("post_id", postID))
	return nil
}
