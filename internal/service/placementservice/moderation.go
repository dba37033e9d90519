package placementservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

// Approve releases a moderated placement: scheduled when its publish date is
// still ahead, otherwise pending and handed to the publisher.
func (s *Service) Approve(ctx context.Context, adminID, placementID int) (*domain.Placement, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	var result *domain.Placement
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.Status != domain.StatusPendingApproval {
			return domain.InvalidState("placement %d is %s, not pending approval", p.ID, p.Status)
		}
		p.Status = domain.StatusPending
		if p.ScheduledPublishDate != nil && p.ScheduledPublishDate.After(s.now()) {
			p.Status = domain.StatusScheduled
		}
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		if err := s.record(ctx, adminID, "placement_approve", p.ID, map[string]any{"status": string(p.Status)}); err != nil {
			return err
		}
		result = p
		return s.notify(ctx, &owner.ID, "placement_approved", "Placement approved",
			fmt.Sprintf("Placement %d was approved", p.ID), map[string]any{"placement_id": p.ID})
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, result)
	return result, nil
}

// Reject refunds a moderated placement in full and keeps it as rejected.
func (s *Service) Reject(ctx context.Context, adminID, placementID int, reason string) (*RefundResult, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Rejected by moderator"
	}
	var result *RefundResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, owner, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.Status != domain.StatusPendingApproval {
			return domain.InvalidState("placement %d is %s, not pending approval", p.ID, p.Status)
		}
		result, err = s.reverse(ctx, p, owner, removal{actorID: adminID, action: "placement_reject", reject: true, reason: reason})
		if err != nil {
			return err
		}
		return s.notify(ctx, &owner.ID, "placement_rejected", "Placement rejected",
			fmt.Sprintf("Placement %d was rejected: %s", p.ID, reason),
			map[string]any{"placement_id": p.ID, "refunded": result.Refunded})
	})
	if err != nil {
		return nil, err
	}
	s.logRefund(result, adminID)
	s.cache.InvalidateSite(ctx, result.siteID)
	return result, nil
}

// RetryPublication sends a failed placement back to the publisher.
func (s *Service) RetryPublication(ctx context.Context, adminID, placementID int) (*domain.Placement, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	var result *domain.Placement
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPlacement(ctx, placementID, 0)
		if err != nil {
			return err
		}
		if p.Status != domain.StatusFailed {
			return domain.InvalidState("placement %d is %s, only failed placements can be retried", p.ID, p.Status)
		}
		previous := p.FailureReason
		p.Status = domain.StatusPending
		p.FailureReason = ""
		if err := s.placements.UpdatePlacement(ctx, p); err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		result = p
		return s.record(ctx, adminID, "placement_retry", p.ID, map[string]any{"previous_failure": previous})
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, result)
	return result, nil
}
