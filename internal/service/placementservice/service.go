// Package placementservice drives a placement through its lifecycle. Every
// money or quota change runs in one transaction that locks rows in the order
// user, site, content. Publication and cache eviction happen after commit.
package placementservice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
)

type Ledger interface {
	LockUser(ctx context.Context, userID int) (*domain.User, error)
	Charge(ctx context.Context, user *domain.User, amount decimal.Decimal, entry ledgerservice.Entry) (*domain.User, error)
	Credit(ctx context.Context, user *domain.User, amount, spentDelta decimal.Decimal, entry ledgerservice.Entry) (*domain.User, error)
	SyncTier(ctx context.Context, user *domain.User) (bool, error)
}

type UserRepo interface {
	GetUser(ctx context.Context, userID int) (*domain.User, error)
}

type SiteRepo interface {
	GetSite(ctx context.Context, siteID int) (*domain.Site, error)
	LockSite(ctx context.Context, siteID int) (*domain.Site, error)
	AdjustQuota(ctx context.Context, siteID int, t domain.PlacementType, delta int) error
}

type ContentRepo interface {
	GetProject(ctx context.Context, projectID int) (*domain.Project, error)
	GetContent(ctx context.Context, contentID int) (*domain.Content, error)
	LockContent(ctx context.Context, contentID int) (*domain.Content, error)
	AdjustUsage(ctx context.Context, contentID int, delta int) error
}

type PlacementRepo interface {
	GetPlacement(ctx context.Context, placementID int) (*domain.Placement, error)
	LockPlacement(ctx context.Context, placementID int) (*domain.Placement, error)
	HasActivePlacement(ctx context.Context, projectID, siteID int, t domain.PlacementType) (bool, error)
	CreatePlacement(ctx context.Context, p *domain.Placement) error
	UpdatePlacement(ctx context.Context, p *domain.Placement) error
	DeletePlacement(ctx context.Context, placementID int) error
	AppendRenewal(ctx context.Context, renewal *domain.Renewal) error
	FindScheduledDue(ctx context.Context, now time.Time, limit int) ([]domain.Placement, error)
	FindExpiring(ctx context.Context, before time.Time, limit int) ([]domain.Placement, error)
}

type AuditRepo interface {
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
}

type NotificationRepo interface {
	AppendNotification(ctx context.Context, n *domain.Notification) error
}

// Repos groups the storage the service works on.
type Repos struct {
	Users         UserRepo
	Sites         SiteRepo
	Contents      ContentRepo
	Placements    PlacementRepo
	Audit         AuditRepo
	Notifications NotificationRepo
}

type Service struct {
	ledger        Ledger
	users         UserRepo
	sites         SiteRepo
	contents      ContentRepo
	placements    PlacementRepo
	audit         AuditRepo
	notifications NotificationRepo
	txManager     pg.TXManager
	pricing       *pricing.Config
	dispatcher    queue.Dispatcher
	cache         cache.Invalidator
	now           func() time.Time
}

func New(
	repos Repos,
	ledger Ledger,
	txManager pg.TXManager,
	pricingCfg *pricing.Config,
	dispatcher queue.Dispatcher,
	invalidator cache.Invalidator,
) *Service {
	return &Service{
		ledger:        ledger,
		users:         repos.Users,
		sites:         repos.Sites,
		contents:      repos.Contents,
		placements:    repos.Placements,
		audit:         repos.Audit,
		notifications: repos.Notifications,
		txManager:     txManager,
		pricing:       pricingCfg,
		dispatcher:    dispatcher,
		cache:         invalidator,
		now:           time.Now,
	}
}

func (s *Service) requireAdmin(ctx context.Context, userID int) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !user.IsAdmin() {
		return domain.Unauthorized("admin role required")
	}
	return nil
}

// lockPlacement locks the owner's user row first and the placement second,
// keeping the global lock order. ownerID > 0 enforces ownership.
func (s *Service) lockPlacement(ctx context.Context, placementID, ownerID int) (*domain.Placement, *domain.User, error) {
	p, err := s.placements.GetPlacement(ctx, placementID)
	if err != nil {
		return nil, nil, fmt.Errorf("get placement: %w", err)
	}
	if p == nil {
		return nil, nil, domain.NotFound("placement", placementID)
	}
	if ownerID > 0 && p.UserID != ownerID {
		return nil, nil, domain.Unauthorized("placement %d belongs to another user", placementID)
	}
	owner, err := s.ledger.LockUser(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	p, err = s.placements.LockPlacement(ctx, placementID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock placement: %w", err)
	}
	if p == nil || p.UserID != owner.ID {
		return nil, nil, domain.NotFound("placement", placementID)
	}
	return p, owner, nil
}

func (s *Service) notify(ctx context.Context, userID *int, kind, title, message string, meta map[string]any) error {
	err := s.notifications.AppendNotification(ctx, &domain.Notification{
		UserID:   userID,
		Type:     kind,
		Title:    title,
		Message:  message,
		Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int, action string, placementID int, details map[string]any) error {
	err := s.audit.AppendAudit(ctx, &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "placement",
		EntityID:   placementID,
		Details:    details,
	})
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// afterCommit evicts the site cache and hands a pending placement to the
// publisher. A failed handoff marks the placement failed; money stays charged.
func (s *Service) afterCommit(ctx context.Context, p *domain.Placement) {
	s.cache.InvalidateSite(ctx, p.SiteID)
	if p.Status != domain.StatusPending {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, queue.PublishJob(p.ID, p.SiteID)); err != nil {
		zap.L().Error("publication handoff failed", zap.Int("placement_id", p.ID), zap.Error(err))
		if ferr := s.FailPublication(ctx, p.ID, "publication handoff failed: "+err.Error()); ferr != nil {
			zap.L().Error("can't mark placement failed", zap.Int("placement_id", p.ID), zap.Error(ferr))
		}
	}
}

func (s *Service) unpublishAfterCommit(ctx context.Context, placementID, siteID int, postID *int) {
	s.cache.InvalidateSite(ctx, siteID)
	if postID == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, queue.UnpublishJob(placementID, siteID, *postID)); err != nil {
		zap.L().Error("unpublish handoff failed", zap.Int("placement_id", placementID), zap.Int("post_id", *postID), zap.Error(err))
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
