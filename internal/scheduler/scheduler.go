// Package scheduler drives the time based placement transitions: due
// scheduled publications, auto-renewals and link expiry.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/linkmarket/internal/config"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

type Placements interface {
	DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Placement, error)
	PromoteScheduled(ctx context.Context, placementID int) error
	ExpiringLinks(ctx context.Context, before time.Time, limit int) ([]domain.Placement, error)
	AutoRenew(ctx context.Context, placementID int) (*placementservice.RenewResult, error)
	Expire(ctx context.Context, placementID int) error
}

type Scheduler struct {
	placements     Placements
	workerPool     queue.WorkerPoolI
	limit          int
	updateInterval time.Duration
	inFlight       sync.Map
	now            func() time.Time
}

func New(cfg *config.Config, placements Placements, workerPool queue.WorkerPoolI) *Scheduler {
	limit := cfg.SchedulerBatch
	if limit <= 0 {
		limit = 100
	}
	interval := cfg.SchedulerInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		placements:     placements,
		workerPool:     workerPool,
		limit:          limit,
		updateInterval: interval,
		now:            time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	zap.L().Info("Scheduler started", zap.Duration("interval", s.updateInterval))
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping scheduler")
			return
		case <-ticker.C:
			res, err := s.Tick(ctx)
			if err != nil {
				zap.L().Error("Scheduler tick failed", zap.Error(err))
				continue
			}
			if res.Published+res.Renewed+res.Expired+res.Failed > 0 {
				zap.L().Info("Scheduler tick done",
					zap.Int("published", res.Published),
					zap.Int("renewed", res.Renewed),
					zap.Int("expired", res.Expired),
					zap.Int("failed", res.Failed))
			}
		}
	}
}

// Tick runs the three phases in order. Each phase finishes before the next
// starts, so a link renewed in this tick is never expired by it.
func (s *Scheduler) Tick(ctx context.Context) (*placementservice.TickResult, error) {
	now := s.now()
	res := &placementservice.TickResult{}
	var failed int32

	due, err := s.placements.DueScheduled(ctx, now, s.limit)
	if err != nil {
		return nil, fmt.Errorf("find due placements: %w", err)
	}
	var published int32
	s.process(ctx, due, &failed, func(p domain.Placement) error {
		if err := s.placements.PromoteScheduled(ctx, p.ID); err != nil {
			return err
		}
		atomic.AddInt32(&published, 1)
		return nil
	})
	res.Published = int(published)

	expiring, err := s.placements.ExpiringLinks(ctx, now.Add(placementservice.AutoRenewWindow), s.limit)
	if err != nil {
		return nil, fmt.Errorf("find expiring links: %w", err)
	}
	var renewed int32
	s.process(ctx, autoRenewable(expiring), &failed, func(p domain.Placement) error {
		r, err := s.placements.AutoRenew(ctx, p.ID)
		if err != nil {
			return err
		}
		if r != nil && r.Price.IsPositive() {
			atomic.AddInt32(&renewed, 1)
		}
		return nil
	})
	res.Renewed = int(renewed)

	overdue, err := s.placements.ExpiringLinks(ctx, now, s.limit)
	if err != nil {
		return nil, fmt.Errorf("find overdue links: %w", err)
	}
	var expired int32
	s.process(ctx, overdue, &failed, func(p domain.Placement) error {
		if err := s.placements.Expire(ctx, p.ID); err != nil {
			return err
		}
		atomic.AddInt32(&expired, 1)
		return nil
	})
	res.Expired = int(expired)

	res.Failed = int(atomic.LoadInt32(&failed))
	return res, nil
}

// process fans the placements out onto the worker pool and waits until every
// queued item is handled. A placement already being handled is skipped.
func (s *Scheduler) process(ctx context.Context, placements []domain.Placement, failed *int32, handle func(domain.Placement) error) {
	var (
		g  errgroup.Group
		wg sync.WaitGroup
	)
	for _, p := range placements {
		p := p

		if _, loaded := s.inFlight.LoadOrStore(p.ID, struct{}{}); loaded {
			continue
		}

		wg.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer wg.Done()
				defer s.inFlight.Delete(p.ID)
				if err := handle(p); err != nil {
					atomic.AddInt32(failed, 1)
					return fmt.Errorf("placement %d: %w", p.ID, err)
				}
				return nil
			})
			if err != nil {
				wg.Done()
				s.inFlight.Delete(p.ID)
				atomic.AddInt32(failed, 1)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error queueing scheduler work", zap.Error(err))
	}
	wg.Wait()
}

func autoRenewable(placements []domain.Placement) []domain.Placement {
	out := placements[:0:0]
	for _, p := range placements {
		if p.AutoRenewal {
			out = append(out, p)
		}
	}
	return out
}
