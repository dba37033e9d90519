package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/publication"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/repo"
	"github.com/GlebRadaev/linkmarket/internal/service"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
	"github.com/GlebRadaev/linkmarket/pkg/clients"
)

// Backend is the slice of the engine the admin commands drive.
type Backend interface {
	Approve(ctx context.Context, adminID, placementID int) (*domain.Placement, error)
	Reject(ctx context.Context, adminID, placementID int, reason string) (*placementservice.RefundResult, error)
	DeleteAndRefund(ctx context.Context, adminID, placementID int) (*placementservice.RefundResult, error)
	AdminAdjust(ctx context.Context, adminID, userID int, amount decimal.Decimal, reason string) (*domain.User, error)
	VerifyLedger(ctx context.Context, userID int) (*ledgerservice.LedgerReport, error)
	Tick(ctx context.Context, limit int) (*placementservice.TickResult, error)
}

// Connector opens a Backend. The returned func releases it.
type Connector func(ctx context.Context, opts *RootOptions) (Backend, func(), error)

type engine struct {
	ledger     *ledgerservice.Service
	placements *placementservice.Service
}

func (e *engine) Approve(ctx context.Context, adminID, placementID int) (*domain.Placement, error) {
	return e.placements.Approve(ctx, adminID, placementID)
}

func (e *engine) Reject(ctx context.Context, adminID, placementID int, reason string) (*placementservice.RefundResult, error) {
	return e.placements.Reject(ctx, adminID, placementID, reason)
}

func (e *engine) DeleteAndRefund(ctx context.Context, adminID, placementID int) (*placementservice.RefundResult, error) {
	return e.placements.DeleteAndRefund(ctx, adminID, placementID)
}

func (e *engine) AdminAdjust(ctx context.Context, adminID, userID int, amount decimal.Decimal, reason string) (*domain.User, error) {
	return e.ledger.AdminAdjust(ctx, adminID, userID, amount, reason)
}

func (e *engine) VerifyLedger(ctx context.Context, userID int) (*ledgerservice.LedgerReport, error) {
	return e.ledger.VerifyLedger(ctx, userID)
}

func (e *engine) Tick(ctx context.Context, limit int) (*placementservice.TickResult, error) {
	return e.placements.Tick(ctx, limit)
}

// Connect builds the engine on Postgres. Publication jobs run on a local
// pool that is drained by the release func, so they finish before exit.
func Connect(ctx context.Context, opts *RootOptions) (Backend, func(), error) {
	pool, err := pgxpool.New(ctx, opts.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	pricingCfg, err := pricing.Load(opts.PricingFile)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	var invalidator cache.Invalidator = cache.Nop{}
	var rdb *redis.Client
	if opts.RedisAddr != "" {
		rdb, err = cache.NewRedisClient(opts.RedisAddr, "", 0)
		if err != nil {
			zap.L().Warn("redis unavailable, site feeds refresh on TTL", zap.Error(err))
		} else {
			invalidator = cache.NewRedis(rdb, 0)
		}
	}

	repos := repo.New(pg.New(pool))
	var publisher *publication.Publisher
	workers := queue.NewWorkerPool(2)
	dispatcher := queue.NewPoolDispatcher(workers, func(ctx context.Context, job queue.Job) error {
		return publisher.Handle(ctx, job)
	})
	services := service.New(repos, service.Options{
		TXManager:  pg.NewTXManager(pool),
		Pricing:    pricingCfg,
		Dispatcher: dispatcher,
		Cache:      invalidator,
	})
	publisher = publication.NewPublisher(services.Placements, repos.SiteRepo,
		publication.NewClient(clients.NewHTTPClient()), invalidator)

	release := func() {
		workers.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		pool.Close()
	}
	return &engine{ledger: services.Ledger, placements: services.Placements}, release, nil
}
