package service

import (
	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/repo"
	"github.com/GlebRadaev/linkmarket/internal/service/batchservice"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

type Services struct {
	Ledger     *ledgerservice.Service
	Placements *placementservice.Service
	Batch      *batchservice.Service
}

type Options struct {
	TXManager        pg.TXManager
	Pricing          *pricing.Config
	Dispatcher       queue.Dispatcher
	Cache            cache.Invalidator
	BatchConcurrency int
}

func New(repo *repo.Repositories, opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	ledger := ledgerservice.New(
		repo.UserRepo,
		repo.TransactionRepo,
		repo.InvoiceRepo,
		repo.AuditRepo,
		repo.NotificationRepo,
		opts.TXManager,
		opts.Pricing,
	)
	placements := placementservice.New(placementservice.Repos{
		Users:         repo.UserRepo,
		Sites:         repo.SiteRepo,
		Contents:      repo.ContentRepo,
		Placements:    repo.PlacementRepo,
		Audit:         repo.AuditRepo,
		Notifications: repo.NotificationRepo,
	}, ledger, opts.TXManager, opts.Pricing, opts.Dispatcher, opts.Cache)
	batch := batchservice.New(placements, repo.NotificationRepo, opts.BatchConcurrency)

	return &Services{
		Ledger:     ledger,
		Placements: placements,
		Batch:      batch,
	}
}
