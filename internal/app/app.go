package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/config"
	"github.com/GlebRadaev/linkmarket/internal/handlers"
	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/publication"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/repo"
	"github.com/GlebRadaev/linkmarket/internal/scheduler"
	"github.com/GlebRadaev/linkmarket/internal/service"
	"github.com/GlebRadaev/linkmarket/pkg/auth"
	"github.com/GlebRadaev/linkmarket/pkg/clients"
	"github.com/GlebRadaev/linkmarket/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type siteCache interface {
	cache.Invalidator
	Feed(ctx context.Context, siteID int, load func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

type Application struct {
	cfg       *config.Config
	api       *handlers.Handlers
	srv       *service.Services
	repo      *repo.Repositories
	publisher *publication.Publisher
	scheduler *scheduler.Scheduler

	pool        *pgxpool.Pool
	rdb         *redis.Client
	amqp        *queue.AMQPDispatcher
	workerPools []*queue.WorkerPool

	errCh      chan error
	serverDone chan struct{}
	wg         sync.WaitGroup
	ready      bool
}

func New() *Application {
	return &Application{
		errCh:      make(chan error),
		serverDone: make(chan struct{}),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	a.pool = pool

	pricingCfg, err := pricing.Load(cfg.PricingFile)
	if err != nil {
		return fmt.Errorf("can't load pricing: %w", err)
	}

	a.cfg = cfg
	a.repo = repo.New(pg.New(pool))
	siteCache := a.buildCache(cfg)

	// the publisher needs the placement service and the service needs the dispatcher
	handle := func(ctx context.Context, job queue.Job) error {
		return a.publisher.Handle(ctx, job)
	}
	dispatcher := a.buildDispatcher(cfg, handle)

	a.srv = service.New(a.repo, service.Options{
		TXManager:        pg.NewTXManager(pool),
		Pricing:          pricingCfg,
		Dispatcher:       dispatcher,
		Cache:            siteCache,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	a.publisher = publication.NewPublisher(a.srv.Placements, a.repo.SiteRepo,
		publication.NewClient(clients.NewHTTPClient()), siteCache)
	a.api = handlers.New(a.srv, handlers.Deps{
		Sites:         a.repo.SiteRepo,
		Feed:          a.repo.PlacementRepo,
		FeedCache:     siteCache,
		JWT:           auth.NewJWTService(cfg.JWTSecret),
		WebhookSecret: cfg.WebhookSecret,
	})
	schedulerPool := queue.NewWorkerPool(cfg.BatchConcurrency)
	a.workerPools = append(a.workerPools, schedulerPool)
	a.scheduler = scheduler.New(cfg, a.srv.Placements, schedulerPool)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.startConsumer(ctx, handle)
	a.startScheduler(ctx)
	a.closeOnDone(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// buildCache falls back to no caching when Redis is not configured or down.
func (a *Application) buildCache(cfg *config.Config) siteCache {
	if cfg.RedisAddr == "" {
		return cache.Nop{}
	}
	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zap.L().Warn("redis unavailable, running without cache", zap.Error(err))
		return cache.Nop{}
	}
	a.rdb = rdb
	return cache.NewRedis(rdb, cfg.CacheTTL)
}

// buildDispatcher prefers the durable queue and falls back to the in-process pool.
func (a *Application) buildDispatcher(cfg *config.Config, handle queue.Handler) queue.Dispatcher {
	if cfg.AMQPURL != "" {
		d, err := queue.NewAMQPDispatcher(cfg.AMQPURL)
		if err == nil {
			a.amqp = d
			return d
		}
		zap.L().Warn("amqp unavailable, publishing in process", zap.Error(err))
	}
	wp := queue.NewWorkerPool(cfg.PublishWorkers)
	a.workerPools = append(a.workerPools, wp)
	return queue.NewPoolDispatcher(wp, handle)
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
		close(a.serverDone)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startConsumer(ctx context.Context, handle queue.Handler) {
	if a.amqp == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := queue.Consume(ctx, a.cfg.AMQPURL, a.cfg.PublishWorkers, handle); err != nil && ctx.Err() == nil {
			a.errCh <- fmt.Errorf("publication consumer exited with error: %w", err)
		}
	}()
}

func (a *Application) startScheduler(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.scheduler.Start(ctx)
	}()
}

// closeOnDone releases pools and connections once the HTTP server has drained.
func (a *Application) closeOnDone(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		<-a.serverDone

		for _, wp := range a.workerPools {
			wp.Close()
		}
		if a.amqp != nil {
			if err := a.amqp.Close(); err != nil {
				zap.L().Warn("amqp close failed", zap.Error(err))
			}
		}
		if a.rdb != nil {
			if err := a.rdb.Close(); err != nil {
				zap.L().Warn("redis close failed", zap.Error(err))
			}
		}
		a.pool.Close()
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
