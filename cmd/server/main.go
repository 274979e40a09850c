package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/assetledger/internal/adapter/http"
	"github.com/iho/assetledger/internal/adapter/http/handler"
	"github.com/iho/assetledger/internal/adapter/http/middleware"
	"github.com/iho/assetledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/assetledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/assetledger/internal/adapter/repository/redis"
	"github.com/iho/assetledger/internal/infrastructure/auth"
	"github.com/iho/assetledger/internal/infrastructure/config"
	"github.com/iho/assetledger/internal/infrastructure/eventpublisher"
	"github.com/iho/assetledger/internal/infrastructure/logger"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/infrastructure/postgres"
	"github.com/iho/assetledger/internal/infrastructure/redis"
	"github.com/iho/assetledger/internal/usecase"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterMaxIdle         = time.Hour
	outboxRetention        = 7 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := run(ctx, cfg, log, reg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// repositories holds the storage ports chosen by configuration.
type repositories struct {
	txManager usecase.TransactionManager
	assets    usecase.AssetRepository
	mappings  usecase.AccountMappingRepository
	journal   usecase.JournalRepository
	postings  usecase.PostingRepository
	disposals usecase.DisposalRepository
	ledger    usecase.LedgerRepository
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
}

// app is the wired service.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) error {
	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.Storage).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.publisher != nil {
		g.Go(func() error {
			if err := a.publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := a.rateLimiter.CleanupLimiters(limiterMaxIdle); n > 0 {
					log.Debug().Int("removed", n).Msg("rate limiters cleaned up")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}
	m := metrics.NewWithRegisterer(reg)

	var deps []handler.Dependency

	var repos repositories
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.New()
		repos = repositories{
			txManager: store.TxManager(),
			assets:    store.Assets(),
			mappings:  store.Mappings(),
			journal:   store.Journal(),
			postings:  store.Postings(),
			disposals: store.Disposals(),
			ledger:    store.Ledger(),
			outbox:    store.Outbox(),
		}
		log.Warn().Msg("using in-memory storage; data is lost on restart")

	default:
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL:     cfg.DatabaseURL,
			MaxConns:        cfg.DatabaseMaxConns,
			MinConns:        cfg.DatabaseMinConns,
			MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		repos = postgresRepositories(pool, cfg, m, log)
		deps = append(deps, handler.Dependency{Name: "postgres", Ping: pool.Ping})
	}

	if !cfg.OutboxEnabled {
		repos.outbox = postgresRepo.NewNullOutboxRepository()
	}

	var (
		locker           usecase.BatchLocker
		idempotencyStore usecase.IdempotencyStore
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	)

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Options{
			URL:      cfg.RedisURL,
			PoolSize: cfg.RedisPoolSize,
			Timeout:  cfg.RedisTimeout,
		}, log)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		locker = redisRepo.NewBatchLocker(client, m)
		idempotencyStore = redisRepo.NewIdempotencyStore(client, m)
		mappingCache := redisRepo.NewCache(client, "mapping", m)
		if n, err := mappingCache.Flush(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to flush mapping cache")
		} else if n > 0 {
			log.Info().Int("keys", n).Msg("flushed stale mapping cache")
		}
		repos.mappings = redisRepo.NewMappingCache(repos.mappings, mappingCache, cfg.MappingCacheTTL, log)
		publisher = eventpublisher.NewStreamPublisher(client, eventpublisher.DefaultStream)
		deps = append(deps, handler.Dependency{Name: "redis", Ping: redisPing(client)})
	}

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: repos.outbox,
			Publisher:  publisher,
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  outboxRetention,
		})
	}

	idGen := postgresRepo.NewULIDGenerator()

	assetUC := usecase.NewAssetUseCase(repos.txManager, repos.assets, repos.mappings, repos.outbox, idGen, nil, log)
	capitalizeUC := usecase.NewCapitalizationUseCase(repos.txManager, repos.assets, repos.mappings, repos.journal, repos.outbox, idGen, nil, m, log)
	lifecycleUC := usecase.NewLifecycleUseCase(repos.txManager, repos.assets, repos.outbox, idGen, nil, m, log)
	depreciationUC := usecase.NewDepreciationUseCase(
		repos.txManager, repos.assets, repos.mappings, repos.journal, repos.postings, repos.outbox,
		idGen, repos.retrier, nil, locker, m, log,
		usecase.DepreciationConfig{
			Concurrency:  cfg.PostingConcurrency,
			AssetTimeout: cfg.PostingAssetTimeout,
			LockTTL:      cfg.BatchLockTTL,
		},
	)
	disposalUC := usecase.NewDisposalUseCase(repos.txManager, repos.assets, repos.mappings, repos.journal, repos.disposals, repos.outbox, idGen, nil, m, log)
	recalcUC := usecase.NewRecalculationUseCase(repos.txManager, repos.assets, repos.outbox, idGen, nil, m, log)
	ledgerUC := usecase.NewLedgerUseCase(repos.ledger, m)

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	routerCfg := httpAdapter.RouterConfig{
		AssetHandler:        handler.NewAssetHandler(assetUC, capitalizeUC, lifecycleUC),
		DepreciationHandler: handler.NewDepreciationHandler(depreciationUC),
		DisposalHandler:     handler.NewDisposalHandler(disposalUC, assetUC),
		OrganisationHandler: handler.NewOrganisationHandler(recalcUC),
		LedgerHandler:       handler.NewLedgerHandler(ledgerUC),
		HealthHandler:       handler.NewHealthHandler(deps...),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         a.rateLimiter,
		Metrics:             m,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:              log,
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func postgresRepositories(pool *pgxpool.Pool, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) repositories {
	retry := postgresRepo.DefaultRetryConfig
	retry.MaxRetries = cfg.TransactionMaxRetries

	return repositories{
		txManager: postgresRepo.NewTxManager(pool).WithLockTimeout(cfg.DatabaseLockTimeout),
		assets:    postgresRepo.NewAssetRepository(pool),
		mappings:  postgresRepo.NewAccountMappingRepository(pool),
		journal:   postgresRepo.NewJournalRepository(pool),
		postings:  postgresRepo.NewPostingRepository(pool),
		disposals: postgresRepo.NewDisposalRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		retrier:   postgresRepo.NewRetrierWithConfig(retry, m, log),
	}
}

func redisPing(client goredis.UniversalClient) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
