package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"telegram-support-relay/internal/application"
	"telegram-support-relay/internal/config"
	"telegram-support-relay/internal/domain/model"
	"telegram-support-relay/internal/domain/ports/repository"
	tele "telegram-support-relay/internal/infra/adapters/telegram"
	pg "telegram-support-relay/internal/infra/db/postgres"
	lite "telegram-support-relay/internal/infra/db/sqlite"
	"telegram-support-relay/internal/infra/i18n"
	"telegram-support-relay/internal/infra/logging"
	"telegram-support-relay/internal/infra/memory"
	"telegram-support-relay/internal/infra/metrics"
	red "telegram-support-relay/internal/infra/redis"
	"telegram-support-relay/internal/infra/web"
	"telegram-support-relay/internal/infra/worker"
	"telegram-support-relay/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type storage struct {
	users  repository.UserRepository
	convs  repository.CorrelationRepository
	ping   web.HealthCheck
	close  func()
	driver string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted bodies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.Database.Driver)

	// ---- Storage ----
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	checks := map[string]web.HealthCheck{store.driver: store.ping}
	userRepo := store.users

	// ---- Redis (optional) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		checks["redis"] = redisClient.Ping
		userRepo = red.NewBlockedCacheDecorator(userRepo, redisClient, cfg.Redis.TTL, logger)
		logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("block-status cache enabled")
	}

	var selections repository.SelectionStore = memory.NewSelectionStore()
	if cfg.Session.Store == "redis" {
		selections = red.NewSelectionStore(redisClient)
	}

	// ---- i18n ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Support.Language)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, tr, logger)
	if err != nil {
		return err
	}
	if strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}

	// ---- Use cases ----
	targets, err := model.NewTargets(cfg.Support.PanelTargetID, cfg.Support.RepresentativeTargetID)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	admins := model.NewAdminSet(cfg.Bot.AdminIDs...)
	limiter := rate.NewLimiter(rate.Limit(cfg.Broadcast.RatePerSecond), cfg.Broadcast.Burst)

	userUC := usecase.NewUserUseCase(userRepo, logger)
	convUC := usecase.NewConversationUseCase(store.convs, logger)
	routingUC := usecase.NewRoutingUseCase(userUC, convUC, selections, botAdapter, targets, tr, logger, cfg.Runtime.Dev)
	adminUC := usecase.NewAdminUseCase(userUC, botAdapter, admins, limiter, logger)

	// ---- Background jobs ----
	jobs := worker.NewPool(cfg.Broadcast.JobWorkers, logger)
	jobs.Start(ctx)
	defer jobs.Stop()

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, routingUC, adminUC, jobs, botAdapter, tr, logger)
	if err := facade.RegisterMenus(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to register menu commands")
	}

	// ---- Ops server ----
	srv := web.NewServer(cfg.Admin.Port, checks, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("ops server stopped")
			stop()
		}
	}()

	pollErr := make(chan error, 1)
	go func() { pollErr <- botAdapter.StartPolling(ctx, facade) }()

	logger.Info().
		Str("version", version).
		Str("store", store.driver).
		Str("session_store", cfg.Session.Store).
		Int("admins", len(cfg.Bot.AdminIDs)).
		Msg("support relay running")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-pollErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
		stop()
	}

	botAdapter.StopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		go pg.ReportPoolStats(ctx, pool, 15*time.Second)
		return &storage{
			users:  pg.NewUserRepo(pool),
			convs:  pg.NewCorrelationRepo(pool),
			ping:   pool.Ping,
			close:  pool.Close,
			driver: "postgres",
		}, nil
	default:
		db, err := lite.OpenSQLite(cfg.Database.Path, cfg.Database.MaxConns, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		go lite.ReportPoolStats(ctx, db, 15*time.Second)
		return &storage{
			users: lite.NewUserRepo(db),
			convs: lite.NewCorrelationRepo(db),
			ping:  func(ctx context.Context) error { return lite.Ping(ctx, db) },
			close: func() {
				if err := lite.Close(db); err != nil {
					logger.Warn().Err(err).Msg("sqlite close")
				}
			},
			driver: "sqlite",
		}, nil
	}
}
