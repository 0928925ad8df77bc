package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron"

	attributionservice "magnolia/contexts/commerce-attribution/attribution-service"
	attributionpostgres "magnolia/contexts/commerce-attribution/attribution-service/adapters/postgres"
	clickservice "magnolia/contexts/commerce-attribution/click-service"
	clickpostgres "magnolia/contexts/commerce-attribution/click-service/adapters/postgres"
	"magnolia/contexts/commerce-attribution/click-service/adapters/ratelimit"
	webhookservice "magnolia/contexts/commerce-attribution/webhook-service"
	webhookpostgres "magnolia/contexts/commerce-attribution/webhook-service/adapters/postgres"
	fulfillmentservice "magnolia/contexts/match-fulfillment/fulfillment-service"
	"magnolia/contexts/match-fulfillment/fulfillment-service/adapters/commerce"
	fulfillmentpostgres "magnolia/contexts/match-fulfillment/fulfillment-service/adapters/postgres"
	matchservice "magnolia/contexts/match-fulfillment/match-service"
	"magnolia/contexts/match-fulfillment/match-service/adapters/postcheck"
	matchpostgres "magnolia/contexts/match-fulfillment/match-service/adapters/postgres"
	cronservice "magnolia/contexts/operations/cron-service"
	cronpostgres "magnolia/contexts/operations/cron-service/adapters/postgres"
	"magnolia/contexts/operations/cron-service/adapters/social"
	cronworkers "magnolia/contexts/operations/cron-service/application/workers"
	notificationservice "magnolia/contexts/operations/notification-service"
	"magnolia/contexts/operations/notification-service/adapters/logtransport"
	notificationpostgres "magnolia/contexts/operations/notification-service/adapters/postgres"
	"magnolia/internal/platform/config"
	"magnolia/internal/platform/db"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	cron     cronservice.Module
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, modules, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(modules, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, modules, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		cron:     modules.Cron,
		logger:   logger,
	}, nil
}

// buildModules wires every module against postgres and connects the
// cross-module ports through the bridges in this package.
func buildModules(cfg config.Config, logger *slog.Logger) (*db.Postgres, httpserver.Modules, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, httpserver.Modules{}, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, httpserver.Modules{}, err
	}

	location, err := time.LoadLocation(cfg.CronTimezone)
	if err != nil {
		_ = pg.Close()
		return nil, httpserver.Modules{}, err
	}

	directoryRepo := platformdirectory.NewRepository(pg.DB, logger)
	matchRepo := matchpostgres.NewRepository(pg.DB, logger)

	notificationModule := notificationservice.NewModule(notificationservice.Dependencies{
		Notifications: notificationpostgres.NewRepository(pg.DB, logger),
		Transport:     logtransport.Transport{Logger: logger},
		Clock:         notificationpostgres.SystemClock{},
		IDs:           notificationpostgres.UUIDGenerator{},
		Logger:        logger,
	})
	notifier := NotifierBridge{Notifications: notificationModule.Enqueue}

	gateway := commerce.NewGateway(cfg.CommerceTimeout, cfg.DiscountPercent, logger)
	fulfillmentModule := fulfillmentservice.NewModule(fulfillmentservice.Dependencies{
		Records:   fulfillmentpostgres.NewRepository(pg.DB, logger),
		Discounts: fulfillmentpostgres.NewDiscountRepository(pg.DB, logger),
		Shipments: fulfillmentpostgres.NewShipmentRepository(pg.DB, logger),
		Gateway:   gateway,
		Matches:   FulfillmentMatchBridge{Matches: matchRepo},
		Directory: directoryRepo,
		Clock:     fulfillmentpostgres.SystemClock{},
		IDs:       fulfillmentpostgres.UUIDGenerator{},
		Logger:    logger,
	})

	matchModule := matchservice.NewModule(matchservice.Dependencies{
		Matches:         matchRepo,
		Deliverables:    matchRepo,
		Directory:       directoryRepo,
		Fulfillment:     FulfillmentRunnerBridge{Runner: fulfillmentModule.Runner},
		Notifier:        notifier,
		Posts:           postcheck.NewHTTPChecker(cfg.CommerceTimeout),
		Clock:           matchpostgres.SystemClock{},
		Codes:           matchpostgres.CampaignCodeGenerator{},
		EnabledChannels: cfg.NotificationChannels,
		Logger:          logger,
	})

	webhookModule := webhookservice.NewModule(webhookservice.Dependencies{
		Orders:          webhookpostgres.NewRepository(pg.DB, logger),
		Refunds:         webhookpostgres.NewRefundRepository(pg.DB, logger),
		Matches:         WebhookMatchBridge{Matches: matchRepo},
		Fulfillment:     FulfillmentMarkerBridge{Fulfilled: fulfillmentModule.MarkFulfilled},
		Rescheduler:     RescheduleBridge{Reschedule: matchModule.Handler.Reschedule},
		Notifier:        notifier,
		Directory:       directoryRepo,
		Stores:          directoryRepo,
		Clock:           webhookpostgres.SystemClock{},
		EnabledChannels: cfg.NotificationChannels,
		Logger:          logger,
	})

	clickModule := clickservice.NewModule(clickservice.Dependencies{
		Clicks:    clickpostgres.NewRepository(pg.DB, logger),
		Matches:   ClickMatchBridge{Matches: matchRepo},
		Directory: directoryRepo,
		Products:  gateway,
		Limiter:   ratelimit.NewFixedWindowLimiter(cfg.ClickRateLimitPerMinute, time.Minute),
		Clock:     clickpostgres.SystemClock{},
		IDs:       clickpostgres.UUIDGenerator{},
		HomeURL:   cfg.HomeURL,
		Logger:    logger,
	})

	attributionModule := attributionservice.NewModule(attributionservice.Dependencies{
		Matches:     AttributionMatchBridge{Matches: matchRepo},
		Stats:       attributionpostgres.NewStatsRepository(pg.DB, logger),
		Redemptions: attributionpostgres.NewRedemptionRepository(pg.DB, logger),
		Directory:   directoryRepo,
		Clock:       attributionpostgres.SystemClock{},
		IDs:         attributionpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	syncer := social.NoopSyncer{Logger: logger}
	cronModule := cronservice.NewModule(cronservice.Dependencies{
		Locks:    cronpostgres.NewLockRepository(pg.DB, logger),
		Clock:    cronpostgres.SystemClock{},
		TTL:      cfg.CronLockTTL,
		Location: location,
		Secret:   cfg.CronSecret,
		Logger:   logger,
		Jobs: []cronworkers.SubJob{
			{Name: cronworkers.JobResyncProfiles, Run: func(ctx context.Context) (map[string]int, error) {
				synced, err := syncer.Resync(ctx)
				return map[string]int{"synced": synced}, err
			}},
			{Name: cronworkers.JobVerifyDeliverables, Run: func(ctx context.Context) (map[string]int, error) {
				report, err := matchModule.Verifier.RunOnce(ctx)
				return map[string]int{
					"checked":         report.Checked,
					"repost_required": report.RepostRequired,
					"reminders":       report.Reminders,
				}, err
			}},
			{Name: cronworkers.JobReconcileFulfillments, Run: func(ctx context.Context) (map[string]int, error) {
				report, err := fulfillmentModule.Reconciler.RunOnce(ctx)
				return map[string]int{
					"scanned": report.Scanned,
					"clean":   report.Clean,
					"failed":  report.Failed,
				}, err
			}},
			{Name: cronworkers.JobFlushNotifications, Run: func(ctx context.Context) (map[string]int, error) {
				report, err := notificationModule.Dispatcher.RunOnce(ctx)
				return map[string]int{
					"selected": report.Selected,
					"sent":     report.Sent,
					"failed":   report.Failed,
				}, err
			}},
		},
	})

	return pg, httpserver.Modules{
		Match:         matchModule,
		Webhooks:      webhookModule,
		Clicks:        clickModule,
		Attribution:   attributionModule,
		Notifications: notificationModule,
		Cron:          cronModule,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run fires the daily composite hourly; the timezone gate and the lock
// make every off-window or concurrent firing a no-op.
func (w *WorkerApp) Run(ctx context.Context) error {
	scheduler := cron.New()
	err := scheduler.AddFunc("0 0 * * * *", func() {
		if _, err := w.cron.Orchestrator.RunDaily(ctx); err != nil {
			w.logger.Error("daily cron run failed",
				"event", "bootstrap_daily_cron_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		return err
	}

	scheduler.Start()
	defer scheduler.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	<-ctx.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
