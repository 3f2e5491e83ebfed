package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/phrazzld/quill-api/internal/api"
	apiMiddleware "github.com/phrazzld/quill-api/internal/api/middleware"
	"github.com/phrazzld/quill-api/internal/config"
	"github.com/phrazzld/quill-api/internal/domain/srs"
	"github.com/phrazzld/quill-api/internal/events"
	"github.com/phrazzld/quill-api/internal/platform/cache"
	"github.com/phrazzld/quill-api/internal/platform/gemini"
	"github.com/phrazzld/quill-api/internal/platform/postgres"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/service/card_review"
	"github.com/phrazzld/quill-api/internal/task"
	"github.com/robfig/cron/v3"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	jwtService  auth.JWTService
	limiter     *apiMiddleware.RateLimiter
	taskRunner  *task.TaskRunner
	maintenance *cron.Cron

	handlers handlers
}

// handlers are the HTTP handlers mounted by the router.
type handlers struct {
	auth    *api.AuthHandler
	decks   *api.DeckHandler
	reviews *api.ReviewHandler
	journal *api.JournalHandler
}

// newApplication builds every store and service, starts the task runner and
// registers the maintenance jobs.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	cardStore := postgres.NewPostgresCardStore(db, logger)
	stateStore := postgres.NewPostgresReviewStateStore(db, logger)
	logStore := postgres.NewPostgresReviewLogStore(db, logger)
	journalStore := postgres.NewPostgresJournalStore(db, logger)
	analysisStore := postgres.NewPostgresAnalysisStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	forecastCache, err := app.setupForecastCache(ctx)
	if err != nil {
		return nil, err
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:      cfg.Scheduler.MinEaseFactor,
		GraduatingInterval: cfg.Scheduler.GraduatingInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler parameters: %w", err)
	}
	scheduler, err := srs.NewServiceWithParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	userService, err := service.NewUserService(userStore, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	deckService, err := service.NewDeckService(db, deckStore, cardStore, stateStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	reviewService, err := card_review.NewCardReviewService(
		db, cardStore, stateStore, logStore, scheduler, cfg.Scheduler.DueCardsLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card review service: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	journalService, err := service.NewJournalService(
		db, journalStore, analysisStore, userStore, emitter, forecastCache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal service: %w", err)
	}
	proficiencyService, err := service.NewProficiencyService(
		analysisStore,
		forecastCache,
		int(cfg.Forecast.DefaultHorizonDays),
		int(cfg.Forecast.MaxHorizonDays),
		logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create proficiency service: %w", err)
	}

	analyzer, err := gemini.NewGeminiAnalyzer(ctx, logger.With(slog.String("component", "analyzer")), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal analyzer: %w", err)
	}
	factory, err := task.NewEntryAnalysisTaskFactory(journalService, analyzer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis task factory: %w", err)
	}

	registry := task.NewRegistry()
	registry.Register(task.TaskTypeEntryAnalysis, factory.Rehydrate)

	app.taskRunner = task.NewTaskRunner(taskStore, registry, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: cfg.Task.StuckTaskAge,
	}, logger)
	emitter.RegisterHandler(task.TaskTypeEntryAnalysis,
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger))

	if err := app.taskRunner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	app.limiter = apiMiddleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTimeout)

	app.maintenance, err = scheduleMaintenance(cfg, logger, app.taskRunner, app.limiter)
	if err != nil {
		app.taskRunner.Stop()
		return nil, err
	}

	app.handlers = handlers{
		auth: api.NewAuthHandler(userService, app.jwtService,
			time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute),
		decks:   api.NewDeckHandler(deckService),
		reviews: api.NewReviewHandler(reviewService),
		journal: api.NewJournalHandler(journalService, proficiencyService),
	}

	logger.Info("application initialized")
	return app, nil
}

// setupForecastCache connects to Redis, or returns a no-op cache when no
// Redis URL is configured.
func (app *application) setupForecastCache(ctx context.Context) (cache.ForecastCache, error) {
	if app.config.Cache.RedisURL == "" {
		app.logger.Info("forecast cache disabled")
		return cache.NoopForecastCache{}, nil
	}

	c, client, err := cache.NewRedisForecastCache(ctx, app.config.Cache.RedisURL,
		app.config.Cache.ForecastTTL, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client
	return c, nil
}

// maintenanceRunner is the part of the task runner used by the sweep job.
type maintenanceRunner interface {
	RequeueStuckTasks(ctx context.Context) (int, error)
}

// maintenanceLimiter is the part of the rate limiter used by the cleanup job.
type maintenanceLimiter interface {
	Cleanup() int
}

// scheduleMaintenance registers the stuck-task sweep and the limiter cleanup
// and starts the scheduler.
func scheduleMaintenance(
	cfg *config.Config,
	logger *slog.Logger,
	runner maintenanceRunner,
	limiter maintenanceLimiter,
) (*cron.Cron, error) {
	log := logger.With(slog.String("component", "maintenance"))
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelError))),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	if _, err := c.AddFunc(cfg.Task.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := runner.RequeueStuckTasks(ctx); err != nil {
			log.Error("stuck task sweep failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid task sweep schedule %q: %w", cfg.Task.SweepSchedule, err)
	}

	if _, err := c.AddFunc(cfg.RateLimit.CleanupSchedule, func() {
		if removed := limiter.Cleanup(); removed > 0 {
			log.Debug("dropped idle rate limit buckets", slog.Int("count", removed))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid rate limit cleanup schedule %q: %w", cfg.RateLimit.CleanupSchedule, err)
	}

	c.Start()
	return c, nil
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources in reverse order of creation.
func (app *application) cleanup() {
	if app.maintenance != nil {
		<-app.maintenance.Stop().Done()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
