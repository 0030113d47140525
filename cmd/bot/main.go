package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutritrack/nutrition-bot/internal/bot"
	"github.com/nutritrack/nutrition-bot/internal/database"
	"github.com/nutritrack/nutrition-bot/internal/health"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/idempotency"
	"github.com/nutritrack/nutrition-bot/internal/jobs"
	jobhandlers "github.com/nutritrack/nutrition-bot/internal/jobs/handlers"
	"github.com/nutritrack/nutrition-bot/internal/lifecycle"
	"github.com/nutritrack/nutrition-bot/internal/middleware"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/progress"
	"github.com/nutritrack/nutrition-bot/internal/ratelimit"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/state"
	"github.com/nutritrack/nutrition-bot/internal/user"
	"github.com/nutritrack/nutrition-bot/internal/usercache"
	"github.com/nutritrack/nutrition-bot/pkg/config"
	"github.com/nutritrack/nutrition-bot/pkg/graceful"
	"github.com/nutritrack/nutrition-bot/pkg/logger"
	"github.com/nutritrack/nutrition-bot/pkg/metrics"
	pkgredis "github.com/nutritrack/nutrition-bot/pkg/redis"

	_ "github.com/lib/pq"
)

const (
	stateTTL             = time.Hour
	stateCleanupInterval = 10 * time.Minute
	cleanupInterval      = time.Hour
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	defer logger.Flush(2 * time.Second)

	log.Info("starting nutrition bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
	)

	config.Watch(v, log, func(updated config.Config) {
		log.Info("configuration updated; restart to apply transport changes")
	})

	db, err := openDatabase(ctx, *cfg)
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(ctx, pkgredis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolTimeout:  cfg.Redis.PoolTimeout,
		IdleTimeout:  cfg.Redis.IdleTimeout,
	})
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	catalog, err := i18n.LoadFromDir(cfg.I18n.Dir, cfg.I18n.DefaultLanguage)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		os.Exit(1)
	}

	stateStorage := state.NewRedisStorage(redisClient.Client, log)
	fsm := state.NewStateMachine(stateStorage, log, redisClient.Client)

	userRepo := repository.NewUserRepository(db, log)
	goalRepo := repository.NewGoalRepository(db, log)
	mealRepo := repository.NewMealRepository(db, log)

	userService := user.NewService(userRepo, usercache.NewCache(pkgredis.NewMetricsClient(redisClient)), log)
	progressService := progress.NewService(goalRepo, mealRepo, log)

	estimatorOpts := []nutrition.Option{nutrition.WithModel(cfg.OpenAI.Model)}
	if cfg.OpenAI.Timeout > 0 {
		estimatorOpts = append(estimatorOpts, nutrition.WithTimeout(cfg.OpenAI.Timeout))
	}
	estimator := nutrition.NewClient(cfg.OpenAI.APIKey, log, estimatorOpts...)

	idempotencyManager := idempotency.NewManager(idempotency.NewRedisStore(redisClient.Client, log), log)

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(redisClient.Client, log),
			ratelimit.NewMemoryLimiter(log),
			log,
		)
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), log)
	}

	botDeps := bot.Dependencies{
		Users:     userService,
		Goals:     goalRepo,
		Meals:     mealRepo,
		Progress:  progressService,
		Estimator: estimator,
		Catalog:   catalog,
	}

	b, err := bot.New(*cfg, log, db, fsm, idempotencyManager, rateLimitMw, botDeps)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	go state.NewCleaner(redisClient.Client, stateStorage, log, stateTTL, stateCleanupInterval).Run(ctx)
	go idempotency.NewCleaner(redisClient.Client, log, cleanupInterval).Run(ctx)
	go ratelimit.NewCleaner(redisClient.Client, log, cleanupInterval).Run(ctx)
	go metrics.NewStateCollector(fsm).Run(ctx)

	if cfg.Jobs.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		worker := jobs.NewWorker(redisOpt, cfg.Jobs.Queues, log)
		worker.RegisterHandler(jobs.TaskTypeDailyDigest, jobhandlers.NewDailyDigestHandler(
			userService, goalRepo, mealRepo, b.Telebot(), catalog, log,
		))

		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()

		scheduler := jobs.NewScheduler(redisOpt, log)
		if err := scheduler.RegisterTasks(); err != nil {
			log.Error("failed to register scheduled tasks", slog.Any("error", err))
			os.Exit(1)
		}
		scheduler.Run()

		shutdown.Register("jobs worker", func(context.Context) error {
			worker.Shutdown()
			return nil
		})
		shutdown.Register("jobs scheduler", func(context.Context) error {
			scheduler.Shutdown()
			return nil
		})
	}

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	httpServer := newHTTPServer(*cfg, log, checker)
	go func() {
		if err := httpServer.ListenAndServe(ctx); err != nil {
			log.Error("http server terminated", slog.Any("error", err))
		}
	}()

	go b.Start()
	log.Info("nutrition bot is up")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("nutrition bot stopped")
}

func openDatabase(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func newHTTPServer(cfg config.Config, log *slog.Logger, checker *health.Checker) *graceful.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	handler := logger.Middleware(middleware.New(log)(mux))

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return graceful.NewServer(log, srv, cfg.Server.ShutdownTimeout)
}
