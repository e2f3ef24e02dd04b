package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/segyhp/tenant-billing/internal/cache"
	"github.com/segyhp/tenant-billing/internal/config"
	"github.com/segyhp/tenant-billing/internal/repository"
	"github.com/segyhp/tenant-billing/internal/service"
	"github.com/segyhp/tenant-billing/pkg/logger"
)

// reminderTimeout bounds a single reminder run
const reminderTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.LogFormat()})
	lg.Info().Msg("starting billing scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			lg.Fatal().Err(err).Msg("invalid redis url")
		}
		redisClient = redis.NewClient(opts)
	} else {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	defer redisClient.Close()

	billingService := service.NewBillingService(
		repository.NewCompanyRepository(db),
		repository.NewPaymentRepository(db),
		cache.NewCompanySnapshot(redisClient, cfg.Business.SnapshotCacheTTL),
		cfg.BillingLocation(),
		service.WithLogger(lg),
	)

	c := newCron(cfg, lg)

	if err := setupCronJobs(c, cfg, billingService, lg); err != nil {
		lg.Fatal().Err(err).Msg("failed to schedule jobs")
	}

	c.Start()
	lg.Info().Str("spec", cfg.Scheduler.ReminderSpec).Msg("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("shutting down scheduler")
	<-c.Stop().Done()
	lg.Info().Msg("scheduler stopped")
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct {
	lg zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.lg.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.lg.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func newCron(cfg *config.Config, lg zerolog.Logger) *cron.Cron {
	logger := cronLogger{lg: lg.With().Str("component", "cron").Logger()}

	return cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.SchedulerLocation()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, billingService *service.BillingService, lg zerolog.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()

		lg.Info().Msg("running payment reminder job")
		if _, err := billingService.RunReminders(ctx); err != nil {
			lg.Error().Err(err).Msg("payment reminder job failed")
		}
	})
	return err
}
