package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kanaksh-py/startup-backend/internal/config"
	alertAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/alert/adapter"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/database"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/logger"
	queueAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/queue/adapter"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/task"
	"github.com/kanaksh-py/startup-backend/internal/pkg/activity/application/usecase"
	activityAdapter "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/adapter"
)

func main() {
	runOnce := pflag.Bool("run-once", false, "apply the lifecycle sweep immediately and exit")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Warn().Err(err).Msg(".env could not be loaded")
	}
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connectCtx, cfg.Database.URL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	ledgers := activityAdapter.NewPgLedgerRepository(pool)

	client, err := queueAdapter.NewAsynqClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue client")
	}
	defer client.Close()

	sweep := usecase.NewDeactivateDormantUseCase(ledgers, client, log)
	sweep.WarningQueue = task.LifecycleQueue

	if *runOnce {
		out, err := sweep.Execute(ctx)
		if err != nil {
			log.Fatal().Err(err).Int64("deactivated", out.Deactivated).Msg("lifecycle sweep failed")
		}
		log.Info().Int64("deactivated", out.Deactivated).Int("warned", out.Warned).
			Int("enqueued", out.Enqueued).Msg("lifecycle sweep applied")
		return
	}

	srv, err := queueAdapter.NewAsynqServer(queueAdapter.ServerConfig{
		RedisURL:    cfg.Redis.URL,
		Concurrency: cfg.Queue.Concurrency,
		Queues:      cfg.Queue.Queues,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue server")
	}
	task.RegisterDeactivateDormantTask(srv, sweep, log)
	task.RegisterSendWarningTask(srv, usecase.NewSendWarningUseCase(ledgers, alertAdapter.NewLogSender(log)), log)

	scheduler, err := queueAdapter.NewAsynqScheduler(cfg.Redis.URL, cfg.Lifecycle.Location, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	entryID, err := task.ScheduleDeactivateDormant(scheduler, cfg.Lifecycle.Cron)
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Lifecycle.Cron).Msg("failed to schedule lifecycle sweep")
	}
	log.Info().Str("entry_id", entryID).Str("cron", cfg.Lifecycle.Cron).
		Str("tz", cfg.Lifecycle.Location.String()).Msg("lifecycle sweep scheduled")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
	log.Info().Msg("worker stopped")
}
