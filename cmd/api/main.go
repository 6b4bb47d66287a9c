package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	v1 "github.com/kanaksh-py/startup-backend/cmd/api/router/v1"
	"github.com/kanaksh-py/startup-backend/internal/config"
	cacheAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/cache/adapter"
	cacheport "github.com/kanaksh-py/startup-backend/internal/infrastructure/cache/port"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/database"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/identity"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/logger"
	pubsubAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/adapter"
	pubsubport "github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/port"
	"github.com/kanaksh-py/startup-backend/internal/infrastructure/realtime"
	activityAdapter "github.com/kanaksh-py/startup-backend/internal/pkg/activity/persistence/repository/adapter"
	activityHTTP "github.com/kanaksh-py/startup-backend/internal/pkg/activity/presentation/http"
	chatAdapter "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/adapter"
	chatHTTP "github.com/kanaksh-py/startup-backend/internal/pkg/chat/presentation/http"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
	profileUsecase "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/usecase"
	profileAdapter "github.com/kanaksh-py/startup-backend/internal/pkg/profile/persistence/repository/adapter"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Warn().Err(err).Msg(".env could not be loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
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

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if rdb, err = cacheAdapter.NewRedisClient(ctx, cfg.Redis.URL); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	}

	verifier, err := identity.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("identity gate misconfigured")
	}

	relay, err := newRelay(cfg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up relay")
	}
	if relay != nil {
		defer relay.Close()
	}

	profiles, err := newProfileResolver(pool, newCache(rdb), cfg.Chat.ProfileCacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up profile resolver")
	}

	router := realtime.NewRouter(relay, log)
	defer router.Close()
	go func() {
		if err := router.RunRelay(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("relay subscription ended")
		}
	}()

	chatRepo := chatAdapter.NewPgChatRepository(pool)
	ledgers := activityAdapter.NewPgLedgerRepository(pool)

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(log))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r,
		chatHTTP.Dependencies{
			Repo:     chatRepo,
			Legacy:   chatRepo,
			Profiles: profiles,
			Router:   router,
			Verifier: verifier,
			Index:    cfg.Chat.ConversationIndex,
			Log:      log,
		},
		activityHTTP.Dependencies{
			Ledgers:  ledgers,
			Posts:    ledgers,
			Verifier: verifier,
			Log:      log,
		},
	)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("relay", cfg.Relay.Backend).
			Str("conversation_index", cfg.Chat.ConversationIndex).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newCache(rdb *redis.Client) cacheport.Cache {
	if rdb == nil {
		return cacheAdapter.NewMemoryCache()
	}
	return cacheAdapter.NewRedisCache(rdb, "startup-backend:")
}

func newRelay(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (pubsubport.Relay, error) {
	switch cfg.Relay.Backend {
	case config.RelayRedis:
		if rdb == nil {
			return nil, errors.New("RELAY_BACKEND=redis requires REDIS_URL")
		}
		return pubsubAdapter.NewRedisRelay(rdb, cfg.Relay.Channel, log), nil
	case config.RelayNats:
		return pubsubAdapter.NewNatsRelay(cfg.Relay.NatsURL, cfg.Relay.Channel, log)
	default:
		return nil, nil
	}
}

func newProfileResolver(pool *pgxpool.Pool, cache cacheport.Cache, ttl time.Duration, log zerolog.Logger) (*profileUsecase.ResolveProfileUseCase, error) {
	startups, err := profileAdapter.NewPgProfileRepository(pool, profile.KindStartup)
	if err != nil {
		return nil, err
	}
	incubators, err := profileAdapter.NewPgProfileRepository(pool, profile.KindIncubator)
	if err != nil {
		return nil, err
	}
	return profileUsecase.NewResolveProfileUseCase(cache, ttl, log, startups, incubators), nil
}
