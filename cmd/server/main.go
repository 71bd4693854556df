// @title           Retail Back-Office API
// @version         1.0
// @description     Authentication, session verification and user administration for the retail back office.
// @BasePath        /
// @schemes         http https
//
// @securityDefinitions.apikey BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailhub/backoffice/internal/api"
	"github.com/retailhub/backoffice/internal/api/handler"
	"github.com/retailhub/backoffice/internal/core/service"
	"github.com/retailhub/backoffice/internal/infrastructure/config"
	"github.com/retailhub/backoffice/internal/infrastructure/db/mongo"
	"github.com/retailhub/backoffice/internal/infrastructure/db/redis"
	"github.com/retailhub/backoffice/internal/infrastructure/queue"
	"github.com/retailhub/backoffice/pkg/jwtx"
	"github.com/retailhub/backoffice/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Pretty: true, Output: os.Stderr})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "backoffice-api",
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb unavailable")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	events := mongo.NewAuditRepository(db)
	if err := events.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit indexes")
	}

	signer, err := jwtx.NewSigner(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("token signer")
	}
	verifier, err := jwtx.NewVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("token verifier")
	}

	// The dispatcher outlives the request context so queued events are
	// drained after the HTTP server has stopped.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	audit := service.NewAuditService(events, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.QueueSize, audit, logger.Component("audit-dispatcher"))
	dispatcher.Start(workerCtx)

	limiter := redis.NewLoginLimiter(rdb, cfg.Auth.MaxFailures, cfg.Auth.FailureWindow)
	authService := service.NewAuthService(users, signer, limiter, dispatcher, service.AuthOptions{
		TokenTTL:    cfg.Auth.TokenTTL,
		DefaultRole: cfg.Role(),
	}, logger.Component("auth"))
	userService := service.NewUserService(users, authService, dispatcher, logger.Component("users"))

	if cfg.Bootstrap.Enabled() {
		created, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.Name, cfg.Bootstrap.Email, cfg.Bootstrap.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap administrator")
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.Email).Msg("bootstrap administrator created")
		}
	}

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		UserService: userService,
		Verifier:    verifier,
		Health: map[string]handler.Pinger{
			"mongodb": mongo.Pinger{Client: mongoClient},
			"redis":   redis.Pinger{Client: rdb},
		},
		Log:         logger.Component("http"),
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
}
