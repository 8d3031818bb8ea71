package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/follownet/backend/internal/api"
	authservice "github.com/follownet/backend/internal/auth/service"
	"github.com/follownet/backend/internal/common/clock"
	"github.com/follownet/backend/internal/common/config"
	"github.com/follownet/backend/internal/common/constants"
	"github.com/follownet/backend/internal/common/crypto"
	"github.com/follownet/backend/internal/common/db"
	commonhttp "github.com/follownet/backend/internal/common/http"
	"github.com/follownet/backend/internal/common/httpmetrics"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/server"
	graphservice "github.com/follownet/backend/internal/graph/service"
	postrepo "github.com/follownet/backend/internal/post/repository"
	postservice "github.com/follownet/backend/internal/post/service"
	userrepo "github.com/follownet/backend/internal/user/repository"
	userservice "github.com/follownet/backend/internal/user/service"
)

const serviceName = "api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog, logErr := logger.New("", serviceName, "INFO")
		if logErr != nil {
			panic(logErr)
		}
		bootstrapLog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	users := userrepo.NewPgRepository(pool)
	posts := postrepo.NewPgRepository(pool)

	clk := clock.NewRealClock()
	hasher := &crypto.BcryptHasher{}
	idGen := crypto.NewUUIDGenerator()

	authSvc := authservice.New(users, hasher, cfg.JWTSecret, cfg.TokenTTL, clk, log)
	graphSvc := graphservice.New(users, log)
	userSvc := userservice.NewResolutionService(users, posts, log)
	postSvc := postservice.New(posts, users, idGen, clk, log)

	handler, err := api.NewHandler(authSvc, graphSvc, userSvc, postSvc, cfg.RequestTimeout, log)
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	mux := handler.Routes()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", commonhttp.HealthHandler(log))

	chain := commonhttp.RecoveryMiddleware(log)(
		commonhttp.TraceIDMiddleware(
			httpmetrics.Middleware(
				commonhttp.MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)(
					api.AuthMiddleware(authSvc)(mux),
				),
			),
		),
	)

	srv := server.New(server.DefaultConfig(cfg.HTTPPort), chain)

	server.StartWithGracefulShutdown(srv, log, serviceName, []server.ShutdownHook{
		func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
}
