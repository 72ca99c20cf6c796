package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	grpchealth "google.golang.org/grpc/health"

	apictx "github.com/dtroode/authgate/internal/api/context"
	grpcRouter "github.com/dtroode/authgate/internal/api/grpc/router"
	grpcServer "github.com/dtroode/authgate/internal/api/grpc/server"
	httpRouter "github.com/dtroode/authgate/internal/api/http/router"
	httpServer "github.com/dtroode/authgate/internal/api/http/server"
	"github.com/dtroode/authgate/internal/config"
	"github.com/dtroode/authgate/internal/database"
	"github.com/dtroode/authgate/internal/health"
	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/metrics"
	"github.com/dtroode/authgate/internal/model"
	"github.com/dtroode/authgate/internal/password"
	"github.com/dtroode/authgate/internal/repository/failover"
	"github.com/dtroode/authgate/internal/repository/memory"
	"github.com/dtroode/authgate/internal/repository/postgres"
	"github.com/dtroode/authgate/internal/server"
	"github.com/dtroode/authgate/internal/service"
	"github.com/dtroode/authgate/internal/token"
)

const (
	shutdownTimeout = 10 * time.Second
	connectBackoff  = 500 * time.Millisecond
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health endpoint",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	logger := logger.New(cfg.LogLevel)

	return serve(cmd.Context(), cfg, logger)
}

func serve(ctx context.Context, cfg *config.Config, logger *logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, session tokens are signed with the publicly known default secret")
	}

	m := metrics.New()

	var (
		durable model.UserStore
		pinger  model.Pinger
	)
	if cfg.DurableStoreConfigured() {
		conn, err := connectDurableStore(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to configure durable store, users are kept in memory only", "error", err)
		} else {
			defer conn.Close()
			durable = postgres.NewUserRepository(conn)
			pinger = conn
		}
	} else {
		logger.Warn("DATABASE_URL is not set, users are kept in memory only")
	}

	userStore := failover.New(durable, memory.NewUserRepository(), m, logger)
	hasher := password.NewBcrypt(cfg.Hash.Cost, cfg.Hash.Workers)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	authService := service.NewAuth(userStore, hasher, tokenManager, m, logger)
	ctxMgr := apictx.NewManager()

	healthServer := grpchealth.NewServer()
	monitor := health.NewMonitor(pinger, healthServer, m, cfg.GRPC.HealthInterval, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := httpRouter.New(authService, pinger, m.Handler(), ctxMgr, cfg.CORS.AllowedOrigins, logger).Register()

	servers := []model.Server{
		httpServer.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port)),
	}
	if cfg.GRPC.Enabled {
		s := grpcRouter.New(healthServer, ctxMgr, logger).Register()
		servers = append(servers, grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port)))
	}

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "name", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "name", s.Name(), "error", err)
				cancel()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "name", s.Name(), "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")

	return nil
}

// connectDurableStore opens the pool, waits for the database and applies
// migrations. Only a malformed DSN is an error: an unreachable database is
// logged and left to the failover store.
func connectDurableStore(ctx context.Context, cfg config.Database, logger *logger.Logger) (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(ctx, cfg.URL, cfg.MaxConns)
	if err != nil {
		return nil, err
	}

	if err := conn.WaitReady(ctx, cfg.ConnectAttempts, connectBackoff); err != nil {
		logger.Warn("durable store is unreachable, falling back to memory until it answers", "error", err)
		return conn, nil
	}

	db := conn.SQLDB()
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Warn("failed to migrate durable store", "error", err)
		return conn, nil
	}

	logger.Info("durable store is ready")
	return conn, nil
}
