package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-service/internal/app/middleware"
	"review-service/internal/config"
	"review-service/internal/db"
	"review-service/internal/handler"
	"review-service/internal/logger"
	"review-service/internal/repository"
	"review-service/internal/service/assignment"
	"review-service/internal/service/pullrequest"
	"review-service/internal/service/team"
	"review-service/internal/service/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App wires configuration, storage, services and the HTTP server.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	server *http.Server
}

// NewApp builds the application: it runs migrations, connects the pool
// and assembles the full handler chain.
func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewLogger("review-service", cfg.Logger.Level, cfg.Logger.Encoding, cfg.Logger.Development)

	dsn := cfg.DSN()

	if err := db.RunMigrations(dsn); err != nil {
		log.Error("failed to run migrations", zap.Error(err))
		return nil, err
	}
	log.Info("migrations applied")

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Error("failed to parse database config", zap.Error(err))
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		log.Error("failed to ping database", zap.Error(err))
		return nil, err
	}
	log.Info("connected to database")

	ctxManager := db.NewContextManager(pool, log)

	teamRepo := repository.NewTeamRepository(ctxManager)
	userRepo := repository.NewUserRepository(ctxManager)
	prRepo := repository.NewPRRepository(ctxManager)

	assignStrategy := assignment.NewStrategy()

	teamService := team.NewService(teamRepo, userRepo, ctxManager)
	userService := user.NewService(userRepo, prRepo, teamRepo, ctxManager, assignStrategy)
	prService := pullrequest.NewService(prRepo, userRepo, ctxManager, assignStrategy)

	teamHandler := handler.NewTeamHandler(teamService, log)
	userHandler := handler.NewUserHandler(userService, log)
	prHandler := handler.NewPRHandler(prService, log)
	statsHandler := handler.NewStatsHandler(prService, log)
	healthHandler := handler.NewHealthHandler()
	docsHandler := handler.NewDocsHandler("openapi.yml")

	mux := http.NewServeMux()

	mux.HandleFunc("POST /team/add", teamHandler.AddTeam)
	mux.HandleFunc("GET /team/get", teamHandler.GetTeam)
	mux.HandleFunc("POST /team/deactivateUsers", userHandler.BulkDeactivate)

	mux.HandleFunc("POST /users/setIsActive", userHandler.SetIsActive)
	mux.HandleFunc("GET /users/getReview", userHandler.GetReview)

	mux.HandleFunc("POST /pullRequest/create", prHandler.CreatePR)
	mux.HandleFunc("POST /pullRequest/merge", prHandler.MergePR)
	mux.HandleFunc("POST /pullRequest/reassign", prHandler.ReassignReviewer)

	mux.HandleFunc("GET /stats/assignments", statsHandler.GetAssignmentStats)

	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.HandleFunc("GET /docs", docsHandler.ServeSwaggerUI)
	mux.HandleFunc("GET /openapi.yml", docsHandler.ServeOpenAPI)

	// Middleware chain: Recovery -> RequestID -> Logging
	var h http.Handler = mux
	h = middleware.Logging(log)(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(log)(h)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:    cfg,
		logger: log,
		pool:   pool,
		server: server,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting HTTP server", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	a.pool.Close()
	a.logger.Info("server exited gracefully")
	return nil
}

// Logger exposes the application logger for main's final sync.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
