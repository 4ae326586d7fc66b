// Package server initializes and runs the application: it wires the
// database, the redis client, the services and the HTTP transport, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/auth"
	"github.com/onomatheater/blog-api/internal/server/cache"
	"github.com/onomatheater/blog-api/internal/server/config"
	"github.com/onomatheater/blog-api/internal/server/httpapi"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
	"github.com/onomatheater/blog-api/internal/server/services"
	"github.com/onomatheater/blog-api/internal/server/tokenstore"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	rdb    *redis.Client
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	codec, err := auth.NewCodec(cfg.SecretKey, cfg.SigningAlgorithm,
		cfg.AccessTokenValidity, cfg.RefreshTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	cacheClient := cache.New(rdb, logger)
	store := tokenstore.NewRedisStore(rdb, cfg.RefreshTokenValidity)

	authService := services.NewAuthService(db, rm, codec, store, logger)
	sessions := services.NewSessionResolver(db, rm, codec)
	postService := services.NewPostService(db, rm, cacheClient, cfg.CacheTTL, logger)
	commentService := services.NewCommentService(db, rm, cacheClient, cfg.CacheTTL, logger)

	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, db, cacheClient,
		authService, sessions, postService, commentService, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
		server: srv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until a shutdown signal arrives, then closes the redis
// client and the database pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
	}

	if err := app.rdb.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "app stopped")
}
