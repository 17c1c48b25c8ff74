package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/w8990/album/internal/config"
	"github.com/w8990/album/internal/database"
	handlers "github.com/w8990/album/internal/handler"
	"github.com/w8990/album/internal/mailer"
	"github.com/w8990/album/internal/metrics"
	"github.com/w8990/album/internal/middleware"
	"github.com/w8990/album/internal/repository"
	"github.com/w8990/album/internal/service"
	"github.com/w8990/album/internal/storage"
	"github.com/w8990/album/internal/throttle"
)

const memoryThrottleSize = 100000

// App holds everything main needs to serve and to shut down.
type App struct {
	DB      *database.DB
	Redis   *redis.Client
	Sweeper *service.Sweeper
	Handler http.Handler
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		_ = db.CloseDB()
		return nil, fmt.Errorf("init minio: %w", err)
	}

	checks := map[string]handlers.HealthCheck{
		"database": db.HealthCheck,
		"storage":  minioClient.Ping,
	}

	policy := throttle.Policy{
		Threshold: cfg.Auth.LockoutThreshold,
		Base:      cfg.Auth.LockoutBase,
		Max:       cfg.Auth.LockoutMax,
		Window:    cfg.Auth.LockoutWindow,
	}

	var (
		redisClient *redis.Client
		th          throttle.LoginThrottle
	)
	if cfg.Redis.URL != "" {
		redisClient, err = throttle.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			_ = db.CloseDB()
			return nil, err
		}
		rt := throttle.NewRedisThrottle(redisClient, policy)
		checks["redis"] = rt.Ping
		th = rt
		log.Info("login throttle backed by redis")
	} else {
		th = throttle.NewMemoryThrottle(memoryThrottleSize, policy)
		log.Info("login throttle kept in process")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	services := service.NewService(service.Deps{
		Repo:     repo,
		Tx:       repository.NewTransactor(db.DB),
		Storage:  minioClient,
		Throttle: th,
		Mailer:   mailer.New(cfg.Mail, cfg.Auth.ResetTokenTTL, log),
		Metrics:  m,
		Log:      log,
	}, cfg)

	sweeper, err := service.NewSweeper(services.Session, cfg.Auth.SweepSchedule, log)
	if err != nil {
		closeAll(db, redisClient)
		return nil, fmt.Errorf("init session sweeper: %w", err)
	}

	h := handlers.NewHandlers(services, checks, cfg, log)
	router := handlers.NewRouter(h, handlers.RouterDeps{
		Auth:     middleware.NewAuth(services.Session, log),
		Limiter:  middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst),
		Metrics:  m,
		Gatherer: registry,
	})

	return &App{DB: db, Redis: redisClient, Sweeper: sweeper, Handler: router}, nil
}

// Close releases the connections opened by New.
func (a *App) Close() {
	closeAll(a.DB, a.Redis)
}

func closeAll(db *database.DB, rc *redis.Client) {
	if rc != nil {
		_ = rc.Close()
	}
	if db != nil {
		_ = db.CloseDB()
	}
}
