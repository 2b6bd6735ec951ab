package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/AlexandruMarc/Easy-Shops/internal/cache"
	"github.com/AlexandruMarc/Easy-Shops/internal/config"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	handler "github.com/AlexandruMarc/Easy-Shops/internal/handler/http"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository/postgres"
	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	"github.com/AlexandruMarc/Easy-Shops/internal/userclient"
	"github.com/AlexandruMarc/Easy-Shops/migrations"
	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
	"github.com/AlexandruMarc/Easy-Shops/pkg/health"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httpclient"
	pkgkafka "github.com/AlexandruMarc/Easy-Shops/pkg/kafka"
	"github.com/AlexandruMarc/Easy-Shops/pkg/middleware"
	"github.com/AlexandruMarc/Easy-Shops/pkg/tracing"
)

// Version is stamped at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

const (
	startupTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	idempotencyTTL  = 24 * time.Hour
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	userDeleted    *pkgkafka.Consumer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeResources(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdown, err := tracing.InitTracer(ctx, cfg.Tracing(Version))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = shutdown
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	// PostgreSQL.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Redis backs the product cache and consumer idempotency when enabled.
	var productCache cache.ProductCache = cache.NoopProductCache{}
	var idempotency pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		productCache = cache.NewRedisProductCache(client, cfg.ProductCacheTTL())
		idempotency = pkgkafka.NewRedisIdempotencyStore(client, config.ServiceName+":events", idempotencyTTL)
		healthHandler.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	// Kafka.
	eventProducer := event.NewProducer(nil, logger)
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		eventProducer = event.NewProducer(a.producer, logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	links := service.NewLinks(cfg.PublicBaseURL, cfg.APIPrefixClean())

	var users *userclient.Client
	if cfg.UserServiceURL != "" {
		breaker := httpclient.NewCircuitBreakerClient(httpclient.New(cfg.UserClient()), cfg.UserBreaker(), logger)
		users = userclient.New(breaker, cfg.UserServiceURL)
		logger.Info("user directory enabled", slog.String("url", cfg.UserServiceURL))
	} else {
		users = userclient.New(nil, "")
	}

	services := handler.Services{
		Images: service.NewImageService(
			postgres.NewImageRepository(pool), productCache, eventProducer, links, cfg.MaxUploadFiles, logger),
		ProfileImages: service.NewProfileImageService(
			postgres.NewProfileImageRepository(pool), users, links, logger),
		Products: service.NewProductService(
			postgres.NewProductRepository(pool), productCache, eventProducer, logger),
	}

	if cfg.KafkaEnabled {
		consumer := event.NewConsumer(services.ProfileImages, logger)
		a.userDeleted = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: event.ConsumerGroup,
			Topic:   event.TopicUserDeleted,
		}, pkgkafka.IdempotentHandler(idempotency, event.TopicUserDeleted, event.ConsumerGroup, consumer.HandleUserDeleted, logger), a.dlq, logger)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    config.ServiceName,
		APIPrefix:      cfg.APIPrefixClean(),
		AuthzEnabled:   cfg.AuthzEnabled,
		MaxUploadFiles: cfg.MaxUploadFiles,
		UploadRPS:      cfg.UploadRateLimitRPS,
		UploadBurst:    cfg.UploadRateLimitBurst,
		TrustedProxies: cfg.TrustedProxyCIDRs,
		CORS:           corsCfg,
		PprofEnabled:   cfg.PprofEnabled,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	}, services, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and the Kafka consumer, then blocks until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.userDeleted != nil {
		go func() {
			if err := a.userDeleted.Start(ctx); err != nil {
				errCh <- fmt.Errorf("user.deleted consumer: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed", slog.String("error", runErr.Error()))
	}

	a.Shutdown()
	return runErr
}

// Shutdown gracefully stops all components within a 10-second deadline.
func (a *App) Shutdown() {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.closeResources(ctx)

	a.logger.Info("application shutdown complete")
}

// closeResources releases everything opened by init, in reverse order.
// It tolerates components that were never created.
func (a *App) closeResources(ctx context.Context) {
	if a.userDeleted != nil {
		if err := a.userDeleted.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka DLQ producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
