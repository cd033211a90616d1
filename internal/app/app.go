package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront-assistant/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront-assistant/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront-assistant/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront-assistant/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront-assistant/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront-assistant/internal/infrastructure/storeapi"
	s3Repo "github.com/DRSN-tech/storefront-assistant/internal/repository/minio"
	"github.com/DRSN-tech/storefront-assistant/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront-assistant/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-assistant/internal/repository/redis"
	redisConv "github.com/DRSN-tech/storefront-assistant/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront-assistant/internal/tools"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/clients"
	"github.com/DRSN-tech/storefront-assistant/pkg/closer"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/jitter"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/DRSN-tech/storefront-assistant/pkg/postgres"
	"github.com/DRSN-tech/storefront-assistant/pkg/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupAttempts   = 5
	startupBaseDelay  = 500 * time.Millisecond
	startupMaxDelay   = 5 * time.Second
	pingTimeout       = 5 * time.Second
	topicTimeout      = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	closeForceTimeout = 3 * time.Second
)

// App — собранное приложение: серверы и всё, что нужно закрыть при остановке.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
}

// NewApp поднимает зависимости и собирает граф. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (app *App, err error) {
	cl := closer.NewCloser(closeForceTimeout)
	defer func() {
		if err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if cerr := cl.Close(ctx); cerr != nil {
				log.Warnf("cleanup after failed start: %v", cerr)
			}
		}
	}()

	shutdownTracing, err := tracing.Init(cfg.Tracing, os.Stdout)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("tracing", closer.Func(shutdownTracing))

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	redisClient, err := initRedis(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("redis", func(context.Context) error {
		return redisClient.Close()
	})

	publisher, err := initPublisher(log, cfg, cl)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	images, err := initImageResolver(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	storeAPI := storeapi.NewClient(cfg.StoreAPI)
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.Converter{}, cfg.Redis, log)
	stateRepo := pgdb.NewClientStateRepo(db.Pool, pgdbConv.Converter{})

	sessionUC := usecase.NewSessionUC(stateRepo, log)
	registry, err := tools.NewRegistry(sessionUC, log, tools.Build(tools.UseCases{
		Catalog: usecase.NewCatalogUC(storeAPI, cacheRepo, images, log),
		Orders:  usecase.NewOrderUC(storeAPI, sessionUC, log),
		Admin:   usecase.NewProductAdminUC(storeAPI, cacheRepo, publisher, log),
		Cart:    usecase.NewCartUC(stateRepo, stateRepo, storeAPI, log),
		Session: sessionUC,
	})...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	grpcSrv := v1Grpc.NewGRPCServer(cfg.Grpc, log)
	grpcSrv.RegisterServices(registry)

	router := v1Http.NewRouter(chi.NewRouter(), log)
	router.Init(registry, sessionUC)
	httpSrv := v1Http.NewServer(router.Handler(), cfg.Http)

	return &App{
		cfg:     cfg,
		logger:  log,
		closer:  cl,
		httpSrv: httpSrv,
		grpcSrv: grpcSrv,
	}, nil
}

// Run запускает серверы и блокируется до сигнала или падения одного из них.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Серверы останавливаются первыми: после них никто не трогает хранилища
	a.closer.Add("grpc server", a.grpcSrv.Stop)
	a.closer.Add("http server", a.httpSrv.Stop)

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	var db *postgres.PgDatabase
	err := jitter.Retry(context.Background(), startupAttempts, startupBaseDelay, startupMaxDelay, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		var err error
		db, err = postgres.Connect(ctx, cfg.Db)
		if err != nil {
			logger.Warnf("postgres is not ready: %v", err)
		}
		return err
	})
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func initRedis(logger logger.Logger, cfg *config.Config) (*clients.RedisClient, error) {
	client := clients.NewRedisClient(cfg.Redis)

	err := jitter.Retry(context.Background(), startupAttempts, startupBaseDelay, startupMaxDelay, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(ctx)
	})
	if err != nil {
		_ = client.Close()
		logger.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return client, nil
}

// initPublisher: без брокеров события не публикуются.
func initPublisher(logger logger.Logger, cfg *config.Config, cl *closer.Closer) (usecase.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Infof("KAFKA_BROKERS is empty, product change events are disabled")
		return kafka.NopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("kafka producer", func(context.Context) error {
		return producer.Close()
	})

	if err := producer.EnsureTopic(topicTimeout); err != nil {
		logger.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	return producer, nil
}

// initImageResolver: без MinIO ссылки на изображения отдаются как есть.
func initImageResolver(logger logger.Logger, cfg *config.Config) (*minioInfra.ImageResolver, error) {
	if cfg.Minio.Endpoint == "" {
		logger.Infof("MINIO_ENDPOINT is empty, image references are passed through")
		return minioInfra.NewImageResolver(nil), nil
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := clients.PingMinIO(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		logger.Warnf("minio bucket %s is not reachable: %v", cfg.Minio.BucketName, err)
	}

	return minioInfra.NewImageResolver(s3Repo.NewImageRepo(minioClient, cfg.Minio)), nil
}
