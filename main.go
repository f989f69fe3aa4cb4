package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/clover/config"
	companyrepo "github.com/Ramsey-B/clover/internal/repositories/company"
	documentrepo "github.com/Ramsey-B/clover/internal/repositories/document"
	matchrepo "github.com/Ramsey-B/clover/internal/repositories/match"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/marketdata"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/matchmaker"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/redis"
	companyroutes "github.com/Ramsey-B/clover/pkg/routes/company"
	documentroutes "github.com/Ramsey-B/clover/pkg/routes/document"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	marketdataroutes "github.com/Ramsey-B/clover/pkg/routes/marketdata"
	matchroutes "github.com/Ramsey-B/clover/pkg/routes/match"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := initTracing(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize tracing")
			os.Exit(1)
		}
		defer shutdown(ctx)
	} else {
		tracing.SetTracer(otel.Tracer(cfg.AppName))
	}

	pg := &postgresDependency{cfg: cfg, logger: logger}
	redisDep := &redisDependency{cfg: cfg, logger: logger}

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(pg)
	boot.AddDependency(redisDep)

	var graphDep *graphDependency
	if cfg.GraphDBEnabled {
		graphDep = &graphDependency{cfg: cfg, logger: logger}
		boot.AddDependency(graphDep)
	}

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start dependencies")
		boot.Stop(ctx)
		os.Exit(1)
	}
	defer boot.Stop(ctx)

	db := database.NewDatabaseInstance(pg.db, logger)

	companies := companyrepo.NewRepository(db, logger)
	documents := documentrepo.NewRepository(db, logger)
	matches := matchrepo.NewRepository(db, logger)

	var emitter *events.Emitter
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	engine := matching.NewEngine(logger)
	matchCfg := matching.Config{
		MinMatchScore: cfg.MinMatchScore,
		MaxResults:    cfg.MaxMatchesPerQuery,
	}

	marketClient := marketdata.NewClient(marketdata.ClientConfig{
		BaseURL:  cfg.MarketDataBaseURL,
		APIKey:   cfg.MarketDataAPIKey,
		Timeout:  cfg.MarketDataTimeout,
		CacheTTL: cfg.RedisCacheTTL,
	}, redisDep.client, logger)
	var importBatch marketdata.BatchEmitter
	if emitter != nil {
		importBatch = emitter
	}
	importer := marketdata.NewImporter(marketClient, companies, importBatch, logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker := health.NewChecker(pg.db, redisDep.client, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	var matchEmitter matchmaker.EventEmitter
	var matchProjector matchmaker.GraphProjector
	var companyEmitter companyroutes.Emitter
	var companyGraph companyroutes.GraphWriter
	var neighborReader matchroutes.NeighborReader
	var importEmitter marketdataroutes.Emitter

	if emitter != nil {
		matchEmitter = emitter
		companyEmitter = emitter
		importEmitter = emitter
	}
	if graphDep != nil && graphDep.client != nil {
		dealGraph := graph.NewDealService(graphDep.client, logger)
		matchProjector = dealGraph
		companyGraph = dealGraph
		neighborReader = dealGraph
	}

	matchSvc := matchmaker.NewService(companies, matches, engine, matchEmitter, matchProjector, matchCfg, logger)

	companyroutes.NewHandler(companies, companyEmitter, companyGraph, logger).Register(api.Group("/companies"))
	matchHandler := matchroutes.NewHandler(matchSvc, neighborReader)
	matchHandler.Register(api.Group("/companies"))
	matchHandler.RegisterMatches(api.Group("/matches"))
	documentroutes.NewHandler(documents, matchSvc).Register(api.Group("/documents"))
	marketdataroutes.NewHandler(importer, marketClient, importEmitter, logger).Register(api.Group("/market-data"))

	checker.SetReady(true)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Infof("Starting %s", cfg.AppName)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server stopped")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down HTTP server cleanly")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level = parsed
	}

	var zapCfg zap.Config
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}

	return zapadapter.NewZapEctoLogger(zapLogger.With(zap.String("app", cfg.AppName)), nil)
}

func initTracing(ctx context.Context, cfg config.Config, logger ectologger.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	if cfg.OTLPProtocol == "console" {
		exporter = exporters.NewConsoleExporter(logger)
	} else {
		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, err
		}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
			attribute.String("service.version", version),
		)),
	)

	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}

// postgresDependency connects the relational store and runs migrations
type postgresDependency struct {
	cfg    config.Config
	logger ectologger.Logger
	db     *sqlx.DB
}

func (d *postgresDependency) GetName() string { return "postgres" }
func (d *postgresDependency) DependsOn() []string { return nil }

func (d *postgresDependency) Start(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.cfg.DatabaseHost, d.cfg.DatabasePort, d.cfg.DatabaseUserName, d.cfg.DatabasePassword, d.cfg.DatabaseName, d.cfg.DatabaseSSLMode)

	db, err := sqlx.ConnectContext(ctx, d.cfg.DatabaseDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(d.cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(d.cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(d.cfg.DatabaseConnMaxLifetime)

	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(d.cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.db = db
	return nil
}

func (d *postgresDependency) Stop(_ context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// redisDependency connects the market data cache
type redisDependency struct {
	cfg    config.Config
	logger ectologger.Logger
	client *redis.Client
}

func (d *redisDependency) GetName() string { return "redis" }
func (d *redisDependency) DependsOn() []string { return nil }

func (d *redisDependency) Start(_ context.Context) error {
	client, err := redis.NewClient(redis.Config{
		Addr:     d.cfg.RedisAddr,
		Password: d.cfg.RedisPassword,
		DB:       d.cfg.RedisDB,
	}, d.logger)
	if err != nil {
		return err
	}
	d.client = client
	return nil
}

func (d *redisDependency) Stop(_ context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}

// graphDependency connects the deal graph
type graphDependency struct {
	cfg    config.Config
	logger ectologger.Logger
	client *graph.Client
}

func (d *graphDependency) GetName() string { return "graph" }
func (d *graphDependency) DependsOn() []string { return nil }

func (d *graphDependency) Start(ctx context.Context) error {
	client, err := graph.NewClient(graph.Config{
		Host:     d.cfg.GraphDBHost,
		Port:     d.cfg.GraphDBPort,
		Username: d.cfg.GraphDBUser,
		Password: d.cfg.GraphDBPassword,
	}, d.logger)
	if err != nil {
		return err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to verify graph connectivity: %w", err)
	}
	d.client = client
	return nil
}

func (d *graphDependency) Stop(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Close(ctx)
}
