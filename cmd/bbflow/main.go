package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/archive"
	"github.com/dshills/bbflow/flow/catalog"
	"github.com/dshills/bbflow/flow/emit"
	"github.com/dshills/bbflow/flow/inventory"
	"github.com/dshills/bbflow/flow/policy"
	"github.com/dshills/bbflow/flow/resolve"
	"github.com/dshills/bbflow/flow/rest"
	"github.com/dshills/bbflow/flow/store"
	"github.com/dshills/bbflow/internal/config"
	"github.com/dshills/bbflow/internal/logging"
	"github.com/dshills/bbflow/internal/server"
	"github.com/dshills/bbflow/internal/telemetry"
)

type bbflow struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	store      store.Store
	bucket     *blob.Bucket
	tracer     *sdktrace.TracerProvider
	spans      *emit.OTelEmitter
	emitter    emit.Emitter
	replayer   *flow.Replayer
	opts       []server.Option
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrOpenStore     = errors.New("failed to open request store")
	ErrOpenBucket    = errors.New("failed to open archive bucket")
	ErrCreateRest    = errors.New("failed to create REST client")
	ErrCreateArchive = errors.New("failed to create archive writer")
	ErrInitTracing   = errors.New("failed to initialize tracing")
)

const breakerTimeout = 30 * time.Second

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	s := &bbflow{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", logging.Error(err))
		os.Exit(1)
	}
}

func (s *bbflow) run() error {
	ctx := context.Background()
	if err := s.initializeStore(ctx); err != nil {
		return err
	}
	defer func() { _ = s.store.Close() }()

	if err := s.initializeReplay(ctx); err != nil {
		return err
	}
	if err := s.initializeClients(); err != nil {
		return err
	}
	if err := s.initializeArchive(ctx); err != nil {
		return err
	}
	if s.bucket != nil {
		defer func() { _ = s.bucket.Close() }()
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *bbflow) setupLogging() {
	s.logger = logging.SetupLogging(s.cfg.LogLevel, s.cfg.LogFormat)

	slog.Info("bbflow starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("store_driver", s.cfg.StoreDriver),
		slog.String("inventory_url", s.cfg.Inventory.URL),
		slog.String("catalog_url", s.cfg.Catalog.URL),
		slog.String("policy_url", s.cfg.Policy.URL),
		slog.String("archive_bucket", s.cfg.ArchiveBucketURL),
		slog.String("trace_exporter", s.cfg.Tracing.Exporter),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *bbflow) initializeStore(ctx context.Context) error {
	var err error

	switch s.cfg.StoreDriver {
	case config.StoreSQLite:
		s.store, err = store.NewSQLiteStore(s.cfg.SQLitePath)
	case config.StoreMySQL:
		s.store, err = store.NewMySQLStore(s.cfg.MySQLDSN)
	case config.StoreRedis:
		if s.cfg.Redis.URL != "" {
			s.store, err = store.NewRedisStoreFromURL(ctx, s.cfg.Redis.URL,
				store.WithKeyPrefix(s.cfg.Redis.Prefix))
			break
		}
		client := redis.NewClient(&redis.Options{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
		})
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			break
		}
		s.store = store.NewRedisStore(client, store.WithKeyPrefix(s.cfg.Redis.Prefix))
	default:
		s.store = store.NewMemStore()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	return nil
}

func (s *bbflow) initializeReplay(ctx context.Context) error {
	tp, err := telemetry.InitTracing(ctx, telemetry.Config{
		Exporter:    s.cfg.Tracing.Exporter,
		Endpoint:    s.cfg.Tracing.Endpoint,
		SampleRatio: s.cfg.Tracing.SampleRatio,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitTracing, err)
	}
	s.tracer = tp
	s.spans = emit.NewOTelEmitter(otel.Tracer("bbflow"))

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.emitter = emit.Multi{
		emit.NewLogEmitter(s.logger, slog.LevelDebug),
		s.spans,
	}
	s.replayer = flow.NewReplayer(s.store,
		flow.WithEmitter(s.emitter),
		flow.WithMetrics(flow.NewMetrics(s.registry)),
	)
	return nil
}

func (s *bbflow) initializeClients() error {
	metrics := rest.NewMetrics(s.registry)

	newClient := func(name string, sc config.ServiceConfig) (*rest.Client, error) {
		rc, err := rest.New(rest.Config{
			Name:     name,
			BaseURL:  sc.URL,
			Username: sc.Username,
			Password: sc.Password,
			Timeout:  sc.Timeout,
			Retry: rest.RetryPolicy{
				MaxAttempts: sc.MaxAttempts,
				BaseDelay:   rest.DefaultRetryPolicy().BaseDelay,
				MaxDelay:    rest.DefaultRetryPolicy().MaxDelay,
			},
			RateLimit:       sc.RateLimit,
			Burst:           sc.Burst,
			BreakerFailures: uint32(sc.BreakerFailures),
			BreakerTimeout:  breakerTimeout,
		}, rest.WithMetrics(metrics), rest.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrCreateRest, name, err)
		}
		return rc, nil
	}

	invClient, err := newClient("inventory", s.cfg.Inventory)
	if err != nil {
		return err
	}
	catClient, err := newClient("catalog", s.cfg.Catalog)
	if err != nil {
		return err
	}
	policyClient, err := newClient("policy", s.cfg.Policy)
	if err != nil {
		return err
	}

	resolver := resolve.New(
		inventory.NewHTTPClient(invClient),
		catalog.NewHTTPClient(catClient),
		s.store,
		resolve.WithEmitter(s.emitter),
		resolve.WithLogger(s.logger),
		resolve.WithConcurrency(s.cfg.ResolveConcurrency),
		resolve.WithReplayer(s.replayer),
	)
	s.opts = append(s.opts,
		server.WithResolver(resolver),
		server.WithPolicy(policy.NewClient(policyClient, s.logger)),
	)
	return nil
}

func (s *bbflow) initializeArchive(ctx context.Context) error {
	if s.cfg.ArchiveBucketURL == "" {
		slog.Info("Archiving disabled")
		return nil
	}

	bucket, err := blob.OpenBucket(ctx, s.cfg.ArchiveBucketURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenBucket, err)
	}
	writer, err := archive.NewWriter(bucket, s.cfg.ArchivePrefix)
	if err != nil {
		_ = bucket.Close()
		return fmt.Errorf("%w: %w", ErrCreateArchive, err)
	}
	s.bucket = bucket
	s.opts = append(s.opts, server.WithArchiver(
		archive.NewArchiver(s.store, writer, archive.WithEmitter(s.emitter)),
	))
	return nil
}

func (s *bbflow) startServer() {
	gin.SetMode(gin.ReleaseMode)

	opts := append(s.opts,
		server.WithGatherer(s.registry),
		server.WithLogger(s.logger),
	)
	apiServer := server.NewServer(s.store, s.replayer, opts...)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler:           apiServer.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logging.Error(err))
		}
	}()
}

func (s *bbflow) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", logging.Error(err))
	}
	if s.tracer != nil {
		if err := s.spans.Flush(ctx); err != nil {
			slog.Error("Span flush failed", logging.Error(err))
		}
		if err := s.tracer.Shutdown(ctx); err != nil {
			slog.Error("Tracer shutdown failed", logging.Error(err))
		}
	}
	slog.Info("Shutdown complete")
}
