package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/infrastructure/config"
	infrakafka "github.com/antifraud/msgrisk/internal/infrastructure/kafka"
	infrapg "github.com/antifraud/msgrisk/internal/infrastructure/postgres"
	"github.com/antifraud/msgrisk/internal/presentation/consumer"
	grpcpresentation "github.com/antifraud/msgrisk/internal/presentation/grpc"
	"github.com/antifraud/msgrisk/internal/presentation/rest"
	"github.com/antifraud/msgrisk/pkg/auth"
	"github.com/antifraud/msgrisk/pkg/events"
	"github.com/antifraud/msgrisk/pkg/kafka"
	"github.com/antifraud/msgrisk/pkg/observability"
	"github.com/antifraud/msgrisk/pkg/postgres"
)

// App is the assembled msgrisk daemon.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	stack      *ScoringStack
	producer   *kafka.Producer
	consumer   *kafka.Consumer
	grpcServer *grpcpresentation.Server
	httpServer *http.Server
	closers    []func(context.Context) error
}

// NewApp connects to every dependency and wires the servers. Any failure is
// fatal to startup; partially opened resources are released.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	app := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.Close(context.Background())
		}
	}()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.Service.Name,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			app.closers = append(app.closers, shutdown)
		}
	}

	metrics := observability.NewMetrics("msgrisk")
	meterProvider, err := metrics.NewMeterProvider()
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(meterProvider)
	app.closers = append(app.closers, meterProvider.Shutdown)

	// Scoring pipeline.
	app.stack, err = NewScoringStack(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	// Database.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	app.pool, err = postgres.NewPool(dbCtx, cfg.Database.Postgres())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "database", cfg.Database.Name)

	// Event publishing.
	var publisher port.EventPublisher = discardPublisher{logger: logger}
	if cfg.Kafka.Enabled {
		app.producer, err = kafka.NewProducer(kafkaConfig(cfg.Kafka))
		if err != nil {
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		publisher = infrakafka.NewPublisher(app.producer, cfg.Kafka.EventsTopic, logger)
	} else {
		logger.Warn("kafka disabled, domain events will not be published")
	}

	// Use cases.
	repo := infrapg.NewAssessmentRepository(app.pool)
	assessMessage := usecase.NewAssessMessage(repo, publisher, app.stack.Scorer, metrics, logger)
	getAssessment := usecase.NewGetAssessment(repo)
	listAssessments := usecase.NewListAssessments(repo)
	scoreMessage := usecase.NewScoreMessage(app.stack.Scorer, metrics)

	if cfg.Kafka.Enabled && cfg.Kafka.ConsumerEnabled {
		inbound := consumer.NewInboundHandler(assessMessage, logger)
		app.consumer, err = kafka.NewConsumer(kafkaConfig(cfg.Kafka), cfg.Kafka.InboundTopic, inbound.Handle, logger)
		if err != nil {
			return nil, fmt.Errorf("create kafka consumer: %w", err)
		}
	}

	jwtService, err := newJWTService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewMessageRiskHandler(assessMessage, getAssessment, listAssessments, scoreMessage, logger)
	app.grpcServer, err = grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerOptions{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.Server.TLSCertFile,
		TLSKeyFile:  cfg.Server.TLSKeyFile,
		Reflection:  cfg.Server.Reflection,
	}, jwtService, logger)
	if err != nil {
		return nil, err
	}

	// HTTP server.
	health := rest.NewHealthHandler(cfg.Service.Name, map[string]rest.ReadinessCheck{
		"database":  app.pool.Ping,
		"inference": app.stack.Ready,
	}, logger)
	router := rest.NewRouter(rest.RouterOptions{
		Assessments: rest.NewAssessmentHandler(assessMessage, getAssessment, listAssessments, scoreMessage, logger),
		Health:      health,
		Metrics:     metrics.Handler(),
		JWT:         jwtService,
		Limiter:     rest.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Logger:      logger,
	})
	app.httpServer = &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Model.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return app, nil
}

// Run serves until ctx is canceled or a server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		a.logger.Info("HTTP server starting", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(consumerCtx); err != nil {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	a.logger.Info("msgrisk started",
		"grpc_address", a.cfg.GRPCAddress(),
		"http_address", a.cfg.HTTPAddress(),
		"environment", a.cfg.Service.Environment,
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("server error", "error", runErr)
	}

	a.logger.Info("shutting down msgrisk")
	stopConsumer()
	a.grpcServer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", "error", err)
	}
	a.Close(shutdownCtx)

	a.logger.Info("msgrisk stopped")
	return runErr
}

// Close releases every opened resource. Safe on a partially built App.
func (a *App) Close(ctx context.Context) {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", "error", err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.stack != nil {
		if err := a.stack.Close(); err != nil {
			a.logger.Error("result cache close error", "error", err)
		}
	}
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil {
			a.logger.Error("shutdown error", "error", err)
		}
	}
}

func kafkaConfig(cfg config.KafkaConfig) kafka.Config {
	return kafka.Config{
		Brokers:       cfg.Brokers,
		ConsumerGroup: cfg.ConsumerGroup,
		ClientID:      cfg.ClientID,
		SASLEnabled:   cfg.SASLEnabled,
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
		TLS:           cfg.TLS,
		CAFile:        cfg.CAFile,
	}
}

// newJWTService returns nil when authentication is disabled.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	jwtCfg := auth.JWTConfig{
		Secret:     cfg.Secret,
		Issuer:     cfg.Issuer,
		Expiration: cfg.Expiration,
	}
	if cfg.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read auth public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("create jwt service: %w", err)
	}
	return svc, nil
}

// discardPublisher stands in for Kafka when it is disabled.
type discardPublisher struct {
	logger *slog.Logger
}

func (p discardPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		p.logger.DebugContext(ctx, "event not published", "event_type", evt.EventType(), "aggregate_id", evt.AggregateID())
	}
	return nil
}
