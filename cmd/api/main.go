package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"example.com/sleeveselector/internal/api"
	"example.com/sleeveselector/internal/auth"
	"example.com/sleeveselector/internal/config"
	"example.com/sleeveselector/internal/domain"
	"example.com/sleeveselector/internal/events"
	"example.com/sleeveselector/internal/logging"
	"example.com/sleeveselector/internal/observability"
	"example.com/sleeveselector/internal/reference"
	"example.com/sleeveselector/internal/sleeve"
	catalogstore "example.com/sleeveselector/internal/sleeve/postgres"
	httptransport "example.com/sleeveselector/internal/transport/http"
)

const eventBuffer = 256

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tables := loadReference(cfg, logger)

	source, closeSource := catalogSource(ctx, cfg, logger)
	defer closeSource()

	catalog, err := sleeve.LoadCatalog(ctx, source)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load sleeve catalog")
	}
	observability.RecordCatalogSize(catalog.Len())

	selector, err := sleeve.NewSelector(catalog, tables)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build sleeve selector")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.EventsEnabled() {
		producer := events.NewKafkaProducer(events.ProducerConfig{Brokers: cfg.KafkaBrokers, Logger: logger})
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("closing kafka producer")
			}
		}()

		async := events.NewAsyncPublisher(
			events.NewKafkaPublisher(producer, cfg.EventsTopic, cfg.EventPublishTimeout, logger),
			eventBuffer, logger,
		)
		defer async.Close()
		publisher = async
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Msg("sizing events enabled")
	}

	service := domain.NewService(tables, selector, publisher, logger)

	handler := api.NewHandler(service)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	middlewares := []httptransport.Middleware{
		httptransport.RequestID(),
		httptransport.Logger(logger),
		httptransport.CORS(cfg.CORSOrigin),
		httptransport.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if cfg.AuthEnabled() {
		authMiddleware := auth.NewMiddleware(auth.Config{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		}, auth.ScopeSizingRead)
		middlewares = append(middlewares, authMiddleware.Wrap)
	} else {
		logger.Warn().Msg("JWT_SECRET not set; API is unauthenticated")
	}

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:         cfg.HTTPAddress,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, httptransport.Chain(mux, middlewares...), logger)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("sleeve-selector stopped")
}

func loadReference(cfg config.Config, logger zerolog.Logger) *reference.Set {
	var (
		tables *reference.Set
		err    error
	)
	if cfg.ReferencePath != "" {
		tables, err = reference.Load(cfg.ReferencePath)
	} else {
		tables, err = reference.LoadDefault()
	}
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ReferencePath).Msg("failed to load reference tables")
	}

	for _, overlap := range tables.Overlaps() {
		logger.Warn().Str("overlap", overlap.String()).Msg("reference ranges overlap; lookups resolve as ambiguous")
	}
	for _, table := range tables.Tables() {
		observability.RecordReferenceTable(table.Name, len(table.Entries))
	}
	observability.RecordReferenceLoaded(time.Now())
	logger.Info().Int("tables", len(tables.Tables())).Msg("reference tables loaded")
	return tables
}

// catalogSource picks Postgres, then a JSON file, then the embedded catalog.
func catalogSource(ctx context.Context, cfg config.Config, logger zerolog.Logger) (sleeve.Source, func()) {
	switch {
	case cfg.CatalogPostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.CatalogPostgresURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		logger.Info().Msg("reading sleeve catalog from postgres")
		return catalogstore.NewRepository(pool), pool.Close
	case cfg.CatalogPath != "":
		logger.Info().Str("path", cfg.CatalogPath).Msg("reading sleeve catalog from file")
		return sleeve.FileSource{Path: cfg.CatalogPath}, func() {}
	default:
		return sleeve.EmbeddedSource{}, func() {}
	}
}
