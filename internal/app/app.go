package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/refsearch/config"
	"github.com/niksmo/refsearch/internal/adapter"
	"github.com/niksmo/refsearch/internal/adapter/httphandler"
	"github.com/niksmo/refsearch/internal/adapter/kafka"
	"github.com/niksmo/refsearch/internal/adapter/selection"
	"github.com/niksmo/refsearch/internal/adapter/xlsx"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/niksmo/refsearch/internal/core/service"
	"github.com/niksmo/refsearch/pkg/retry"
	"github.com/niksmo/refsearch/pkg/schema"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/sr"
)

type App struct {
	ctx        context.Context
	cfg        config.Config
	store      port.SelectionStore
	redis      *redis.Client
	events     *kafka.SearchEventsProducer
	service    *service.Service
	httpServer httphandler.HTTPServer
}

// New builds the application and loads the catalog. Any failure
// terminates the process.
func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSelectionStore()
	app.initSearchEvents()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	InitLogger(app.cfg.LogLevel)
}

// InitLogger installs the JSON logger on stderr as default.
func InitLogger(level slog.Leveler) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSelectionStore() {
	const op = "App.initSelectionStore"

	cfg := app.cfg
	if cfg.Redis.Addr == "" {
		app.store = selection.NewMemoryStore(
			cfg.Selection.MaxSessions, cfg.Selection.TTL,
		)
		slog.Info("selections are kept in memory", "op", op)
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	err := retry.Do(app.ctx, retry.Startup(), func() error {
		return client.Ping(app.ctx).Err()
	})
	if err != nil {
		app.fallDown(op, err)
	}

	app.redis = client
	app.store = selection.NewRedisStore(client, cfg.Selection.TTL)
	slog.Info("selections are kept in redis", "op", op, "addr", cfg.Redis.Addr)
}

func (app *App) initSearchEvents() {
	const op = "App.initSearchEvents"

	cfg := app.cfg.Broker
	if !cfg.Enabled() {
		slog.Info("search events are disabled", "op", op)
		return
	}

	srOpts := []sr.ClientOpt{sr.URLs(cfg.SchemaRegistryURLs...)}
	var kafkaTLS *tls.Config
	if cfg.TLS.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(cfg.TLS.CA, cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
		kafkaTLS = tlsConfig
		srOpts = append(srOpts, sr.DialTLSConfig(tlsConfig))
	}

	identifier, err := schema.NewRegistryIdentifier(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	topic := cfg.SearchEventsTopic.Name
	serde, err := schema.NewSerdeSearchEventV1(
		app.ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewSearchEventsProducer(
		kafka.ProducerClientOpt(app.ctx, cfg.SeedBrokers, topic, kafkaTLS),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.events = producer
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	svc, err := NewService(app.cfg, app.store, app.searchEvents())
	if err != nil {
		app.fallDown(op, err)
	}

	if _, err := svc.Load(app.ctx); err != nil {
		app.fallDown(op, err)
	}
	app.service = svc
}

// searchEvents keeps a nil producer out of the interface.
func (app *App) searchEvents() port.SearchEventsProducer {
	if app.events == nil {
		return nil
	}
	return app.events
}

// NewService wires the catalog service to the configured
// spreadsheet sources. events may be nil.
func NewService(
	cfg config.Config,
	store port.SelectionStore,
	events port.SearchEventsProducer,
) (*service.Service, error) {
	const op = "NewService"

	reader, err := xlsx.NewReader(xlsx.CacheSizeOpt(cfg.Loader.CacheSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sources := service.Sources{
		Catalog:  cfg.Sources.Catalog.Source(),
		Stock:    cfg.Sources.Stock.Source(),
		Discount: cfg.Sources.Discount.Source(),
	}
	return service.New(
		reader, sources, cfg.Columns, store, xlsx.NewWriter(cfg.Columns), events,
	), nil
}

func (app *App) initInboundAdapters() {
	cfg := app.cfg

	handler := httphandler.NewRouter(httphandler.RouterConfig{
		Searcher:  app.service,
		Exporter:  app.service,
		Selection: app.service,
		Sessions: httphandler.NewSessionStore(
			cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.SecureCookie,
		),
		Credentials: httphandler.Credentials{
			Username:     cfg.Auth.Username,
			PasswordHash: cfg.Auth.PasswordHash,
		},
	})
	app.httpServer = httphandler.NewHTTPServer(cfg.HTTPServerAddr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.events != nil {
		app.events.Close(ctx)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			slog.Error("failed to close redis client", "err", err)
		}
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	slog.Error("failed to start application", "op", op, "err", err)
	os.Exit(1)
}
