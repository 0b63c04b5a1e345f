package app

import (
	"context"
	"fmt"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/database"
	"NetIntelAPI/internal/embedding"
	"NetIntelAPI/internal/guidance"
	"NetIntelAPI/internal/handler"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/mqtt"
	"NetIntelAPI/internal/repository"
	"NetIntelAPI/internal/server"
	"NetIntelAPI/internal/service"
	"NetIntelAPI/internal/websocket"

	"golang.org/x/sync/errgroup"
)

// App owns every long lived component of the API process.
type App struct {
	cfg *config.Config
	log *logger.Logger

	db         *database.Database
	cache      *cache.Cache
	metrics    *metrics.Metrics
	broker     *mqtt.Client
	hub        *websocket.Hub
	server     *server.Server
	background *service.BackgroundMonitor
	traffic    *service.TrafficService
}

// New wires the process. Only an unusable Redis URL is fatal; the database,
// providers and broker degrade to disabled when they cannot be reached.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		hub:     websocket.NewHub(log),
	}

	c, err := cache.New(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	a.cache = c

	repos := &repository.Repositories{}
	if cfg.Database.Enabled() {
		a.db = a.openDatabase(ctx)
		if a.db != nil {
			repos = repository.New(a.db.DB)
		}
	} else {
		log.Warn("DATABASE_URL not set, running without durable storage")
	}

	embedder, err := embedding.New(cfg.Embedding, a.metrics, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	advisor := guidance.New(cfg.Guidance, a.metrics, log)

	var publisher service.AlertPublisher
	var brokerStatus service.BrokerStatus
	if cfg.MQTT.Enabled() {
		a.broker = a.connectBroker()
		if a.broker != nil {
			publisher = a.broker
			brokerStatus = a.broker
		}
	}

	mon := monitor.New()

	metricService := service.NewMetricService(repos.Metrics, log)
	alertService := service.NewAlertService(mon, repos.Events, c, publisher, a.metrics, log)
	a.traffic = service.NewTrafficService(mon, alertService, metricService, repos.Metrics, repos.Events, c, a.metrics, log)
	eventService := service.NewEventService(repos.Events, mon, c, log)
	indicatorService := service.NewIndicatorService(mon, repos.Indicators, c, log)
	sessionService := service.NewSessionService(repos.Sessions, c, log)
	inferenceService := service.NewInferenceService(metricService, c, log)
	embeddingService := service.NewEmbeddingService(embedder, repos.Embeddings, mon, c, cfg.Embedding.MinSimilarity, log)
	guidanceService := service.NewGuidanceService(advisor, embedder, repos.Guidance, mon, c, cfg.Embedding.MinSimilarity, log)
	healthService := service.NewHealthService(a.db, c, brokerStatus)

	if a.broker != nil {
		if err := a.broker.SubscribeTraffic(a.analyzeTraffic); err != nil {
			log.Error("Failed to subscribe to traffic topic: %v", err)
		}
	}

	a.background = service.NewBackgroundMonitor(mon, c, cfg.Monitor.BackgroundInterval, cfg.Monitor.AlertStaleAfter, log)

	a.server = server.New(cfg, a.metrics, c, log)
	a.server.RegisterHandlers(a.hub,
		handler.NewHealthHandler(healthService, log),
		handler.NewNetworkHandler(a.traffic, log),
		handler.NewEventHandler(eventService, log),
		handler.NewAlertHandler(alertService, log),
		handler.NewThreatHandler(indicatorService, log),
		handler.NewAnalyticsHandler(metricService, log),
		handler.NewSessionHandler(sessionService, log),
		handler.NewCacheHandler(c, log),
		handler.NewInferenceHandler(inferenceService, log),
		handler.NewEmbeddingHandler(embeddingService, log),
		handler.NewGuidanceHandler(guidanceService, log),
	)

	return a, nil
}

func (a *App) openDatabase(ctx context.Context) *database.Database {
	db, err := database.New(&a.cfg.Database)
	if err != nil {
		a.log.Error("Failed to connect to database, continuing without it: %v", err)
		return nil
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Migrate(migrateCtx, a.cfg.Embedding.Dimensions); err != nil {
		a.log.Error("Database migration failed: %v", err)
	}

	a.log.Info("Database connected successfully")
	return db
}

func (a *App) connectBroker() *mqtt.Client {
	client, err := mqtt.NewClient(&a.cfg.MQTT, a.log)
	if err != nil {
		a.log.Error("Failed to create MQTT client: %v", err)
		return nil
	}

	if err := client.Connect(); err != nil {
		a.log.Error("Failed to connect to MQTT broker, continuing without it: %v", err)
		return nil
	}
	return client
}

func (a *App) analyzeTraffic(ctx context.Context, traffic *models.TrafficData) error {
	res, err := a.traffic.Analyze(ctx, traffic)
	if err != nil {
		return err
	}
	a.log.Debug("Scored broker traffic sample %s: risk %d", res.AnalysisID, res.RiskScore)
	return nil
}

// Run serves until ctx is cancelled, then shuts every component down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	if !a.cache.Subscribe(gctx, cache.ChannelAlerts, a.hub.ForwardAlert) {
		a.log.Warn("Alert stream disabled: could not subscribe to %s", cache.ChannelAlerts)
	}

	a.background.Start()

	g.Go(func() error {
		return a.server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Warn("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		a.background.Shutdown()
		return a.server.Shutdown(shutdownCtx)
	})

	a.log.Info("API server ready on http://%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	return g.Wait()
}

// Close releases connections. It is safe to call after a failed New.
func (a *App) Close() {
	if a.broker != nil {
		if err := a.broker.UnsubscribeTraffic(); err != nil {
			a.log.Warn("Failed to unsubscribe from traffic topic: %v", err)
		}
		if err := a.broker.Disconnect(); err != nil {
			a.log.Error("Failed to disconnect MQTT: %v", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("Failed to close database: %v", err)
	}
	if err := a.cache.Close(); err != nil {
		a.log.Error("Failed to close cache: %v", err)
	}
}
