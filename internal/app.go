package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joklek/rentbot-sub000/internal/adapters/aruodasfetcher"
	"github.com/joklek/rentbot-sub000/internal/adapters/domopliusfetcher"
	"github.com/joklek/rentbot-sub000/internal/adapters/kampasfetcher"
	logger_adapter "github.com/joklek/rentbot-sub000/internal/adapters/logger"
	postgres_adapter "github.com/joklek/rentbot-sub000/internal/adapters/postgres"
	rabbitmq_adapter "github.com/joklek/rentbot-sub000/internal/adapters/rabbitmq"
	"github.com/joklek/rentbot-sub000/internal/adapters/rest"
	"github.com/joklek/rentbot-sub000/internal/adapters/skelbiufetcher"
	"github.com/joklek/rentbot-sub000/internal/adapters/transport/browser"
	"github.com/joklek/rentbot-sub000/internal/adapters/transport/collyfetcher"
	"github.com/joklek/rentbot-sub000/internal/configs"
	"github.com/joklek/rentbot-sub000/internal/constants"
	"github.com/joklek/rentbot-sub000/internal/contracts"
	"github.com/joklek/rentbot-sub000/internal/core/converter"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
	usecases_port "github.com/joklek/rentbot-sub000/internal/core/port/usecases"
	"github.com/joklek/rentbot-sub000/internal/core/usecase"
	fluentlogger "github.com/joklek/rentbot-sub000/pkg/fluent_logger"
	"github.com/joklek/rentbot-sub000/pkg/postgres"
	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_producer"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	fluentClient *fluent.Fluent
	renderer     *browser.Renderer
	logger       port.LoggerPort

	connManager      *rabbitmq_common.ConnectionManager
	producers        []*rabbitmq_producer.Publisher
	crawlTasksListen port.EventListenerPort

	restServer *rest.Server
}

// NewApp - composition root: здесь создаются и связываются все зависимости
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	a := &App{config: appConfig}
	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	// --- 1. Логгеры ---
	baseLogger, err := a.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger = appLogger

	sourcesCfg, err := configs.LoadSources(appConfig.Crawl.SourcesFile)
	if err != nil {
		appLogger.Error("Failed to load sources file", err, port.Fields{"path": appConfig.Crawl.SourcesFile})
		return nil, err
	}

	// --- 2. Хранилище ---
	a.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		PingTimeout: 10 * time.Second,
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := postgres_adapter.Migrate(context.Background(), a.dbPool); err != nil {
		appLogger.Error("Failed to apply schema", err, nil)
		return nil, err
	}
	listingRepo, err := postgres_adapter.NewPostgresListingRepository(a.dbPool)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	// --- 3. Источники ---
	crawlers, err := a.initCrawlers(sourcesCfg, listingRepo)
	if err != nil {
		appLogger.Error("Failed to initialize source adapters", err, nil)
		return nil, err
	}
	registry, err := usecase.NewCrawlerRegistry(crawlers...)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Source adapters initialized", port.Fields{"sources": registry.Sources()})

	// --- 4. Брокер ---
	var listingEvents port.ListingEventsPort
	var crawlReports port.CrawlReportPort
	var contractRegistry *contracts.Registry
	if appConfig.RabbitMQ.Enabled {
		contractRegistry, err = contracts.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to compile message contracts: %w", err)
		}
		listingEvents, crawlReports, err = a.initPublishers(baseLogger, contractRegistry)
		if err != nil {
			appLogger.Error("Failed to initialize RabbitMQ publishers", err, nil)
			return nil, err
		}
		appLogger.Info("RabbitMQ publishers initialized.", nil)
	} else {
		appLogger.Warn("RabbitMQ is disabled, listing events will not be published", nil)
	}

	// --- 5. Use cases ---
	ingestUC := usecase.NewIngestSourceUseCase(registry, listingRepo, listingEvents, converter.NewConverter(time.Now))
	orchestrateUC := usecase.NewOrchestrateCrawlUseCase(ingestUC, registry.Sources())
	replayUC := usecase.NewReplayListingsUseCase(listingRepo)
	appLogger.Info("All use cases initialized.", nil)

	// --- 6. Входящие адаптеры ---
	if appConfig.RabbitMQ.Enabled {
		a.crawlTasksListen, err = a.initCrawlTasksListener(orchestrateUC, crawlReports, contractRegistry, baseLogger)
		if err != nil {
			appLogger.Error("Failed to initialize crawl tasks listener", err, nil)
			return nil, err
		}
		appLogger.Info("Crawl tasks listener initialized.", nil)
	}

	a.restServer = rest.NewServer(
		appConfig.Rest.Port,
		rest.NewListingsHandler(replayUC),
		rest.NewCrawlHandler(orchestrateUC, registry.Sources()),
		baseLogger.WithFields(port.Fields{"component": "rest"}),
	)

	ok = true
	return a, nil
}

func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLevel, known := logger_adapter.ParseLevel(cfg.StdoutLogger.Level)
	if !known {
		log.Printf("Warning: unknown log level '%s', defaulting to 'info'", cfg.StdoutLogger.Level)
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    stdoutLevel,
		IsJSON:   cfg.StdoutLogger.JSON,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentLevel, _ := logger_adapter.ParseLevel(cfg.FluentBit.Level)
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, fluentLevel)
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

// initCrawlers создает адаптер и контроллер обхода для каждого включенного источника.
// Браузер поднимается, только если он кому-то нужен.
func (a *App) initCrawlers(sourcesCfg *configs.SourcesConfig, known port.KnownListingsPort) ([]usecases_port.CrawlSourcePort, error) {
	crawlCfg := a.config.Crawl

	fetcher, err := collyfetcher.NewFetcher(collyfetcher.Config{
		AllowedDomains: sourcesCfg.AllowedDomains(),
		Parallelism:    crawlCfg.FetchParallelism,
		RandomDelay:    crawlCfg.FetchDelay,
		RequestTimeout: crawlCfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	var crawlers []usecases_port.CrawlSourcePort
	for _, src := range sourcesCfg.Enabled() {
		srcCfg, _ := sourcesCfg.Get(src)
		endpoint := srcCfg.Endpoint()

		var adapter port.ListingSourcePort
		switch src {
		case domain.SourceAruodas:
			if a.renderer == nil {
				a.renderer = browser.NewRenderer(browser.Config{
					ExecPath:      a.config.Browser.ChromePath,
					Headless:      a.config.Browser.Headless,
					RatePerMinute: a.config.Browser.RatePerMinute,
					PageTimeout:   a.config.Browser.PageTimeout,
				})
			}
			adapter, err = aruodasfetcher.NewAruodasFetcherAdapter(a.renderer, endpoint)
		case domain.SourceDomoplius:
			adapter, err = domopliusfetcher.NewDomopliusFetcherAdapter(fetcher, endpoint)
		case domain.SourceSkelbiu:
			adapter, err = skelbiufetcher.NewSkelbiuFetcherAdapter(fetcher, endpoint)
		case domain.SourceKampas:
			adapter, err = kampasfetcher.NewKampasFetcherAdapter(fetcher, endpoint)
		default:
			err = fmt.Errorf("%w: %s", domain.ErrUnknownSource, src)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s adapter: %w", src, err)
		}

		crawlers = append(crawlers, usecase.NewCrawlSourceUseCase(adapter, known, crawlCfg.DetailConcurrency, crawlCfg.Timeout))
	}
	if len(crawlers) == 0 {
		return nil, errors.New("no sources are enabled")
	}
	return crawlers, nil
}

func (a *App) initPublishers(baseLogger port.LoggerPort, registry *contracts.Registry) (port.ListingEventsPort, port.CrawlReportPort, error) {
	amqpCfg := rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}

	connBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(amqpCfg, connBridge)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	producerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"}))
	newPublisher := func(exchange string) (*rabbitmq_producer.Publisher, error) {
		p, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   amqpCfg,
			ExchangeName:             exchange,
			ExchangeType:             "direct",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   producerBridge,
		}, connManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create publisher for %s: %w", exchange, err)
		}
		a.producers = append(a.producers, p)
		return p, nil
	}

	listingsProducer, err := newPublisher(constants.ListingsExchange)
	if err != nil {
		return nil, nil, err
	}
	crawlProducer, err := newPublisher(constants.CrawlExchange)
	if err != nil {
		return nil, nil, err
	}

	listingEvents, err := rabbitmq_adapter.NewListingEventsAdapter(listingsProducer, registry, constants.RoutingKeyListingCreated)
	if err != nil {
		return nil, nil, err
	}
	crawlReports, err := rabbitmq_adapter.NewCrawlReporterAdapter(crawlProducer, registry, constants.RoutingKeyCrawlCompleted)
	if err != nil {
		return nil, nil, err
	}
	return listingEvents, crawlReports, nil
}

func (a *App) initCrawlTasksListener(
	orchestrateUC usecases_port.OrchestrateCrawlPort,
	reporter port.CrawlReportPort,
	registry *contracts.Registry,
	baseLogger port.LoggerPort,
) (port.EventListenerPort, error) {
	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
		QueueName:              constants.QueueCrawlTasks,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.CrawlExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    "direct",
		RoutingKeyForBind:      constants.RoutingKeyCrawlTasks,
		// обход долгий, по одной задаче за раз
		PrefetchCount: 1,
		ConsumerTag:   "crawl-tasks-processor-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.CrawlTasksRetryExchange,
		RetryQueue:           constants.CrawlTasksRetryQueue,
		RetryTTL:             constants.CrawlTasksRetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQCrawlTasks,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.CrawlTasksMaxRetries,
	}
	return rabbitmq_adapter.NewCrawlTasksConsumerAdapter(consumerCfg, orchestrateUC, reporter, registry, baseLogger, a.connManager)
}

// Run запускает компоненты и блокируется до сигнала или сбоя одного из них
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	componentErrors := make(chan error, 2)

	a.logger.Info("Application is starting...", nil)

	if a.crawlTasksListen != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Crawl Tasks Listener"})
			listenerLogger.Info("Starting listener...", nil)
			if err := a.crawlTasksListen.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				componentErrors <- fmt.Errorf("crawl tasks listener: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}()
	}

	go func() {
		if err := a.restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			componentErrors <- fmt.Errorf("rest server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.logger.Info("Shutdown sequence initiated...", nil)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.restServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping REST server", err, nil)
	}

	cancelApp()
	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()

	a.closeResources()
	return runErr
}

func (a *App) closeResources() {
	logger := a.logger
	if logger == nil {
		logger = logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{})
	}

	if a.crawlTasksListen != nil {
		if err := a.crawlTasksListen.Close(); err != nil {
			logger.Error("Error closing crawl tasks listener", err, nil)
		}
	}
	for _, p := range a.producers {
		if err := p.Close(); err != nil {
			logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		logger.Info("PostgreSQL pool closed.", nil)
	}

	logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}
