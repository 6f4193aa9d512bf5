package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goncalofm90/foodi3/internal/adapters/contentdb"
	"github.com/goncalofm90/foodi3/internal/adapters/inmemory"
	token_adapter "github.com/goncalofm90/foodi3/internal/adapters/jwt"
	logger_adapter "github.com/goncalofm90/foodi3/internal/adapters/logger"
	"github.com/goncalofm90/foodi3/internal/adapters/metrics"
	"github.com/goncalofm90/foodi3/internal/adapters/notifier"
	postgres_adapter "github.com/goncalofm90/foodi3/internal/adapters/postgres"
	rabbitmq_adapter "github.com/goncalofm90/foodi3/internal/adapters/rabbitmq"
	"github.com/goncalofm90/foodi3/internal/adapters/rest"
	"github.com/goncalofm90/foodi3/internal/configs"
	"github.com/goncalofm90/foodi3/internal/contracts"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
	"github.com/goncalofm90/foodi3/internal/core/synchronizer"
	"github.com/goncalofm90/foodi3/internal/core/usecase"
	fluentlogger "github.com/goncalofm90/foodi3/pkg/fluent_logger"
	"github.com/goncalofm90/foodi3/pkg/postgres"
	"github.com/goncalofm90/foodi3/pkg/rabbitmq/rabbitmq_common"
	"github.com/goncalofm90/foodi3/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server
	notifier  *notifier.SSENotifier

	rabbitConn *rabbitmq_common.ConnectionManager
	publisher  *rabbitmq_producer.Publisher

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- Loggers ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{config: appConfig, fluentClient: fluentClient, logger: appLogger}
	// Releases whatever was opened so far when a later step fails.
	ok := false
	defer func() {
		if !ok {
			application.close()
		}
	}()

	// --- Persistence ---
	var (
		store port.FavouritesStorePort
		users port.UserRepositoryPort
	)
	switch appConfig.Database.Driver {
	case configs.StoreDriverMemory:
		appLogger.Warn("Using in-memory favourites store; data is lost on restart", nil)
		store = inmemory.NewFavouritesStore()
		users = inmemory.NewUserRepository()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		dbPool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL:     appConfig.Database.URL,
			MaxConns:        appConfig.Database.MaxConns,
			MaxConnLifetime: appConfig.Database.MaxConnLifetime,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		application.dbPool = dbPool
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			appLogger.Error("Failed to apply schema", err, nil)
			return nil, err
		}

		favouritesRepo, err := postgres_adapter.NewPostgresFavouritesRepository(dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres favourites repository: %w", err)
		}
		userRepo, err := postgres_adapter.NewPostgresUserRepository(dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres user repository: %w", err)
		}
		store, users = favouritesRepo, userRepo
	}

	// --- Observability and push ---
	promMetrics := metrics.NewPrometheusMetrics()
	sseNotifier := notifier.NewSSENotifier(baseLogger)
	application.notifier = sseNotifier

	// --- Events ---
	var events port.FavouriteEventsPort
	if appConfig.RabbitMQ.Enabled {
		bridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq"}))

		connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}, bridge)
		if err != nil {
			appLogger.Error("Failed to connect to RabbitMQ", err, nil)
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		application.rabbitConn = connManager

		publisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName:             appConfig.RabbitMQ.Exchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   bridge,
		}, connManager)
		if err != nil {
			appLogger.Error("Failed to create RabbitMQ publisher", err, nil)
			return nil, err
		}
		application.publisher = publisher

		schemas, err := contracts.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to compile event contracts: %w", err)
		}
		eventsPublisher, err := rabbitmq_adapter.NewFavouriteEventsPublisher(publisher, schemas)
		if err != nil {
			return nil, err
		}
		events = eventsPublisher
		appLogger.Info("Favourite events will be published", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
	}

	// --- Content sources ---
	mealDB := contentdb.NewContentDBClient(contentdb.MealDB, contentdb.ClientConfig{
		BaseURL:              appConfig.Content.MealDBBaseURL,
		Timeout:              appConfig.Content.Timeout,
		OnBreakerStateChange: promMetrics.ObserveBreakerState,
	}, baseLogger)
	cocktailDB := contentdb.NewContentDBClient(contentdb.CocktailDB, contentdb.ClientConfig{
		BaseURL:              appConfig.Content.CocktailDBBaseURL,
		Timeout:              appConfig.Content.Timeout,
		OnBreakerStateChange: promMetrics.ObserveBreakerState,
	}, baseLogger)

	// --- Identity ---
	tokens, err := token_adapter.NewTokenService(appConfig.Auth.SigningKey)
	if err != nil {
		return nil, err
	}

	// --- Sessions and use cases ---
	syncCfg := synchronizer.Config{WriteTimeout: appConfig.Sync.WriteTimeout}
	sessions, err := session.NewRegistry(appConfig.Sync.SessionCacheSize, func() *synchronizer.Synchronizer {
		return synchronizer.NewSynchronizer(store, events, sseNotifier, promMetrics, syncCfg)
	})
	if err != nil {
		return nil, err
	}

	favouritesHandler := rest.NewFavouritesHandler(
		usecase.NewLoadFavouritesUseCase(sessions),
		usecase.NewGetFavouritesSnapshotUseCase(sessions),
		usecase.NewToggleFavouriteUseCase(sessions),
		usecase.NewAddFavouriteUseCase(sessions),
		usecase.NewRemoveFavouriteUseCase(sessions),
		usecase.NewGetUserFavouritesUseCase(store),
		sseNotifier,
	)
	contentHandler := rest.NewContentHandler(
		usecase.NewSearchItemsUseCase(sessions, mealDB, cocktailDB),
		usecase.NewGetItemDetailsUseCase(sessions, mealDB, cocktailDB),
	)
	userHandler := rest.NewUserHandler(
		usecase.NewRegisterUserUseCase(users),
		usecase.NewSignOutUseCase(sessions),
	)

	application.apiServer = rest.NewServer(rest.ServerConfig{
		Port:            appConfig.Rest.PORT,
		AllowedOrigins:  appConfig.Rest.AllowedOrigins,
		SearchRateLimit: appConfig.Rest.SearchRateLimit,
	}, rest.Handlers{
		Favourites: favouritesHandler,
		Content:    contentHandler,
		Users:      userHandler,
		Auth:       rest.NewAuthenticator(tokens),
		Metrics:    promMetrics,
	}, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	ok = true
	return application, nil
}

// Run blocks until SIGINT/SIGTERM or a server failure, then shuts down.
func (a *App) Run() error {
	defer a.close()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("Server failed, shutting down", err, nil)
		runErr = err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.apiServer.Stop(ctx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}
	return runErr
}

func (a *App) close() {
	a.logger.Info("Shutdown sequence initiated...", nil)

	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ publisher", err, nil)
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent may already be gone, so stdout it is.
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
