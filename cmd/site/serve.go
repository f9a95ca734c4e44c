package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltline/site/internal/handlers"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/config"
	"github.com/voltline/site/internal/platform/i18n"
	"github.com/voltline/site/internal/platform/jobs"
	"github.com/voltline/site/internal/platform/observability"
	"github.com/voltline/site/internal/platform/secrets"
	platformstorage "github.com/voltline/site/internal/platform/storage"
	"github.com/voltline/site/internal/repositories"
	"github.com/voltline/site/internal/services"
)

const secretHealthReference = "secret://system-healthz"

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  `Serves the JSON API under /api, the public pages and the health probes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func runServe(ctx context.Context, envFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap(ctx, "site", envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	cfg := a.cfg
	ctx = observability.WithLogger(ctx, logger)

	content, err := a.contentServices()
	if err != nil {
		return err
	}

	var (
		mediaStore    services.MediaStore
		memoryUploads *platformstorage.MemoryStore
		storageClient *cloudstorage.Client
	)
	switch cfg.Store.Driver {
	case config.StoreMemory:
		memoryUploads = platformstorage.NewMemoryStore(cfg.Storage.PublicBaseURL)
		mediaStore = memoryUploads
	default:
		storageClient, err = cloudstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("initialise storage client: %w", err)
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		gcsStore, err := platformstorage.NewGCSStore(storageClient, cfg.Storage.MediaBucket, cfg.Storage.PublicBaseURL)
		if err != nil {
			return fmt.Errorf("initialise media store: %w", err)
		}
		mediaStore = gcsStore
	}

	publisher, stopPublisher, err := newContactPublisher(ctx, logger, cfg.PubSub)
	if err != nil {
		return err
	}
	defer stopPublisher()

	var authenticator *auth.Authenticator
	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	switch {
	case err == nil:
		authenticator = auth.NewAuthenticator(verifier)
	case cfg.Store.Driver == config.StoreMemory:
		logger.Warn("firebase verifier unavailable; staff endpoints will reject every request", zap.Error(err))
	default:
		return fmt.Errorf("initialise firebase verifier: %w", err)
	}

	media, err := services.NewMediaService(services.MediaServiceDeps{
		Media:    a.registry.Media(),
		Store:    mediaStore,
		MaxBytes: cfg.Storage.MaxUploadBytes,
		Meter:    observability.Meter(),
		Logger:   observability.EventLogger(logger.Named("media")),
	})
	if err != nil {
		return fmt.Errorf("initialise media service: %w", err)
	}

	contactDeps := services.ContactServiceDeps{
		Contact:       a.registry.Contact(),
		Supported:     cfg.Locale.Supported,
		RatePerMinute: cfg.Contact.RatePerMinute,
		Burst:         cfg.Contact.Burst,
		Logger:        observability.EventLogger(logger.Named("contact")),
	}
	if publisher != nil {
		contactDeps.Publisher = publisher
	}
	contact, err := services.NewContactService(contactDeps)
	if err != nil {
		return fmt.Errorf("initialise contact service: %w", err)
	}

	systemService, err := newSystemService(a.registry, a.secrets, storageClient, cfg.Storage.MediaBucket, a.buildInfo())
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	negotiator := i18n.NewNegotiator(cfg.Locale.Default, cfg.Locale.Supported)
	cache := handlers.CachePolicy{
		MaxAge:               cfg.Cache.StandardMaxAge,
		SMaxAge:              cfg.Cache.StandardSMaxAge,
		StaleWhileRevalidate: cfg.Cache.StaleWhileRevalidate,
	}

	projectID := firstNonEmpty(cfg.Firestore.ProjectID, cfg.Firebase.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		negotiator.Middleware,
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(a.buildInfo()),
		handlers.WithHealthSystemService(systemService),
	)

	productHandlers := handlers.NewProductHandlers(authenticator, content.products, a.resolver, cache)
	catalogHandlers := handlers.NewCatalogHandlers(authenticator, content.catalog, cache)
	sectionHandlers := handlers.NewSectionHandlers(authenticator, content.sections)
	mediaHandlers := handlers.NewMediaHandlers(authenticator, media, cfg.Storage.MaxUploadBytes)
	contactHandlers := handlers.NewContactHandlers(authenticator, contact)
	pageHandlers := handlers.NewPageHandlers(content.pages, negotiator, cache)

	opts := []handlers.Option{
		handlers.WithTrustedProxyHops(cfg.Server.TrustedProxyHops),
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAPIRoutes(
			productHandlers.Routes,
			catalogHandlers.Routes,
			sectionHandlers.Routes,
			mediaHandlers.Routes,
			contactHandlers.Routes,
		),
		handlers.WithPageRoutes(pageHandlers.Routes),
	}
	if memoryUploads != nil {
		opts = append(opts, handlers.WithUploads(handlers.UploadsHandler(memoryUploads)))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(opts...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("voltline site listening",
			zap.String("store", cfg.Store.Driver),
			zap.Strings("locales", cfg.Locale.Supported))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-shutdown:
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// newContactPublisher dials Pub/Sub when a project is configured. Without one
// contact messages are only stored.
func newContactPublisher(ctx context.Context, logger *zap.Logger, cfg config.PubSubConfig) (*jobs.PubSubContactPublisher, func(), error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		logger.Info("pubsub project not configured; contact notifications disabled")
		return nil, func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise pubsub client: %w", err)
	}
	publisher, err := jobs.NewPubSubContactPublisher(client.Topic(cfg.ContactTopic))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	stop := func() {
		publisher.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}
	logger.Info("contact notifications enabled", zap.String("topic", publisher.TopicName()))
	return publisher, stop, nil
}

func newSystemService(registry repositories.Registry, resolver *secrets.Resolver, storageClient *cloudstorage.Client, bucket string, build services.BuildInfo) (services.SystemService, error) {
	checks := make([]repositories.DependencyCheck, 0, 3)
	if registry != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:    "store",
			Timeout: 1500 * time.Millisecond,
			Check:   registry.Ping,
		})
	}
	if resolver != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:    "secretManager",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				_, err := resolver.ResolveSecret(ctx, secretHealthReference)
				if err == nil || errors.Is(err, secrets.ErrNotFound) {
					return nil
				}
				return err
			},
		})
	}
	if storageClient != nil && bucket != "" {
		handle := storageClient.Bucket(bucket)
		checks = append(checks, repositories.DependencyCheck{
			Name:    "storage",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				_, err := handle.Attrs(ctx)
				return err
			},
		})
	}
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	repo, err := repositories.NewDependencyHealth(checks)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Clock:            time.Now,
		Build:            build,
	})
}
