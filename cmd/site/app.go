package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/config"
	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/platform/observability"
	"github.com/voltline/site/internal/platform/secrets"
	"github.com/voltline/site/internal/repositories"
	firestoreRepo "github.com/voltline/site/internal/repositories/firestore"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/sections"
	"github.com/voltline/site/internal/services"
)

// app holds what every subcommand needs: logger, configuration, secrets
// and the repository registry.
type app struct {
	logger    *zap.Logger
	cfg       config.Config
	secrets   *secrets.Resolver
	registry  repositories.Registry
	resolver  locale.Resolver
	startedAt time.Time
}

func bootstrap(ctx context.Context, name, envFile string) (*app, error) {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("initialise logger: %w", err)
	}
	logger := baseLogger.Named(name)

	// The secret resolver is needed before config.Load, so its settings come
	// straight from the process environment.
	projectID := firstNonEmpty(os.Getenv("SITE_SECRETS_PROJECT_ID"), os.Getenv("SITE_FIREBASE_PROJECT_ID"))
	resolver := secrets.NewResolver(ctx, projectID, []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(firstNonEmpty(os.Getenv("SITE_SECRETS_FALLBACK_FILE"), ".secrets.local")),
	})

	cfg, err := config.Load(ctx,
		config.WithEnvFile(envFile),
		config.WithSecretResolver(resolver),
	)
	if err != nil {
		_ = resolver.Close()
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Error("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	policy, err := locale.ParsePolicy(cfg.Locale.Fallback)
	if err != nil {
		_ = resolver.Close()
		return nil, err
	}

	a := &app{
		logger:    logger,
		cfg:       cfg,
		secrets:   resolver,
		resolver:  locale.NewResolver(cfg.Locale.Default, policy),
		startedAt: startedAt,
	}
	if err := a.openRegistry(ctx); err != nil {
		_ = resolver.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openRegistry(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.StoreMemory:
		a.logger.Warn("using in-memory store; content is lost on restart")
		a.registry = memory.NewStore()
		return nil
	case config.StoreFirestore:
		provider := pfirestore.NewProvider(a.cfg.Firestore, pfirestore.WithDialTimeout(10*time.Second))
		if _, err := provider.Client(ctx); err != nil {
			return fmt.Errorf("initialise firestore client: %w", err)
		}
		registry, err := firestoreRepo.NewRegistry(provider)
		if err != nil {
			_ = provider.Close()
			return fmt.Errorf("initialise firestore repositories: %w", err)
		}
		a.registry = registry
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
}

func (a *app) Close() {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.registry != nil {
		if err := a.registry.Close(closeCtx); err != nil {
			a.logger.Warn("store close error", zap.Error(err))
		}
	}
	if err := a.secrets.Close(); err != nil {
		a.logger.Warn("secret resolver close error", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// contentServices are the services shared by serve and seed.
type contentServices struct {
	products services.ProductService
	catalog  services.CatalogService
	sections services.SectionService
	pages    services.PageService
	renderer *sections.Renderer
}

func (a *app) contentServices() (contentServices, error) {
	var out contentServices
	supported := a.cfg.Locale.Supported
	out.renderer = sections.NewRenderer(a.resolver)

	products, err := services.NewProductService(services.ProductServiceDeps{
		Products:  a.registry.Products(),
		Locales:   a.resolver,
		Supported: supported,
		Logger:    observability.EventLogger(a.logger.Named("products")),
	})
	if err != nil {
		return out, fmt.Errorf("initialise product service: %w", err)
	}
	out.products = products

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Categories: a.registry.Categories(),
		FAQs:       a.registry.FAQs(),
		Documents:  a.registry.Documents(),
		Articles:   a.registry.Articles(),
		Locales:    a.resolver,
		Supported:  supported,
		Markdown:   out.renderer.Markdown,
	})
	if err != nil {
		return out, fmt.Errorf("initialise catalog service: %w", err)
	}
	out.catalog = catalog

	pages, err := services.NewPageService(services.PageServiceDeps{
		Sections:  a.registry.Sections(),
		Products:  products,
		FAQs:      a.registry.FAQs(),
		Documents: a.registry.Documents(),
		Renderer:  out.renderer,
		Locales:   a.resolver,
		CacheTTL:  a.cfg.Cache.PageTTL,
		Logger:    observability.EventLogger(a.logger.Named("pages")),
	})
	if err != nil {
		return out, fmt.Errorf("initialise page service: %w", err)
	}
	out.pages = pages

	pageSections, err := services.NewSectionService(services.SectionServiceDeps{
		Sections:  a.registry.Sections(),
		Supported: supported,
		OnChange:  pages.Invalidate,
	})
	if err != nil {
		return out, fmt.Errorf("initialise section service: %w", err)
	}
	out.sections = pageSections
	return out, nil
}

func (a *app) buildInfo() services.BuildInfo {
	environment := strings.TrimSpace(a.cfg.Security.Environment)
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     firstNonEmpty(os.Getenv("SITE_BUILD_VERSION"), version),
		CommitSHA:   firstNonEmpty(os.Getenv("SITE_BUILD_COMMIT_SHA"), commit),
		Environment: environment,
		StartedAt:   a.startedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
