// Package repositories declares the persistence contracts services depend on.
package repositories

import (
	"context"

	"github.com/voltline/site/internal/domain"
)

// Registry exposes every repository plus lifecycle hooks for wiring.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Sections() SectionRepository
	Categories() CategoryRepository
	FAQs() FAQRepository
	Documents() DocumentRepository
	Articles() ArticleRepository
	Media() MediaRepository
	Contact() ContactRepository
	Ping(ctx context.Context) error
}

// RepositoryError classifies persistence failures for services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ListOptions selects a window of an ordered listing.
type ListOptions struct {
	Offset int
	Limit  int
}

// ProductRepository stores products. Creation is split into steps so the
// service can compensate when a later step fails.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	InsertTranslations(ctx context.Context, productID string, translations []domain.ProductTranslation) error
	InsertSpecification(ctx context.Context, productID string, spec domain.Specification) error
	LinkFeature(ctx context.Context, productID string, feature domain.FeaturePoint) error
	// Replace overwrites the product and all of its sub-collections.
	Replace(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (domain.Product, error)
	// List orders by sort order ascending, then id.
	List(ctx context.Context, filter domain.ProductFilter, opts ListOptions) (domain.ListResult[domain.Product], error)
}

type SectionRepository interface {
	Insert(ctx context.Context, section domain.Section) error
	Update(ctx context.Context, section domain.Section) error
	Delete(ctx context.Context, sectionID string) error
	FindByID(ctx context.Context, sectionID string) (domain.Section, error)
	// ListByPage returns the page's sections ordered by sort order.
	ListByPage(ctx context.Context, pageSlug string, activeOnly bool) ([]domain.Section, error)
	// Reorder assigns sort orders following ids atomically.
	Reorder(ctx context.Context, pageSlug string, ids []string) error
}

type CategoryRepository interface {
	Insert(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, categoryID string) error
	List(ctx context.Context) ([]domain.Category, error)
}

type FAQRepository interface {
	Insert(ctx context.Context, faq domain.FAQ) error
	Delete(ctx context.Context, faqID string) error
	// List filters by category when categoryID is non-empty.
	List(ctx context.Context, categoryID string, activeOnly bool) ([]domain.FAQ, error)
}

type DocumentRepository interface {
	Insert(ctx context.Context, doc domain.Document) error
	List(ctx context.Context, active *bool) ([]domain.Document, error)
}

type ArticleRepository interface {
	Insert(ctx context.Context, article domain.Article) error
	FindBySlug(ctx context.Context, slug string) (domain.Article, error)
	// ListPublished orders by publish time, newest first.
	ListPublished(ctx context.Context, opts ListOptions) (domain.ListResult[domain.Article], error)
}

type MediaRepository interface {
	Insert(ctx context.Context, item domain.MediaItem) error
	Delete(ctx context.Context, mediaID string) error
	FindByID(ctx context.Context, mediaID string) (domain.MediaItem, error)
	// List orders by creation time, newest first.
	List(ctx context.Context, opts ListOptions) (domain.ListResult[domain.MediaItem], error)
}

type ContactRepository interface {
	Insert(ctx context.Context, msg domain.ContactMessage) error
	List(ctx context.Context, opts ListOptions) (domain.ListResult[domain.ContactMessage], error)
}

// HealthRepository reports dependency status for readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
