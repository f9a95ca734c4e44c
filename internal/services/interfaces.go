// Package services holds the site's use cases. Handlers talk to the
// interfaces declared here; repositories and platform adapters are injected
// through each service's Deps struct.
package services

import (
	"context"
	"io"
	"time"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/formarray"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/storage"
)

// LoggerFunc receives structured service events. A nil hook discards them.
type LoggerFunc func(ctx context.Context, event string, fields map[string]any)

func nopLogger(context.Context, string, map[string]any) {}

type ProductService interface {
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (domain.Product, error)
	ReorderProduct(ctx context.Context, cmd ReorderProductCommand) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) (domain.ListResult[domain.Product], error)
	// Completeness reports per-locale translation status of a product.
	Completeness(ctx context.Context, productID string) (map[string]formarray.Status, error)
	// Showcase returns localized cards for carousels on public pages.
	Showcase(ctx context.Context, productType, requested string, limit int) ([]domain.ShowcaseProduct, error)
}

type CreateProductCommand struct {
	Product domain.Product
	ActorID string
}

type UpdateProductCommand struct {
	Product domain.Product
	ActorID string
}

// Product sub-collections addressable by ReorderProduct.
const (
	ProductFieldSpecifications  = "specifications"
	ProductFieldColorVariants   = "color_variants"
	ProductFieldFeaturePoints   = "feature_points"
	ProductFieldContentSections = "content_sections"
	ProductFieldDocuments       = "documents"
)

type ReorderProductCommand struct {
	ProductID string
	Field     string
	ActiveID  string
	OverID    string
}

type ProductListFilter struct {
	Type       string
	Active     *bool
	Pagination pagination.Params
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	ListFAQs(ctx context.Context, categoryID string, activeOnly bool) ([]domain.FAQ, error)
	CreateFAQ(ctx context.Context, faq domain.FAQ) (domain.FAQ, error)
	DeleteFAQ(ctx context.Context, faqID string) error

	ListDocuments(ctx context.Context, active *bool) ([]domain.Document, error)
	CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error)

	ListArticles(ctx context.Context, params pagination.Params) (domain.ListResult[domain.Article], error)
	GetArticle(ctx context.Context, slug string) (domain.Article, error)
	CreateArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	// RenderArticle returns the sanitised HTML body for the resolved locale.
	RenderArticle(article domain.Article, requested string) (domain.ArticleTranslation, string, locale.Meta)
}

type SectionService interface {
	ListSections(ctx context.Context, pageSlug string) ([]domain.Section, error)
	CreateSection(ctx context.Context, section domain.Section) (domain.Section, error)
	UpdateSection(ctx context.Context, section domain.Section) (domain.Section, error)
	DeleteSection(ctx context.Context, sectionID string) error
	// ReorderSections moves activeID to the position of overID.
	ReorderSections(ctx context.Context, pageSlug, activeID, overID string) ([]domain.Section, error)
}

// PageService composes public corporate pages from their sections.
type PageService interface {
	Compose(ctx context.Context, pageSlug, requested string) (ComposedPage, error)
	Invalidate(pageSlug string)
}

type MediaService interface {
	Upload(ctx context.Context, files []UploadFile, actorID string) []UploadResult
	List(ctx context.Context, params pagination.Params) (domain.ListResult[domain.MediaItem], error)
	Delete(ctx context.Context, mediaID string) error
}

// UploadFile is one entry of a multipart upload. Open is called when the
// file reaches the front of the queue.
type UploadFile struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadResult reports the final status of one queued file.
type UploadResult struct {
	FileName string
	Status   domain.UploadStatus
	Item     *domain.MediaItem
	Err      error
}

type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) (domain.ContactMessage, error)
	List(ctx context.Context, params pagination.Params) (domain.ListResult[domain.ContactMessage], error)
}

type ContactCommand struct {
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	Locale    string
	ProductID string
	RemoteIP  string
}

// ContactNotification is the Pub/Sub payload announcing a new contact
// message to the sales team.
type ContactNotification struct {
	MessageID   string    `json:"messageId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Message     string    `json:"message"`
	Locale      string    `json:"locale"`
	ProductID   string    `json:"productId,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ContactPublisher hands notifications to the messaging backend.
type ContactPublisher interface {
	PublishContact(ctx context.Context, msg ContactNotification) (string, error)
}

// MediaStore persists uploaded bytes and returns the public URL.
type MediaStore interface {
	Put(ctx context.Context, object string, r io.Reader, opts storage.PutOptions) (string, error)
	Delete(ctx context.Context, object string) error
}

type SystemService interface {
	HealthReport(ctx context.Context) (HealthReport, error)
}

// BuildInfo captures runtime metadata exposed via health endpoints.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

type HealthReport struct {
	domain.HealthReport
	Build  BuildInfo
	Uptime time.Duration
}
