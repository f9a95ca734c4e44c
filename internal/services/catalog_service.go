package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/textutil"
	"github.com/voltline/site/internal/repositories"
)

const defaultArticleLimit = 12

var documentKinds = map[string]struct{}{
	domain.DocumentKindDatasheet:   {},
	domain.DocumentKindManual:      {},
	domain.DocumentKindCertificate: {},
}

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Categories repositories.CategoryRepository
	FAQs       repositories.FAQRepository
	Documents  repositories.DocumentRepository
	Articles   repositories.ArticleRepository
	Locales    locale.Resolver
	Supported  []string
	// Markdown converts an article body to sanitised HTML.
	Markdown func(string) string
	Clock    func() time.Time
	IDGen    func() string
}

type catalogService struct {
	categories repositories.CategoryRepository
	faqs       repositories.FAQRepository
	documents  repositories.DocumentRepository
	articles   repositories.ArticleRepository
	resolver   locale.Resolver
	supported  map[string]struct{}
	markdown   func(string) string
	clock      func() time.Time
	newID      func() string
}

var _ CatalogService = (*catalogService)(nil)

func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Categories == nil || deps.FAQs == nil || deps.Documents == nil || deps.Articles == nil {
		return nil, errors.New("catalog service: category, faq, document and article repositories are required")
	}
	if deps.Markdown == nil {
		return nil, errors.New("catalog service: markdown renderer is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	supported := make(map[string]struct{}, len(deps.Supported))
	for _, code := range deps.Supported {
		supported[domain.NormalizeLocale(code)] = struct{}{}
	}
	return &catalogService{
		categories: deps.Categories,
		faqs:       deps.FAQs,
		documents:  deps.Documents,
		articles:   deps.Articles,
		resolver:   deps.Locales,
		supported:  supported,
		markdown:   deps.Markdown,
		clock:      func() time.Time { return clock().UTC() },
		newID:      idGen,
	}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	fields := fieldErrors{}
	if !textutil.IsSlug(category.Slug) {
		fields.add("slug", "must be lowercase letters, digits and hyphens")
	}
	for i := range category.Translations {
		tr := &category.Translations[i]
		tr.Locale = domain.NormalizeLocale(tr.Locale)
		tr.Name = strings.TrimSpace(tr.Name)
		s.checkLocale(fields, fmt.Sprintf("translations[%d]", i), tr.Locale)
		if tr.Name == "" {
			fields.add(fmt.Sprintf("translations[%d].name", i), "required")
		}
	}
	if len(category.Translations) == 0 {
		fields.add("translations", "at least one translation is required")
	}
	if err := fields.err(ErrCatalogInvalid); err != nil {
		return domain.Category{}, err
	}
	category.ID = s.newID()
	category.CreatedAt = s.clock()
	if err := s.categories.Insert(ctx, category); err != nil {
		if repositories.IsConflict(err) {
			return domain.Category{}, fieldErrors{"slug": "already in use"}.err(ErrCatalogInvalid)
		}
		return domain.Category{}, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
		}
		return err
	}
	return nil
}

func (s *catalogService) ListFAQs(ctx context.Context, categoryID string, activeOnly bool) ([]domain.FAQ, error) {
	return s.faqs.List(ctx, strings.TrimSpace(categoryID), activeOnly)
}

func (s *catalogService) CreateFAQ(ctx context.Context, faq domain.FAQ) (domain.FAQ, error) {
	faq.CategoryID = strings.TrimSpace(faq.CategoryID)
	fields := fieldErrors{}
	if len(faq.Translations) == 0 {
		fields.add("translations", "at least one translation is required")
	}
	for i := range faq.Translations {
		tr := &faq.Translations[i]
		tr.Locale = domain.NormalizeLocale(tr.Locale)
		tr.Question = strings.TrimSpace(tr.Question)
		tr.Answer = strings.TrimSpace(tr.Answer)
		prefix := fmt.Sprintf("translations[%d]", i)
		s.checkLocale(fields, prefix, tr.Locale)
		if tr.Question == "" {
			fields.add(prefix+".question", "required")
		}
		if tr.Answer == "" {
			fields.add(prefix+".answer", "required")
		}
	}
	if err := fields.err(ErrCatalogInvalid); err != nil {
		return domain.FAQ{}, err
	}
	faq.ID = s.newID()
	faq.CreatedAt = s.clock()
	if err := s.faqs.Insert(ctx, faq); err != nil {
		return domain.FAQ{}, err
	}
	return faq, nil
}

func (s *catalogService) DeleteFAQ(ctx context.Context, faqID string) error {
	faqID = strings.TrimSpace(faqID)
	if err := s.faqs.Delete(ctx, faqID); err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrFAQNotFound, faqID)
		}
		return err
	}
	return nil
}

func (s *catalogService) ListDocuments(ctx context.Context, active *bool) ([]domain.Document, error) {
	return s.documents.List(ctx, active)
}

func (s *catalogService) CreateDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	doc.Kind = strings.ToLower(strings.TrimSpace(doc.Kind))
	doc.FileURL = strings.TrimSpace(doc.FileURL)
	fields := fieldErrors{}
	if _, ok := documentKinds[doc.Kind]; !ok {
		fields.add("kind", "unknown document kind")
	}
	if doc.FileURL == "" {
		fields.add("file_url", "required")
	}
	if doc.FileSize < 0 {
		fields.add("file_size", "must not be negative")
	}
	for i := range doc.Translations {
		tr := &doc.Translations[i]
		tr.Locale = domain.NormalizeLocale(tr.Locale)
		tr.Title = strings.TrimSpace(tr.Title)
		s.checkLocale(fields, fmt.Sprintf("translations[%d]", i), tr.Locale)
		if tr.Title == "" {
			fields.add(fmt.Sprintf("translations[%d].title", i), "required")
		}
	}
	if len(doc.Translations) == 0 {
		fields.add("translations", "at least one translation is required")
	}
	if err := fields.err(ErrCatalogInvalid); err != nil {
		return domain.Document{}, err
	}
	doc.ID = s.newID()
	doc.CreatedAt = s.clock()
	if err := s.documents.Insert(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *catalogService) ListArticles(ctx context.Context, params pagination.Params) (domain.ListResult[domain.Article], error) {
	if params.Limit <= 0 {
		params.Limit = defaultArticleLimit
	}
	return s.articles.ListPublished(ctx, repositories.ListOptions{Offset: params.Offset(), Limit: params.Limit})
}

// GetArticle hides unpublished articles.
func (s *catalogService) GetArticle(ctx context.Context, slug string) (domain.Article, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, slug)
		}
		return domain.Article{}, err
	}
	if !article.IsPublished {
		return domain.Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, slug)
	}
	return article, nil
}

func (s *catalogService) CreateArticle(ctx context.Context, article domain.Article) (domain.Article, error) {
	article.Slug = strings.ToLower(strings.TrimSpace(article.Slug))
	article.CoverImageURL = strings.TrimSpace(article.CoverImageURL)
	fields := fieldErrors{}
	if !textutil.IsSlug(article.Slug) {
		fields.add("slug", "must be lowercase letters, digits and hyphens")
	}
	if len(article.Translations) == 0 {
		fields.add("translations", "at least one translation is required")
	}
	for i := range article.Translations {
		tr := &article.Translations[i]
		tr.Locale = domain.NormalizeLocale(tr.Locale)
		tr.Title = strings.TrimSpace(tr.Title)
		prefix := fmt.Sprintf("translations[%d]", i)
		s.checkLocale(fields, prefix, tr.Locale)
		if tr.Title == "" {
			fields.add(prefix+".title", "required")
		}
	}
	if err := fields.err(ErrCatalogInvalid); err != nil {
		return domain.Article{}, err
	}

	now := s.clock()
	article.ID = s.newID()
	article.CreatedAt, article.UpdatedAt = now, now
	if article.IsPublished && article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}
	if err := s.articles.Insert(ctx, article); err != nil {
		if repositories.IsConflict(err) {
			return domain.Article{}, fmt.Errorf("%w: %s", ErrArticleConflict, article.Slug)
		}
		return domain.Article{}, err
	}
	return article, nil
}

func (s *catalogService) RenderArticle(article domain.Article, requested string) (domain.ArticleTranslation, string, locale.Meta) {
	tr, meta, _ := locale.Resolve(s.resolver, article.Translations, requested)
	return tr, s.markdown(tr.Body), meta
}

func (s *catalogService) checkLocale(fields fieldErrors, prefix, code string) {
	if len(s.supported) == 0 {
		return
	}
	if _, ok := s.supported[code]; !ok {
		fields.add(prefix+".locale", "unsupported locale")
	}
}
