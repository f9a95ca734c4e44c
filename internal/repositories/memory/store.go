package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/repositories"
)

// Store is an in-memory repositories.Registry.
type Store struct {
	products   *ProductRepository
	sections   *SectionRepository
	categories *CategoryRepository
	faqs       *FAQRepository
	documents  *DocumentRepository
	articles   *ArticleRepository
	media      *MediaRepository
	contact    *ContactRepository
}

var _ repositories.Registry = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		products:   NewProductRepository(),
		sections:   NewSectionRepository(),
		categories: &CategoryRepository{items: map[string]domain.Category{}},
		faqs:       &FAQRepository{items: map[string]domain.FAQ{}},
		documents:  &DocumentRepository{items: map[string]domain.Document{}},
		articles:   &ArticleRepository{items: map[string]domain.Article{}},
		media:      &MediaRepository{items: map[string]domain.MediaItem{}},
		contact:    &ContactRepository{items: map[string]domain.ContactMessage{}},
	}
}

func (s *Store) Close(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error  { return nil }

func (s *Store) Products() repositories.ProductRepository    { return s.products }
func (s *Store) Sections() repositories.SectionRepository    { return s.sections }
func (s *Store) Categories() repositories.CategoryRepository { return s.categories }
func (s *Store) FAQs() repositories.FAQRepository            { return s.faqs }
func (s *Store) Documents() repositories.DocumentRepository  { return s.documents }
func (s *Store) Articles() repositories.ArticleRepository    { return s.articles }
func (s *Store) Media() repositories.MediaRepository         { return s.media }
func (s *Store) Contact() repositories.ContactRepository     { return s.contact }

// window applies opts to items already in final order.
func window[T any](items []T, opts repositories.ListOptions) domain.ListResult[T] {
	total := len(items)
	start := min(max(opts.Offset, 0), total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return domain.ListResult[T]{Items: append([]T(nil), items[start:end]...), Total: total}
}

type CategoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Category
}

func (r *CategoryRepository) Insert(_ context.Context, category domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[category.ID]; ok {
		return conflict("categories.insert", "category", category.ID)
	}
	category.Translations = append([]domain.CategoryTranslation(nil), category.Translations...)
	r.items[category.ID] = category
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("categories.delete", "category", id)
	}
	delete(r.items, id)
	return nil
}

func (r *CategoryRepository) List(context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.items))
	for _, c := range r.items {
		c.Translations = append([]domain.CategoryTranslation(nil), c.Translations...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

type FAQRepository struct {
	mu    sync.RWMutex
	items map[string]domain.FAQ
}

func (r *FAQRepository) Insert(_ context.Context, faq domain.FAQ) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[faq.ID]; ok {
		return conflict("faqs.insert", "faq", faq.ID)
	}
	faq.Translations = append([]domain.FAQTranslation(nil), faq.Translations...)
	r.items[faq.ID] = faq
	return nil
}

func (r *FAQRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("faqs.delete", "faq", id)
	}
	delete(r.items, id)
	return nil
}

func (r *FAQRepository) List(_ context.Context, categoryID string, activeOnly bool) ([]domain.FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FAQ, 0, len(r.items))
	for _, f := range r.items {
		if categoryID != "" && f.CategoryID != categoryID {
			continue
		}
		if activeOnly && !f.IsActive {
			continue
		}
		f.Translations = append([]domain.FAQTranslation(nil), f.Translations...)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

type DocumentRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Document
}

func (r *DocumentRepository) Insert(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[doc.ID]; ok {
		return conflict("documents.insert", "document", doc.ID)
	}
	doc.Translations = append([]domain.DocumentTranslation(nil), doc.Translations...)
	r.items[doc.ID] = doc
	return nil
}

func (r *DocumentRepository) List(_ context.Context, active *bool) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Document, 0, len(r.items))
	for _, d := range r.items {
		if active != nil && d.IsActive != *active {
			continue
		}
		d.Translations = append([]domain.DocumentTranslation(nil), d.Translations...)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

type ArticleRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Article
}

func (r *ArticleRepository) Insert(_ context.Context, article domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID == article.ID || existing.Slug == article.Slug {
			return conflict("articles.insert", "article", article.Slug)
		}
	}
	article.Translations = append([]domain.ArticleTranslation(nil), article.Translations...)
	r.items[article.ID] = article
	return nil
}

func (r *ArticleRepository) FindBySlug(_ context.Context, slug string) (domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if a.Slug == slug {
			a.Translations = append([]domain.ArticleTranslation(nil), a.Translations...)
			return a, nil
		}
	}
	return domain.Article{}, notFound("articles.find", "article", slug)
}

func (r *ArticleRepository) ListPublished(_ context.Context, opts repositories.ListOptions) (domain.ListResult[domain.Article], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Article, 0, len(r.items))
	for _, a := range r.items {
		if !a.IsPublished {
			continue
		}
		a.Translations = append([]domain.ArticleTranslation(nil), a.Translations...)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return window(out, opts), nil
}

type MediaRepository struct {
	mu    sync.RWMutex
	items map[string]domain.MediaItem
}

func (r *MediaRepository) Insert(_ context.Context, item domain.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		return conflict("media.insert", "media", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *MediaRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("media.delete", "media", id)
	}
	delete(r.items, id)
	return nil
}

func (r *MediaRepository) FindByID(_ context.Context, id string) (domain.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return domain.MediaItem{}, notFound("media.find", "media", id)
	}
	return item, nil
}

func (r *MediaRepository) List(_ context.Context, opts repositories.ListOptions) (domain.ListResult[domain.MediaItem], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MediaItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return window(out, opts), nil
}

type ContactRepository struct {
	mu    sync.RWMutex
	items map[string]domain.ContactMessage
}

func (r *ContactRepository) Insert(_ context.Context, msg domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[msg.ID]; ok {
		return conflict("contact.insert", "message", msg.ID)
	}
	r.items[msg.ID] = msg
	return nil
}

func (r *ContactRepository) List(_ context.Context, opts repositories.ListOptions) (domain.ListResult[domain.ContactMessage], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ContactMessage, 0, len(r.items))
	for _, msg := range r.items {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return window(out, opts), nil
}
