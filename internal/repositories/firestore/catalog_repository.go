package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/voltline/site/internal/domain"
	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/repositories"
)

const (
	categoriesCollection = "categories"
	faqsCollection       = "faqs"
	documentsCollection  = "documents"
	articlesCollection   = "articles"
)

type categoryDocument struct {
	Slug         string                  `firestore:"slug"`
	SortOrder    int                     `firestore:"sort_order"`
	Translations []categoryTranslationDB `firestore:"translations"`
	CreatedAt    time.Time               `firestore:"created_at"`
}

type categoryTranslationDB struct {
	Locale      string `firestore:"locale"`
	Name        string `firestore:"name"`
	Description string `firestore:"description,omitempty"`
}

type CategoryRepository struct {
	coll *pfirestore.Collection[categoryDocument]
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(provider *pfirestore.Provider) *CategoryRepository {
	return &CategoryRepository{coll: pfirestore.NewCollection[categoryDocument](provider, categoriesCollection)}
}

func (r *CategoryRepository) Insert(ctx context.Context, c domain.Category) error {
	doc := categoryDocument{Slug: c.Slug, SortOrder: c.SortOrder, CreatedAt: c.CreatedAt.UTC()}
	for _, tr := range c.Translations {
		doc.Translations = append(doc.Translations, categoryTranslationDB(tr))
	}
	return r.coll.Create(ctx, c.ID, doc)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id)
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	docs, err := r.coll.Query(ctx, bySortOrder)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		c := domain.Category{ID: doc.ID, Slug: doc.Data.Slug, SortOrder: doc.Data.SortOrder, CreatedAt: doc.Data.CreatedAt}
		for _, tr := range doc.Data.Translations {
			c.Translations = append(c.Translations, domain.CategoryTranslation(tr))
		}
		out = append(out, c)
	}
	return out, nil
}

type faqDocument struct {
	CategoryID   string             `firestore:"category_id"`
	SortOrder    int                `firestore:"sort_order"`
	IsActive     bool               `firestore:"is_active"`
	Translations []faqTranslationDB `firestore:"translations"`
	CreatedAt    time.Time          `firestore:"created_at"`
}

type faqTranslationDB struct {
	Locale   string `firestore:"locale"`
	Question string `firestore:"question"`
	Answer   string `firestore:"answer"`
}

type FAQRepository struct {
	coll *pfirestore.Collection[faqDocument]
}

var _ repositories.FAQRepository = (*FAQRepository)(nil)

func NewFAQRepository(provider *pfirestore.Provider) *FAQRepository {
	return &FAQRepository{coll: pfirestore.NewCollection[faqDocument](provider, faqsCollection)}
}

func (r *FAQRepository) Insert(ctx context.Context, f domain.FAQ) error {
	doc := faqDocument{CategoryID: f.CategoryID, SortOrder: f.SortOrder, IsActive: f.IsActive, CreatedAt: f.CreatedAt.UTC()}
	for _, tr := range f.Translations {
		doc.Translations = append(doc.Translations, faqTranslationDB(tr))
	}
	return r.coll.Create(ctx, f.ID, doc)
}

func (r *FAQRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id)
}

func (r *FAQRepository) List(ctx context.Context, categoryID string, activeOnly bool) ([]domain.FAQ, error) {
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		if categoryID != "" {
			q = q.Where("category_id", "==", categoryID)
		}
		if activeOnly {
			q = q.Where("is_active", "==", true)
		}
		return bySortOrder(q)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.FAQ, 0, len(docs))
	for _, doc := range docs {
		f := domain.FAQ{ID: doc.ID, CategoryID: doc.Data.CategoryID, SortOrder: doc.Data.SortOrder, IsActive: doc.Data.IsActive, CreatedAt: doc.Data.CreatedAt}
		for _, tr := range doc.Data.Translations {
			f.Translations = append(f.Translations, domain.FAQTranslation(tr))
		}
		out = append(out, f)
	}
	return out, nil
}

type documentDocument struct {
	Kind         string                  `firestore:"kind"`
	FileURL      string                  `firestore:"file_url"`
	FileSize     int64                   `firestore:"file_size"`
	IsActive     bool                    `firestore:"is_active"`
	SortOrder    int                     `firestore:"sort_order"`
	Translations []documentTranslationDB `firestore:"translations"`
	CreatedAt    time.Time               `firestore:"created_at"`
}

type documentTranslationDB struct {
	Locale      string `firestore:"locale"`
	Title       string `firestore:"title"`
	Description string `firestore:"description,omitempty"`
}

type DocumentRepository struct {
	coll *pfirestore.Collection[documentDocument]
}

var _ repositories.DocumentRepository = (*DocumentRepository)(nil)

func NewDocumentRepository(provider *pfirestore.Provider) *DocumentRepository {
	return &DocumentRepository{coll: pfirestore.NewCollection[documentDocument](provider, documentsCollection)}
}

func (r *DocumentRepository) Insert(ctx context.Context, d domain.Document) error {
	doc := documentDocument{Kind: d.Kind, FileURL: d.FileURL, FileSize: d.FileSize, IsActive: d.IsActive, SortOrder: d.SortOrder, CreatedAt: d.CreatedAt.UTC()}
	for _, tr := range d.Translations {
		doc.Translations = append(doc.Translations, documentTranslationDB(tr))
	}
	return r.coll.Create(ctx, d.ID, doc)
}

func (r *DocumentRepository) List(ctx context.Context, active *bool) ([]domain.Document, error) {
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		if active != nil {
			q = q.Where("is_active", "==", *active)
		}
		return bySortOrder(q)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		d := domain.Document{
			ID: doc.ID, Kind: doc.Data.Kind, FileURL: doc.Data.FileURL, FileSize: doc.Data.FileSize,
			IsActive: doc.Data.IsActive, SortOrder: doc.Data.SortOrder, CreatedAt: doc.Data.CreatedAt,
		}
		for _, tr := range doc.Data.Translations {
			d.Translations = append(d.Translations, domain.DocumentTranslation(tr))
		}
		out = append(out, d)
	}
	return out, nil
}

type articleDocument struct {
	Slug          string                 `firestore:"slug"`
	CoverImageURL string                 `firestore:"cover_image_url,omitempty"`
	IsPublished   bool                   `firestore:"is_published"`
	PublishedAt   time.Time              `firestore:"published_at"`
	Translations  []articleTranslationDB `firestore:"translations"`
	CreatedAt     time.Time              `firestore:"created_at"`
	UpdatedAt     time.Time              `firestore:"updated_at"`
}

type articleTranslationDB struct {
	Locale  string `firestore:"locale"`
	Title   string `firestore:"title"`
	Excerpt string `firestore:"excerpt,omitempty"`
	Body    string `firestore:"body"`
}

type ArticleRepository struct {
	coll *pfirestore.Collection[articleDocument]
}

var _ repositories.ArticleRepository = (*ArticleRepository)(nil)

func NewArticleRepository(provider *pfirestore.Provider) *ArticleRepository {
	return &ArticleRepository{coll: pfirestore.NewCollection[articleDocument](provider, articlesCollection)}
}

func (r *ArticleRepository) Insert(ctx context.Context, a domain.Article) error {
	if _, err := r.FindBySlug(ctx, a.Slug); err == nil {
		return pfirestore.Conflict("articles.insert", "article slug "+a.Slug)
	} else if !repositories.IsNotFound(err) {
		return err
	}
	doc := articleDocument{
		Slug: a.Slug, CoverImageURL: a.CoverImageURL, IsPublished: a.IsPublished,
		PublishedAt: a.PublishedAt.UTC(), CreatedAt: a.CreatedAt.UTC(), UpdatedAt: a.UpdatedAt.UTC(),
	}
	for _, tr := range a.Translations {
		doc.Translations = append(doc.Translations, articleTranslationDB(tr))
	}
	return r.coll.Create(ctx, a.ID, doc)
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (domain.Article, error) {
	doc, err := r.coll.First(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", slug)
	})
	if err != nil {
		return domain.Article{}, err
	}
	return decodeArticle(doc), nil
}

func (r *ArticleRepository) ListPublished(ctx context.Context, opts repositories.ListOptions) (domain.ListResult[domain.Article], error) {
	published := func(q firestore.Query) firestore.Query {
		return q.Where("is_published", "==", true)
	}
	total, err := r.coll.Count(ctx, published)
	if err != nil {
		return domain.ListResult[domain.Article]{}, err
	}
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		return window(published(q).OrderBy("published_at", firestore.Desc), opts)
	})
	if err != nil {
		return domain.ListResult[domain.Article]{}, err
	}
	items := make([]domain.Article, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeArticle(doc))
	}
	return domain.ListResult[domain.Article]{Items: items, Total: total}, nil
}

func decodeArticle(doc pfirestore.Document[articleDocument]) domain.Article {
	a := domain.Article{
		ID: doc.ID, Slug: doc.Data.Slug, CoverImageURL: doc.Data.CoverImageURL, IsPublished: doc.Data.IsPublished,
		PublishedAt: doc.Data.PublishedAt, CreatedAt: doc.Data.CreatedAt, UpdatedAt: doc.Data.UpdatedAt,
	}
	for _, tr := range doc.Data.Translations {
		a.Translations = append(a.Translations, domain.ArticleTranslation(tr))
	}
	return a
}

func bySortOrder(q firestore.Query) firestore.Query {
	return q.OrderBy("sort_order", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)
}

func window(q firestore.Query, opts repositories.ListOptions) firestore.Query {
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q
}
