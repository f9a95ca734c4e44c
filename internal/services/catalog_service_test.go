package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/sections"
)

func newTestCatalogService(t *testing.T) CatalogService {
	t.Helper()
	registry := memory.NewStore()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Categories: registry.Categories(),
		FAQs:       registry.FAQs(),
		Documents:  registry.Documents(),
		Articles:   registry.Articles(),
		Locales:    testResolver,
		Supported:  testSupported,
		Markdown:   sections.NewRenderer(testResolver).Markdown,
		Clock:      fixedClock(testNow),
		IDGen:      sequentialIDs("cat"),
	})
	require.NoError(t, err)
	return svc
}

func TestCatalogService_CategoriesAndFAQs(t *testing.T) {
	svc := newTestCatalogService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, domain.Category{
		Slug:         "Instalace",
		Translations: []domain.CategoryTranslation{{Locale: "cs", Name: "Instalace"}},
	})
	require.NoError(t, err)
	require.Equal(t, "instalace", category.Slug)

	_, err = svc.CreateCategory(ctx, domain.Category{
		Slug:         "bez prekladu",
		Translations: []domain.CategoryTranslation{{Locale: "xx", Name: ""}},
	})
	require.ErrorIs(t, err, ErrCatalogInvalid)
	fields := FieldErrors(err)
	require.Contains(t, fields, "slug")
	require.Contains(t, fields, "translations[0].locale")
	require.Contains(t, fields, "translations[0].name")

	faq, err := svc.CreateFAQ(ctx, domain.FAQ{
		CategoryID:   category.ID,
		IsActive:     true,
		Translations: []domain.FAQTranslation{{Locale: "cs", Question: "Cena?", Answer: "Od 19 900 Kč."}},
	})
	require.NoError(t, err)

	listed, err := svc.ListFAQs(ctx, category.ID, true)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.DeleteFAQ(ctx, faq.ID))
	require.ErrorIs(t, svc.DeleteFAQ(ctx, faq.ID), ErrFAQNotFound)
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
	require.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), ErrCategoryNotFound)
}

func TestCatalogService_DocumentsFilterByActive(t *testing.T) {
	svc := newTestCatalogService(t)
	ctx := context.Background()

	for _, active := range []bool{true, false} {
		_, err := svc.CreateDocument(ctx, domain.Document{
			Kind:         "Datasheet",
			FileURL:      "https://cdn.example.cz/ds.pdf",
			IsActive:     active,
			Translations: []domain.DocumentTranslation{{Locale: "cs", Title: "Datový list"}},
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateDocument(ctx, domain.Document{Kind: "brochure"})
	require.ErrorIs(t, err, ErrCatalogInvalid)
	require.Contains(t, FieldErrors(err), "kind")
	require.Contains(t, FieldErrors(err), "file_url")

	active := true
	docs, err := svc.ListDocuments(ctx, &active)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	all, err := svc.ListDocuments(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestCatalogService_Articles(t *testing.T) {
	svc := newTestCatalogService(t)
	ctx := context.Background()

	published, err := svc.CreateArticle(ctx, domain.Article{
		Slug:        "jak-vybrat-wallbox",
		IsPublished: true,
		Translations: []domain.ArticleTranslation{
			{Locale: "cs", Title: "Jak vybrat wallbox", Body: "# Úvod\n\n<script>x()</script>Text"},
		},
	})
	require.NoError(t, err)
	require.True(t, published.PublishedAt.Equal(testNow))

	_, err = svc.CreateArticle(ctx, domain.Article{
		Slug:         "koncept",
		Translations: []domain.ArticleTranslation{{Locale: "cs", Title: "Koncept"}},
	})
	require.NoError(t, err)

	_, err = svc.GetArticle(ctx, "koncept")
	require.ErrorIs(t, err, ErrArticleNotFound)
	_, err = svc.CreateArticle(ctx, domain.Article{
		Slug:         "jak-vybrat-wallbox",
		Translations: []domain.ArticleTranslation{{Locale: "cs", Title: "Duplicate"}},
	})
	require.ErrorIs(t, err, ErrArticleConflict)

	list, err := svc.ListArticles(ctx, pagination.Params{Page: 1})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	article, err := svc.GetArticle(ctx, "jak-vybrat-wallbox")
	require.NoError(t, err)
	tr, body, meta := svc.RenderArticle(article, "de")
	require.Equal(t, "Jak vybrat wallbox", tr.Title)
	require.True(t, meta.FallbackUsed)
	require.Contains(t, body, "<h1")
	require.False(t, strings.Contains(body, "<script"))
}
