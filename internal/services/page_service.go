package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/repositories"
	"github.com/voltline/site/internal/sections"
)

const (
	pageLoggerEventSectionDropped = "page.section.dropped"
	pageLoggerEventComposed       = "page.composed"
	defaultShowcaseFetch          = 24
	composeTimeout                = 10 * time.Second
)

// ComposedPage is a page ready for the HTML layout.
type ComposedPage struct {
	Slug        string
	Locale      string
	Title       string
	Sections    []ComposedSection
	GeneratedAt time.Time
}

type ComposedSection struct {
	ID        string
	Type      sections.Type
	Component templ.Component
}

// PageServiceDeps bundles constructor inputs for the page service.
type PageServiceDeps struct {
	Sections  repositories.SectionRepository
	Products  ProductService
	FAQs      repositories.FAQRepository
	Documents repositories.DocumentRepository
	Renderer  *sections.Renderer
	Locales   locale.Resolver
	// CacheTTL keeps composed pages for this long. Zero disables caching.
	CacheTTL time.Duration
	Clock    func() time.Time
	Logger   LoggerFunc
}

type pageService struct {
	sections  repositories.SectionRepository
	products  ProductService
	faqs      repositories.FAQRepository
	documents repositories.DocumentRepository
	renderer  *sections.Renderer
	resolver  locale.Resolver
	ttl       time.Duration
	clock     func() time.Time
	logger    LoggerFunc

	group singleflight.Group
	mu    sync.Mutex
	cache map[pageKey]cachedPage
	// generations counts invalidations per slug. A composition started
	// under an older generation is returned to its callers but not cached.
	generations map[string]uint64
}

type pageKey struct {
	slug   string
	locale string
}

type cachedPage struct {
	page    ComposedPage
	expires time.Time
}

var _ PageService = (*pageService)(nil)

func NewPageService(deps PageServiceDeps) (PageService, error) {
	if deps.Sections == nil || deps.Products == nil || deps.FAQs == nil || deps.Documents == nil {
		return nil, errors.New("page service: section, product, faq and document sources are required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("page service: renderer is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}
	return &pageService{
		sections:    deps.Sections,
		products:    deps.Products,
		faqs:        deps.FAQs,
		documents:   deps.Documents,
		renderer:    deps.Renderer,
		resolver:    deps.Locales,
		ttl:         deps.CacheTTL,
		clock:       clock,
		logger:      logger,
		cache:       map[pageKey]cachedPage{},
		generations: map[string]uint64{},
	}, nil
}

// Compose renders the active sections of pageSlug. Concurrent requests for
// the same page and locale share one composition, which runs detached from
// any single caller's cancellation.
func (s *pageService) Compose(ctx context.Context, pageSlug, requested string) (ComposedPage, error) {
	key := pageKey{slug: strings.ToLower(strings.TrimSpace(pageSlug)), locale: domain.NormalizeLocale(requested)}
	if key.locale == "" {
		key.locale = s.resolver.DefaultLocale()
	}

	page, gen, ok := s.cached(key)
	if ok {
		return page, nil
	}

	flight := fmt.Sprintf("%s\x00%s\x00%d", key.slug, key.locale, gen)
	results := s.group.DoChan(flight, func() (any, error) {
		composeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), composeTimeout)
		defer cancel()
		page, err := s.compose(composeCtx, key)
		if err != nil {
			return ComposedPage{}, err
		}
		s.store(key, gen, page)
		return page, nil
	})
	select {
	case <-ctx.Done():
		return ComposedPage{}, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return ComposedPage{}, res.Err
		}
		return res.Val.(ComposedPage), nil
	}
}

// Invalidate drops every cached locale of pageSlug. Compositions already in
// flight finish for their callers but are not cached.
func (s *pageService) Invalidate(pageSlug string) {
	pageSlug = strings.ToLower(strings.TrimSpace(pageSlug))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[pageSlug]++
	for key := range s.cache {
		if key.slug == pageSlug {
			delete(s.cache, key)
		}
	}
}

// cached returns the live entry for key, or the slug's current generation on
// a miss.
func (s *pageService) cached(key pageKey) (ComposedPage, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.generations[key.slug]
	if s.ttl <= 0 {
		return ComposedPage{}, gen, false
	}
	entry, ok := s.cache[key]
	if !ok {
		return ComposedPage{}, gen, false
	}
	if !s.clock().Before(entry.expires) {
		delete(s.cache, key)
		return ComposedPage{}, gen, false
	}
	return entry.page, gen, true
}

func (s *pageService) store(key pageKey, gen uint64, page ComposedPage) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[key.slug] != gen {
		return
	}
	s.cache[key] = cachedPage{page: page, expires: s.clock().Add(s.ttl)}
}

// pageNeeds lists what the page's sections load besides themselves.
type pageNeeds struct {
	productTypes map[string]struct{}
	faqs         bool
	documents    bool
}

func (s *pageService) compose(ctx context.Context, key pageKey) (ComposedPage, error) {
	rows, err := s.sections.ListByPage(ctx, key.slug, true)
	if err != nil {
		return ComposedPage{}, err
	}
	if len(rows) == 0 {
		return ComposedPage{}, fmt.Errorf("%w: %s", ErrPageNotFound, key.slug)
	}

	variants := make([]sections.Variant, 0, len(rows))
	needs := pageNeeds{productTypes: map[string]struct{}{}}
	for _, row := range rows {
		v, err := sections.Parse(row)
		if err != nil {
			s.logger(ctx, pageLoggerEventSectionDropped, map[string]any{"page": key.slug, "sectionId": row.ID, "type": row.Type, "error": err})
			continue
		}
		switch v := v.(type) {
		case sections.Unknown:
			s.logger(ctx, pageLoggerEventSectionDropped, map[string]any{"page": key.slug, "sectionId": row.ID, "type": row.Type, "reason": "unknown type"})
			continue
		case sections.ProductShowcase:
			needs.productTypes[v.ProductType] = struct{}{}
		case sections.ProductSelector:
			needs.productTypes[v.ProductType] = struct{}{}
		case sections.FAQ:
			needs.faqs = true
		case sections.Documents:
			needs.documents = true
		}
		variants = append(variants, v)
	}

	var (
		products  = make(map[string][]domain.ShowcaseProduct, len(needs.productTypes))
		faqs      []sections.FAQEntry
		documents []sections.DocumentLink
		mu        sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	for productType := range needs.productTypes {
		g.Go(func() error {
			cards, err := s.products.Showcase(gctx, productType, key.locale, defaultShowcaseFetch)
			if err != nil {
				return fmt.Errorf("load %q products: %w", productType, err)
			}
			mu.Lock()
			products[productType] = cards
			mu.Unlock()
			return nil
		})
	}
	if needs.faqs {
		g.Go(func() error {
			items, err := s.faqs.List(gctx, "", true)
			if err != nil {
				return fmt.Errorf("load faqs: %w", err)
			}
			faqs = s.faqEntries(items, key.locale)
			return nil
		})
	}
	if needs.documents {
		g.Go(func() error {
			active := true
			items, err := s.documents.List(gctx, &active)
			if err != nil {
				return fmt.Errorf("load documents: %w", err)
			}
			documents = s.documentLinks(items, key.locale)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ComposedPage{}, err
	}

	page := ComposedPage{Slug: key.slug, Locale: key.locale, GeneratedAt: s.clock().UTC()}
	for _, v := range variants {
		data := sections.Data{FAQs: faqs, Documents: documents}
		switch v := v.(type) {
		case sections.ProductShowcase:
			data.Products = products[v.ProductType]
		case sections.ProductSelector:
			data.Products = products[v.ProductType]
		}
		component := s.renderer.Render(v, key.locale, data)
		if component == nil {
			continue
		}
		if page.Title == "" {
			page.Title = s.renderer.Resolve(v.Base(), key.locale).Heading
		}
		page.Sections = append(page.Sections, ComposedSection{ID: v.Base().ID, Type: v.Type(), Component: component})
	}

	s.logger(ctx, pageLoggerEventComposed, map[string]any{"page": key.slug, "locale": key.locale, "sections": len(page.Sections)})
	return page, nil
}

func (s *pageService) faqEntries(items []domain.FAQ, requested string) []sections.FAQEntry {
	out := make([]sections.FAQEntry, 0, len(items))
	for _, item := range items {
		tr, _, ok := locale.Resolve(s.resolver, item.Translations, requested)
		if !ok {
			continue
		}
		out = append(out, sections.FAQEntry{CategoryID: item.CategoryID, Question: tr.Question, Answer: tr.Answer})
	}
	return out
}

func (s *pageService) documentLinks(items []domain.Document, requested string) []sections.DocumentLink {
	out := make([]sections.DocumentLink, 0, len(items))
	for _, item := range items {
		tr, _, ok := locale.Resolve(s.resolver, item.Translations, requested)
		if !ok {
			continue
		}
		out = append(out, sections.DocumentLink{Kind: item.Kind, Title: tr.Title, URL: item.FileURL, Size: item.FileSize})
	}
	return out
}
