package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/repositories"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/sections"
)

type pageFixture struct {
	registry *memory.Store
	products ProductService
	svc      PageService
	logger   *recordingLogger
	now      time.Time
	mu       sync.Mutex
}

func (f *pageFixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *pageFixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	f := &pageFixture{registry: memory.NewStore(), logger: &recordingLogger{}, now: testNow}
	products, err := NewProductService(ProductServiceDeps{
		Products:  f.registry.Products(),
		Locales:   testResolver,
		Supported: testSupported,
	})
	require.NoError(t, err)
	f.products = products
	f.svc = f.service(t, f.registry.Sections())

	ctx := context.Background()
	_, err = products.CreateProduct(ctx, CreateProductCommand{Product: func() domain.Product {
		p := wallbox()
		p.IsActive = true
		p.Translations = append(p.Translations, domain.ProductTranslation{Locale: "en", Name: "Home wallbox"})
		return p
	}()})
	require.NoError(t, err)
	require.NoError(t, f.registry.FAQs().Insert(ctx, domain.FAQ{
		ID:       "faq-1",
		IsActive: true,
		Translations: []domain.FAQTranslation{
			{Locale: "cs", Question: "Jak dlouho trvá instalace?", Answer: "Obvykle jeden den."},
		},
	}))

	rows := []domain.Section{
		{ID: "s-hero", Type: "hero", Config: map[string]any{"image": "/img/hero.jpg"}, Translations: []domain.SectionTranslation{
			{Locale: "cs", Heading: "Nabíjejte doma"}, {Locale: "en", Heading: "Charge at home"},
		}},
		{ID: "s-broken", Type: "gallery"},
		{ID: "s-products", Type: "product_showcase", Config: map[string]any{"product_type": "ac_charger"}},
		{ID: "s-legacy", Type: "store_locator"},
		{ID: "s-faq", Type: "faq"},
		{ID: "s-hidden", Type: "text", Translations: []domain.SectionTranslation{{Locale: "cs", Heading: "Skryto"}}},
	}
	for i, row := range rows {
		row.PageSlug = "home"
		row.SortOrder = i
		row.IsActive = row.ID != "s-hidden"
		require.NoError(t, f.registry.Sections().Insert(ctx, row))
	}
	return f
}

func (f *pageFixture) service(t *testing.T, rows repositories.SectionRepository) PageService {
	t.Helper()
	svc, err := NewPageService(PageServiceDeps{
		Sections:  rows,
		Products:  f.products,
		FAQs:      f.registry.FAQs(),
		Documents: f.registry.Documents(),
		Renderer:  sections.NewRenderer(testResolver),
		Locales:   testResolver,
		CacheTTL:  time.Minute,
		Clock:     f.clock,
		Logger:    f.logger.log,
	})
	require.NoError(t, err)
	return svc
}

// gatedSections reads the rows, then parks the first ListByPage call until
// release is closed or the call's context ends.
type gatedSections struct {
	repositories.SectionRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedSections(rows repositories.SectionRepository) *gatedSections {
	return &gatedSections{SectionRepository: rows, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSections) ListByPage(ctx context.Context, pageSlug string, activeOnly bool) ([]domain.Section, error) {
	rows, err := g.SectionRepository.ListByPage(ctx, pageSlug, activeOnly)
	var waitErr error
	g.once.Do(func() {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			waitErr = ctx.Err()
		}
	})
	if waitErr != nil {
		return nil, waitErr
	}
	return rows, err
}

type composeResult struct {
	page ComposedPage
	err  error
}

func composeAsync(ctx context.Context, svc PageService, slug, requested string) <-chan composeResult {
	out := make(chan composeResult, 1)
	go func() {
		page, err := svc.Compose(ctx, slug, requested)
		out <- composeResult{page: page, err: err}
	}()
	return out
}

func renderComponent(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestPageService_ComposeRendersActiveKnownSections(t *testing.T) {
	f := newPageFixture(t)

	page, err := f.svc.Compose(context.Background(), "home", "en")
	require.NoError(t, err)
	require.Equal(t, "en", page.Locale)
	require.Equal(t, "Charge at home", page.Title)

	var types []sections.Type
	for _, s := range page.Sections {
		types = append(types, s.Type)
	}
	require.Equal(t, []sections.Type{sections.TypeHero, sections.TypeProductShowcase, sections.TypeFAQ}, types)
	require.Equal(t, 2, f.logger.count(pageLoggerEventSectionDropped))

	showcase := renderComponent(t, page.Sections[1].Component)
	require.Contains(t, showcase, "Home wallbox")
	require.Contains(t, showcase, "/en/products/home-wallbox-22")

	faq := renderComponent(t, page.Sections[2].Component)
	require.Contains(t, faq, "Jak dlouho trvá instalace?")
}

func TestPageService_DefaultsLocaleAndReportsMissingPage(t *testing.T) {
	f := newPageFixture(t)

	page, err := f.svc.Compose(context.Background(), "home", "")
	require.NoError(t, err)
	require.Equal(t, "cs", page.Locale)
	require.Equal(t, "Nabíjejte doma", page.Title)

	_, err = f.svc.Compose(context.Background(), "nowhere", "cs")
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestPageService_CachesUntilInvalidatedOrExpired(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	first, err := f.svc.Compose(ctx, "home", "cs")
	require.NoError(t, err)
	require.Len(t, first.Sections, 3)

	require.NoError(t, f.registry.Sections().Insert(ctx, domain.Section{
		ID: "s-cta", PageSlug: "home", Type: "cta", IsActive: true, SortOrder: 10,
		Config: map[string]any{"href": "/cs/kontakt"},
	}))

	cached, err := f.svc.Compose(ctx, "home", "cs")
	require.NoError(t, err)
	require.Len(t, cached.Sections, 3, "cached page is served")

	f.svc.Invalidate("home")
	fresh, err := f.svc.Compose(ctx, "home", "cs")
	require.NoError(t, err)
	require.Len(t, fresh.Sections, 4)

	require.NoError(t, f.registry.Sections().Delete(ctx, "s-cta"))
	f.advance(2 * time.Minute)
	expired, err := f.svc.Compose(ctx, "home", "cs")
	require.NoError(t, err)
	require.Len(t, expired.Sections, 3, "expired entries are recomposed")
}

func TestPageService_InvalidateDuringCompositionIsNotOverwritten(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()
	gate := newGatedSections(f.registry.Sections())
	svc := f.service(t, gate)

	inFlight := composeAsync(ctx, svc, "home", "cs")
	<-gate.entered

	hero, err := f.registry.Sections().FindByID(ctx, "s-hero")
	require.NoError(t, err)
	hero.Translations[0].Heading = "Nabíjejte chytře"
	require.NoError(t, f.registry.Sections().Update(ctx, hero))
	svc.Invalidate("home")

	close(gate.release)
	stale := <-inFlight
	require.NoError(t, stale.err)
	require.Equal(t, "Nabíjejte doma", stale.page.Title)

	fresh, err := svc.Compose(ctx, "home", "cs")
	require.NoError(t, err)
	require.Equal(t, "Nabíjejte chytře", fresh.Title)
}

func TestPageService_CancelledCallerDoesNotFailSharedComposition(t *testing.T) {
	f := newPageFixture(t)
	gate := newGatedSections(f.registry.Sections())
	svc := f.service(t, gate)

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := composeAsync(firstCtx, svc, "home", "en")
	<-gate.entered
	second := composeAsync(context.Background(), svc, "home", "en")

	cancel()
	cancelled := <-first
	require.ErrorIs(t, cancelled.err, context.Canceled)

	close(gate.release)
	joined := <-second
	require.NoError(t, joined.err)
	require.Equal(t, "Charge at home", joined.page.Title)
}
