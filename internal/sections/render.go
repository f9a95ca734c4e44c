package sections

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/widgets/carousel"
	"github.com/voltline/site/internal/widgets/slider"
)

// Data carries records a page loads alongside its sections.
type Data struct {
	Products  []domain.ShowcaseProduct
	FAQs      []FAQEntry
	Documents []DocumentLink
}

type FAQEntry struct {
	CategoryID string
	Question   string
	Answer     string
}

type DocumentLink struct {
	Kind  string
	Title string
	URL   string
	Size  int64
}

// Content is the localized copy of a section after fallback.
type Content struct {
	Heading    string
	Subheading string
	HTML       string
	Meta       locale.Meta
}

// Renderer renders variants for one site locale configuration.
type Renderer struct {
	resolver locale.Resolver
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewRenderer(resolver locale.Resolver) *Renderer {
	return &Renderer{
		resolver: resolver,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   newContentPolicy(),
	}
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Markdown converts src to sanitised HTML. Conversion failures fall back to
// escaped text.
func (r *Renderer) Markdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return templ.EscapeString(src)
	}
	return r.policy.Sanitize(buf.String())
}

// Resolve picks the section translation for requested.
func (r *Renderer) Resolve(section domain.Section, requested string) Content {
	tr, meta, ok := locale.Resolve(r.resolver, section.Translations, requested)
	if !ok {
		return Content{Meta: meta}
	}
	return Content{
		Heading:    tr.Heading,
		Subheading: tr.Subheading,
		HTML:       r.Markdown(tr.Content),
		Meta:       meta,
	}
}

// RenderSection parses and renders in one step. It returns nil without an
// error for unknown section types.
func (r *Renderer) RenderSection(section domain.Section, requested string, data Data) (templ.Component, error) {
	v, err := Parse(section)
	if err != nil {
		return nil, err
	}
	return r.Render(v, requested, data), nil
}

// Render returns the component for v, or nil for Unknown.
func (r *Renderer) Render(v Variant, requested string, data Data) templ.Component {
	content := r.Resolve(v.Base(), requested)
	switch v := v.(type) {
	case Hero:
		return r.hero(v, content)
	case Benefits:
		return r.benefits(v, content, requested)
	case Text:
		return r.text(v, content)
	case Gallery:
		return r.gallery(v, content)
	case FAQ:
		return r.faq(v, content, data.FAQs)
	case ContactForm:
		return r.contactForm(v, content, requested)
	case CTA:
		return r.cta(v, content)
	case Stats:
		return r.stats(v, content)
	case ProductShowcase:
		return r.showcase(v, content, filterProducts(data.Products, v.Limit))
	case ProductSelector:
		return r.selector(v, content, data.Products)
	case Comparison:
		return r.comparison(v, content)
	case Documents:
		return r.documents(v, content, data.Documents)
	default:
		// Unknown and any variant added without a renderer.
		return nil
	}
}

func openSection(b *builder, v Variant, extra ...string) {
	section := v.Base()
	attrs := []string{
		"class", "section section--" + strings.ReplaceAll(string(v.Type()), "_", "-"),
		"data-section-type", string(v.Type()),
	}
	if section.ID != "" {
		attrs = append(attrs, "id", "section-"+section.ID)
	}
	b.open("section", append(attrs, extra...)...)
}

func writeHeader(b *builder, content Content, level string) {
	b.element(level, content.Heading, "class", "section__heading")
	b.element("p", content.Subheading, "class", "section__subheading")
}

func writeProse(b *builder, content Content) {
	if content.HTML == "" {
		return
	}
	b.open("div", "class", "prose")
	b.WriteString(content.HTML)
	b.close("div")
}

func (r *Renderer) hero(v Hero, content Content) templ.Component {
	return component(func(b *builder) {
		extra := []string{}
		if v.Overlay {
			extra = append(extra, "data-overlay", "true")
		}
		openSection(b, v, extra...)
		b.void("img", "class", "hero__image", "src", v.Image, "alt", content.Heading, "loading", "eager")
		b.open("div", "class", "hero__body")
		writeHeader(b, content, "h1")
		writeProse(b, content)
		if v.CTALabel != "" {
			b.element("a", v.CTALabel, "class", "button button--primary", "href", v.CTAHref)
		}
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) benefits(v Benefits, content Content, requested string) templ.Component {
	items := append([]domain.Benefit(nil), v.Section.Benefits...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	return component(func(b *builder) {
		openSection(b, v, "data-columns", strconv.Itoa(v.Columns))
		writeHeader(b, content, "h2")
		b.open("div", "class", "benefits__grid")
		for _, item := range items {
			tr, _, ok := locale.Resolve(r.resolver, item.Translations, requested)
			if !ok {
				continue
			}
			b.open("article", "class", "benefit", "data-icon", item.Icon, "data-accent", item.ColorAccent)
			b.element("h3", tr.Title, "class", "benefit__title")
			b.element("p", tr.Description, "class", "benefit__description")
			b.close("article")
		}
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) text(v Text, content Content) templ.Component {
	return component(func(b *builder) {
		openSection(b, v, "data-align", v.Align)
		writeHeader(b, content, "h2")
		writeProse(b, content)
		b.close("section")
	})
}

func (r *Renderer) gallery(v Gallery, content Content) templ.Component {
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		b.open("div", "class", "gallery__grid")
		for _, img := range v.Images {
			b.open("figure", "class", "gallery__item")
			b.void("img", "src", img.URL, "alt", img.Alt, "loading", "lazy")
			b.element("figcaption", img.Alt)
			b.close("figure")
		}
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) faq(v FAQ, content Content, entries []FAQEntry) templ.Component {
	selected := make([]FAQEntry, 0, len(entries))
	for _, entry := range entries {
		if v.CategoryID != "" && entry.CategoryID != v.CategoryID {
			continue
		}
		selected = append(selected, entry)
		if v.Limit > 0 && len(selected) == v.Limit {
			break
		}
	}
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		writeProse(b, content)
		b.open("div", "class", "faq__list")
		for _, entry := range selected {
			b.open("details", "class", "faq__item")
			b.element("summary", entry.Question)
			b.open("div", "class", "faq__answer")
			b.WriteString(r.Markdown(entry.Answer))
			b.close("div")
			b.close("details")
		}
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) contactForm(v ContactForm, content Content, requested string) templ.Component {
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		writeProse(b, content)
		b.open("form", "class", "contact-form", "method", "post", "action", v.Action, "data-contact-form", "true")
		b.void("input", "type", "hidden", "name", "locale", "value", domain.NormalizeLocale(requested))
		if v.ProductID != "" {
			b.void("input", "type", "hidden", "name", "product_id", "value", v.ProductID)
		}
		b.void("input", "type", "text", "name", "name", "required", "required", "autocomplete", "name")
		b.void("input", "type", "email", "name", "email", "required", "required", "autocomplete", "email")
		if v.ShowPhone {
			b.void("input", "type", "tel", "name", "phone", "autocomplete", "tel")
		}
		b.void("input", "type", "text", "name", "company", "autocomplete", "organization")
		b.open("textarea", "name", "message", "required", "required", "rows", "5")
		b.close("textarea")
		b.open("button", "type", "submit", "class", "button button--primary")
		b.text("Send")
		b.close("button")
		b.close("form")
		b.close("section")
	})
}

func (r *Renderer) cta(v CTA, content Content) templ.Component {
	label := v.Label
	if strings.TrimSpace(label) == "" {
		label = content.Heading
	}
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		writeProse(b, content)
		b.element("a", label, "class", "button button--primary", "href", v.Href)
		b.close("section")
	})
}

func (r *Renderer) stats(v Stats, content Content) templ.Component {
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		b.open("dl", "class", "stats__list")
		for _, item := range v.Items {
			b.open("div", "class", "stats__item")
			b.element("dt", item.Label)
			b.element("dd", item.Value)
			b.close("div")
		}
		b.close("dl")
		b.close("section")
	})
}

func filterProducts(products []domain.ShowcaseProduct, limit int) []domain.ShowcaseProduct {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

// carouselAttrs describes the initial carousel state for the client script.
func carouselAttrs(count int, interval, cooldown time.Duration) ([]string, int) {
	state, err := carousel.InitialState(count, carousel.Config{Interval: interval, Cooldown: cooldown})
	if err != nil {
		return nil, -1
	}
	return []string{
		"data-carousel", "true",
		"data-count", strconv.Itoa(state.Count),
		"data-active", strconv.Itoa(state.Active),
		"data-autoplay", strconv.FormatBool(state.AutoAdvance),
		"data-interval-ms", strconv.FormatInt(state.Interval.Milliseconds(), 10),
		"data-cooldown-ms", strconv.FormatInt(state.Cooldown.Milliseconds(), 10),
		"aria-roledescription", "carousel",
	}, state.Active
}

func writeProductCard(b *builder, product domain.ShowcaseProduct, index int, active bool) {
	class := "carousel__slide"
	hidden := "true"
	if active {
		class += " is-active"
		hidden = "false"
	}
	b.open("article", "class", class, "data-index", strconv.Itoa(index), "data-product-id", product.ID, "aria-hidden", hidden)
	if product.Image != "" {
		b.void("img", "src", product.Image, "alt", product.Name, "loading", "lazy")
	}
	b.element("h3", product.Name, "class", "product__name")
	b.element("p", product.Power, "class", "product__power")
	if len(product.Features) > 0 {
		b.open("ul", "class", "product__features")
		for _, feature := range product.Features {
			b.element("li", feature)
		}
		b.close("ul")
	}
	if product.Href != "" {
		b.element("a", product.Name, "class", "product__link", "href", product.Href)
	}
	b.close("article")
}

func (r *Renderer) showcase(v ProductShowcase, content Content, products []domain.ShowcaseProduct) templ.Component {
	interval := time.Duration(v.IntervalMS) * time.Millisecond
	cooldown := time.Duration(v.CooldownMS) * time.Millisecond
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		attrs, active := carouselAttrs(len(products), interval, cooldown)
		if attrs == nil {
			b.close("section")
			return
		}
		b.open("div", append([]string{"class", "carousel"}, attrs...)...)
		for i, product := range products {
			writeProductCard(b, product, i, i == active)
		}
		b.open("div", "class", "carousel__dots")
		for i := range products {
			current := "false"
			if i == active {
				current = "true"
			}
			b.open("button", "type", "button", "class", "carousel__dot", "data-index", strconv.Itoa(i), "aria-current", current, "aria-label", fmt.Sprintf("%d / %d", i+1, len(products)))
			b.close("button")
		}
		b.close("div")
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) selector(v ProductSelector, content Content, products []domain.ShowcaseProduct) templ.Component {
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		attrs, active := carouselAttrs(len(products), carousel.DefaultInterval, carousel.DefaultCooldown)
		if attrs == nil {
			b.close("section")
			return
		}
		b.open("div", append([]string{"class", "selector"}, attrs...)...)
		b.open("div", "class", "selector__tabs", "role", "tablist")
		for i, product := range products {
			selected := "false"
			if i == active {
				selected = "true"
			}
			b.element("button", product.Name, "type", "button", "role", "tab", "data-index", strconv.Itoa(i), "aria-selected", selected)
		}
		b.close("div")
		for i, product := range products {
			writeProductCard(b, product, i, i == active)
		}
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) comparison(v Comparison, content Content) templ.Component {
	initial := float64(slider.DefaultPosition)
	if v.Initial != nil {
		initial = *v.Initial
	}
	s := slider.New(initial)
	aria := s.ARIA()
	inset := strconv.FormatFloat(s.ClipInset(), 'f', -1, 64)
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		b.open("div",
			"class", "comparison",
			"role", aria.Role,
			"tabindex", "0",
			"aria-valuemin", strconv.Itoa(aria.ValueMin),
			"aria-valuemax", strconv.Itoa(aria.ValueMax),
			"aria-valuenow", strconv.Itoa(aria.ValueNow),
			"data-position", strconv.FormatFloat(s.Position(), 'f', -1, 64),
			"data-key-step", strconv.FormatFloat(slider.KeyStep, 'f', -1, 64),
		)
		b.void("img", "class", "comparison__image comparison__image--right", "src", v.Right.Image, "alt", v.Right.Label)
		b.void("img", "class", "comparison__image comparison__image--left", "src", v.Left.Image, "alt", v.Left.Label,
			"style", "clip-path: inset(0 "+inset+"% 0 0)")
		b.element("span", v.Left.Label, "class", "comparison__label comparison__label--left")
		b.element("span", v.Right.Label, "class", "comparison__label comparison__label--right")
		b.open("span", "class", "comparison__handle", "style", "left: "+strconv.FormatFloat(s.Position(), 'f', -1, 64)+"%")
		b.close("span")
		b.close("div")
		b.close("section")
	})
}

func (r *Renderer) documents(v Documents, content Content, docs []DocumentLink) templ.Component {
	return component(func(b *builder) {
		openSection(b, v)
		writeHeader(b, content, "h2")
		b.open("ul", "class", "documents__list")
		for _, doc := range docs {
			if v.Kind != "" && doc.Kind != v.Kind {
				continue
			}
			b.open("li", "class", "document", "data-kind", doc.Kind)
			b.element("a", doc.Title, "href", doc.URL, "download", "")
			if doc.Size > 0 {
				b.element("span", formatSize(doc.Size), "class", "document__size")
			}
			b.close("li")
		}
		b.close("ul")
		b.close("section")
	})
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	suffixes := []string{"KB", "MB", "GB"}
	i := -1
	for value >= unit && i < len(suffixes)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[i])
}
