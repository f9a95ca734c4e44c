// Package seed loads YAML fixtures into a store through the services, so
// seeded content passes the same validation as content created in the admin.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/services"
)

// Fixture is the document accepted by `site seed`.
type Fixture struct {
	Categories []Category `yaml:"categories"`
	Documents  []Document `yaml:"documents"`
	FAQs       []FAQ      `yaml:"faqs"`
	Products   []Product  `yaml:"products"`
	Sections   []Section  `yaml:"sections"`
}

type Category struct {
	Slug         string                `yaml:"slug"`
	SortOrder    int                   `yaml:"sort_order"`
	Translations []CategoryTranslation `yaml:"translations"`
}

type CategoryTranslation struct {
	Locale      string `yaml:"locale"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Document struct {
	Kind         string                `yaml:"kind"`
	FileURL      string                `yaml:"file_url"`
	FileSize     int64                 `yaml:"file_size"`
	Active       *bool                 `yaml:"active"`
	SortOrder    int                   `yaml:"sort_order"`
	Translations []DocumentTranslation `yaml:"translations"`
}

type DocumentTranslation struct {
	Locale      string `yaml:"locale"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// FAQ refers to its category by slug.
type FAQ struct {
	Category     string           `yaml:"category"`
	Active       *bool            `yaml:"active"`
	SortOrder    int              `yaml:"sort_order"`
	Translations []FAQTranslation `yaml:"translations"`
}

type FAQTranslation struct {
	Locale   string `yaml:"locale"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Product struct {
	Slug           string               `yaml:"slug"`
	Type           string               `yaml:"type"`
	Category       string               `yaml:"category"`
	ImageURL       string               `yaml:"image_url"`
	PowerKW        float64              `yaml:"power_kw"`
	Active         *bool                `yaml:"active"`
	Featured       bool                 `yaml:"featured"`
	SortOrder      int                  `yaml:"sort_order"`
	Translations   []ProductTranslation `yaml:"translations"`
	Specifications []Specification      `yaml:"specifications"`
	FeaturePoints  []FeaturePoint       `yaml:"feature_points"`
	ColorVariants  []ColorVariant       `yaml:"color_variants"`
}

type ProductTranslation struct {
	Locale           string `yaml:"locale"`
	Name             string `yaml:"name"`
	ShortDescription string `yaml:"short_description"`
	Description      string `yaml:"description"`
}

// Specification carries its localized label and value keyed by locale.
type Specification struct {
	Key    string            `yaml:"key"`
	Unit   string            `yaml:"unit"`
	Labels map[string]string `yaml:"labels"`
	Values map[string]string `yaml:"values"`
}

type FeaturePoint struct {
	Icon         string                    `yaml:"icon"`
	Translations []FeaturePointTranslation `yaml:"translations"`
}

type FeaturePointTranslation struct {
	Locale      string `yaml:"locale"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type ColorVariant struct {
	Name     string            `yaml:"name"`
	HexCode  string            `yaml:"hex_code"`
	ImageURL string            `yaml:"image_url"`
	Labels   map[string]string `yaml:"labels"`
}

type Section struct {
	Page         string               `yaml:"page"`
	Type         string               `yaml:"type"`
	Active       *bool                `yaml:"active"`
	Config       map[string]any       `yaml:"config"`
	Translations []SectionTranslation `yaml:"translations"`
	Benefits     []Benefit            `yaml:"benefits"`
}

type SectionTranslation struct {
	Locale     string `yaml:"locale"`
	Heading    string `yaml:"heading"`
	Subheading string `yaml:"subheading"`
	Content    string `yaml:"content"`
}

type Benefit struct {
	Icon         string               `yaml:"icon"`
	ColorAccent  string               `yaml:"color_accent"`
	Translations []BenefitTranslation `yaml:"translations"`
}

type BenefitTranslation struct {
	Locale      string `yaml:"locale"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Parse decodes a fixture. Unknown keys are rejected so typos surface early.
func Parse(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("seed: decode fixture: %w", err)
	}
	return fx, nil
}

// Services are the write paths a fixture is loaded through.
type Services struct {
	Catalog  services.CatalogService
	Products services.ProductService
	Sections services.SectionService
}

// Summary counts what Load created.
type Summary struct {
	Categories int
	Documents  int
	FAQs       int
	Products   int
	Sections   int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d categories, %d documents, %d faqs, %d products, %d sections",
		s.Categories, s.Documents, s.FAQs, s.Products, s.Sections)
}

// Load creates the fixture's records in dependency order: categories first,
// then documents, FAQs and products, and sections last. It stops at the first
// failure and returns what was created so far.
func Load(ctx context.Context, svc Services, fx Fixture, actorID string) (Summary, error) {
	var sum Summary
	if svc.Catalog == nil || svc.Products == nil || svc.Sections == nil {
		return sum, errors.New("seed: catalog, product and section services are required")
	}

	categoryIDs := make(map[string]string, len(fx.Categories))
	for i, c := range fx.Categories {
		created, err := svc.Catalog.CreateCategory(ctx, c.toDomain())
		if err != nil {
			return sum, describe("categories", i, err)
		}
		categoryIDs[created.Slug] = created.ID
		sum.Categories++
	}
	lookupCategory := func(slug string) (string, error) {
		slug = strings.ToLower(strings.TrimSpace(slug))
		if slug == "" {
			return "", nil
		}
		id, ok := categoryIDs[slug]
		if !ok {
			return "", fmt.Errorf("unknown category %q", slug)
		}
		return id, nil
	}

	for i, d := range fx.Documents {
		if _, err := svc.Catalog.CreateDocument(ctx, d.toDomain()); err != nil {
			return sum, describe("documents", i, err)
		}
		sum.Documents++
	}

	for i, f := range fx.FAQs {
		categoryID, err := lookupCategory(f.Category)
		if err != nil {
			return sum, describe("faqs", i, err)
		}
		faq := f.toDomain()
		faq.CategoryID = categoryID
		if _, err := svc.Catalog.CreateFAQ(ctx, faq); err != nil {
			return sum, describe("faqs", i, err)
		}
		sum.FAQs++
	}

	for i, p := range fx.Products {
		categoryID, err := lookupCategory(p.Category)
		if err != nil {
			return sum, describe("products", i, err)
		}
		product := p.toDomain()
		product.CategoryID = categoryID
		if _, err := svc.Products.CreateProduct(ctx, services.CreateProductCommand{Product: product, ActorID: actorID}); err != nil {
			return sum, describe("products", i, err)
		}
		sum.Products++
	}

	for i, s := range fx.Sections {
		if _, err := svc.Sections.CreateSection(ctx, s.toDomain()); err != nil {
			return sum, describe("sections", i, err)
		}
		sum.Sections++
	}
	return sum, nil
}

func describe(kind string, index int, err error) error {
	if fields := services.FieldErrors(err); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for field, msg := range fields {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Errorf("seed: %s[%d]: %w (%s)", kind, index, err, strings.Join(sortStrings(parts), "; "))
	}
	return fmt.Errorf("seed: %s[%d]: %w", kind, index, err)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (c Category) toDomain() domain.Category {
	out := domain.Category{Slug: c.Slug, SortOrder: c.SortOrder}
	for _, tr := range c.Translations {
		out.Translations = append(out.Translations, domain.CategoryTranslation(tr))
	}
	return out
}

func (d Document) toDomain() domain.Document {
	out := domain.Document{
		Kind:      d.Kind,
		FileURL:   d.FileURL,
		FileSize:  d.FileSize,
		IsActive:  boolOr(d.Active, true),
		SortOrder: d.SortOrder,
	}
	for _, tr := range d.Translations {
		out.Translations = append(out.Translations, domain.DocumentTranslation(tr))
	}
	return out
}

func (f FAQ) toDomain() domain.FAQ {
	out := domain.FAQ{IsActive: boolOr(f.Active, true), SortOrder: f.SortOrder}
	for _, tr := range f.Translations {
		out.Translations = append(out.Translations, domain.FAQTranslation(tr))
	}
	return out
}

func (p Product) toDomain() domain.Product {
	out := domain.Product{
		Slug:       p.Slug,
		Type:       p.Type,
		ImageURL:   p.ImageURL,
		PowerKW:    p.PowerKW,
		IsActive:   boolOr(p.Active, true),
		IsFeatured: p.Featured,
		SortOrder:  p.SortOrder,
	}
	for _, tr := range p.Translations {
		out.Translations = append(out.Translations, domain.ProductTranslation(tr))
	}
	for i, spec := range p.Specifications {
		row := domain.Specification{Key: spec.Key, Unit: spec.Unit, SortOrder: i}
		for _, code := range sortedKeys(spec.Labels, spec.Values) {
			row.Translations = append(row.Translations, domain.SpecificationTranslation{
				Locale: code,
				Label:  spec.Labels[code],
				Value:  spec.Values[code],
			})
		}
		out.Specifications = append(out.Specifications, row)
	}
	for i, fp := range p.FeaturePoints {
		row := domain.FeaturePoint{Icon: fp.Icon, SortOrder: i}
		for _, tr := range fp.Translations {
			row.Translations = append(row.Translations, domain.FeaturePointTranslation(tr))
		}
		out.FeaturePoints = append(out.FeaturePoints, row)
	}
	for i, cv := range p.ColorVariants {
		row := domain.ColorVariant{Name: cv.Name, HexCode: cv.HexCode, ImageURL: cv.ImageURL, SortOrder: i}
		for _, code := range sortedKeys(cv.Labels) {
			row.Translations = append(row.Translations, domain.ColorVariantTranslation{Locale: code, Label: cv.Labels[code]})
		}
		out.ColorVariants = append(out.ColorVariants, row)
	}
	return out
}

func (s Section) toDomain() domain.Section {
	out := domain.Section{
		PageSlug: s.Page,
		Type:     s.Type,
		IsActive: boolOr(s.Active, true),
		Config:   s.Config,
	}
	for _, tr := range s.Translations {
		out.Translations = append(out.Translations, domain.SectionTranslation(tr))
	}
	for i, b := range s.Benefits {
		row := domain.Benefit{Icon: b.Icon, ColorAccent: b.ColorAccent, SortOrder: i}
		for _, tr := range b.Translations {
			row.Translations = append(row.Translations, domain.BenefitTranslation(tr))
		}
		out.Benefits = append(out.Benefits, row)
	}
	return out
}

func sortedKeys(ms ...map[string]string) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, m := range ms {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return sortStrings(keys)
}

func sortStrings(values []string) []string {
	slices.Sort(values)
	return values
}
