package domain

import "time"

// Product types offered in the catalogue.
const (
	ProductTypeACCharger = "ac_charger"
	ProductTypeDCCharger = "dc_charger"
	ProductTypeAccessory = "accessory"
)

// MaxFeaturePoints caps the feature points shown on a product page.
const MaxFeaturePoints = 6

// Product is a charging station or accessory together with its localized
// copy and the ordered sub-collections edited in the admin.
type Product struct {
	ID              string
	Slug            string
	Type            string
	CategoryID      string
	ImageURL        string
	PowerKW         float64
	IsActive        bool
	IsFeatured      bool
	SortOrder       int
	Translations    []ProductTranslation
	Specifications  []Specification
	ColorVariants   []ColorVariant
	FeaturePoints   []FeaturePoint
	ContentSections []ContentSection
	Documents       []ProductDocument
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ProductTranslation struct {
	Locale           string
	Name             string
	ShortDescription string
	Description      string
}

func (t ProductTranslation) LocaleCode() string { return t.Locale }

// Specification is a technical parameter row such as rated power or IP code.
type Specification struct {
	ID           string
	Key          string
	Unit         string
	SortOrder    int
	Translations []SpecificationTranslation
}

type SpecificationTranslation struct {
	Locale string
	Label  string
	Value  string
}

func (t SpecificationTranslation) LocaleCode() string { return t.Locale }

// ColorVariant is one housing colour; the comparison slider pairs two of them.
type ColorVariant struct {
	ID           string
	Name         string
	HexCode      string
	ImageURL     string
	SortOrder    int
	Translations []ColorVariantTranslation
}

type ColorVariantTranslation struct {
	Locale string
	Label  string
}

func (t ColorVariantTranslation) LocaleCode() string { return t.Locale }

type FeaturePoint struct {
	ID           string
	Icon         string
	SortOrder    int
	Translations []FeaturePointTranslation
}

type FeaturePointTranslation struct {
	Locale      string
	Title       string
	Description string
}

func (t FeaturePointTranslation) LocaleCode() string { return t.Locale }

// ContentSection is a rich text block on the product detail page.
type ContentSection struct {
	ID           string
	ImageURL     string
	Layout       string
	SortOrder    int
	Translations []ContentSectionTranslation
}

type ContentSectionTranslation struct {
	Locale  string
	Heading string
	Body    string
}

func (t ContentSectionTranslation) LocaleCode() string { return t.Locale }

// ProductDocument attaches a library document to a product.
type ProductDocument struct {
	ID           string
	DocumentID   string
	SortOrder    int
	Translations []ProductDocumentTranslation
}

type ProductDocumentTranslation struct {
	Locale string
	Label  string
}

func (t ProductDocumentTranslation) LocaleCode() string { return t.Locale }

func (s Specification) ItemID() string            { return s.ID }
func (s *Specification) SetSortOrder(order int)   { s.SortOrder = order }
func (c ColorVariant) ItemID() string             { return c.ID }
func (c *ColorVariant) SetSortOrder(order int)    { c.SortOrder = order }
func (f FeaturePoint) ItemID() string             { return f.ID }
func (f *FeaturePoint) SetSortOrder(order int)    { f.SortOrder = order }
func (c ContentSection) ItemID() string           { return c.ID }
func (c *ContentSection) SetSortOrder(order int)  { c.SortOrder = order }
func (d ProductDocument) ItemID() string          { return d.ID }
func (d *ProductDocument) SetSortOrder(order int) { d.SortOrder = order }

// ShowcaseProduct is the flattened card used by showcase and selector carousels.
type ShowcaseProduct struct {
	ID       string
	Name     string
	Image    string
	Power    string
	Features []string
	Href     string
}

// ComparisonVariant is one side of the comparison slider.
type ComparisonVariant struct {
	Image string
	Label string
}

// ProductFilter narrows product listings. Nil pointers mean "any".
type ProductFilter struct {
	Type   string
	Active *bool
}
