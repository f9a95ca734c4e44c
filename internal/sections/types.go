// Package sections turns stored page sections into typed variants and renders
// them as templ components.
package sections

import "github.com/voltline/site/internal/domain"

// Type is the stored section_type value.
type Type string

const (
	TypeHero            Type = "hero"
	TypeBenefits        Type = "benefits"
	TypeText            Type = "text"
	TypeGallery         Type = "gallery"
	TypeFAQ             Type = "faq"
	TypeContactForm     Type = "contact_form"
	TypeCTA             Type = "cta"
	TypeStats           Type = "stats"
	TypeProductShowcase Type = "product_showcase"
	TypeProductSelector Type = "product_selector"
	TypeComparison      Type = "comparison"
	TypeDocuments       Type = "documents"
)

var allTypes = []Type{
	TypeHero,
	TypeBenefits,
	TypeText,
	TypeGallery,
	TypeFAQ,
	TypeContactForm,
	TypeCTA,
	TypeStats,
	TypeProductShowcase,
	TypeProductSelector,
	TypeComparison,
	TypeDocuments,
}

// AllTypes lists every section type the renderer knows.
func AllTypes() []Type {
	return append([]Type(nil), allTypes...)
}

// Known reports whether t is one of AllTypes.
func Known(t Type) bool {
	for _, candidate := range allTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Variant is a section with its config decoded. The set of implementations is
// closed; Render switches over all of them.
type Variant interface {
	Type() Type
	Base() domain.Section
	variant()
}

type base struct {
	Section domain.Section `json:"-"`
}

func (b base) Base() domain.Section { return b.Section }
func (base) variant()               {}

type Hero struct {
	base
	Image    string `json:"image"`
	CTALabel string `json:"cta_label"`
	CTAHref  string `json:"cta_href"`
	Overlay  bool   `json:"overlay"`
}

type Benefits struct {
	base
	Columns int `json:"columns"`
}

type Text struct {
	base
	Align string `json:"align"`
}

type GalleryImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type Gallery struct {
	base
	Images []GalleryImage `json:"images"`
}

type FAQ struct {
	base
	CategoryID string `json:"category_id"`
	Limit      int    `json:"limit"`
}

type ContactForm struct {
	base
	Action    string `json:"action"`
	ProductID string `json:"product_id"`
	ShowPhone bool   `json:"show_phone"`
}

type CTA struct {
	base
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Stats struct {
	base
	Items []Stat `json:"items"`
}

type ProductShowcase struct {
	base
	ProductType string `json:"product_type"`
	Limit       int    `json:"limit"`
	IntervalMS  int    `json:"interval_ms"`
	CooldownMS  int    `json:"cooldown_ms"`
}

type ProductSelector struct {
	base
	ProductType string `json:"product_type"`
}

type ComparisonSide struct {
	Image string `json:"image"`
	Label string `json:"label"`
}

type Comparison struct {
	base
	Left    ComparisonSide `json:"left"`
	Right   ComparisonSide `json:"right"`
	Initial *float64       `json:"initial"`
}

type Documents struct {
	base
	Kind string `json:"kind"`
}

// Unknown keeps a section whose type this build does not recognise. It
// renders nothing.
type Unknown struct {
	base
	Raw string
}

func (Hero) Type() Type            { return TypeHero }
func (Benefits) Type() Type        { return TypeBenefits }
func (Text) Type() Type            { return TypeText }
func (Gallery) Type() Type         { return TypeGallery }
func (FAQ) Type() Type             { return TypeFAQ }
func (ContactForm) Type() Type     { return TypeContactForm }
func (CTA) Type() Type             { return TypeCTA }
func (Stats) Type() Type           { return TypeStats }
func (ProductShowcase) Type() Type { return TypeProductShowcase }
func (ProductSelector) Type() Type { return TypeProductSelector }
func (Comparison) Type() Type      { return TypeComparison }
func (Documents) Type() Type       { return TypeDocuments }
func (u Unknown) Type() Type       { return Type(u.Raw) }
