package firestore

import (
	"time"

	"github.com/voltline/site/internal/domain"
)

type productDocument struct {
	Slug            string                   `firestore:"slug"`
	Type            string                   `firestore:"type"`
	CategoryID      string                   `firestore:"category_id,omitempty"`
	ImageURL        string                   `firestore:"image_url,omitempty"`
	PowerKW         float64                  `firestore:"power_kw"`
	IsActive        bool                     `firestore:"is_active"`
	IsFeatured      bool                     `firestore:"is_featured"`
	SortOrder       int                      `firestore:"sort_order"`
	ColorVariants   []colorVariantDocument   `firestore:"color_variants"`
	ContentSections []contentSectionDocument `firestore:"content_sections"`
	Documents       []productDocDocument     `firestore:"documents"`
	CreatedAt       time.Time                `firestore:"created_at"`
	UpdatedAt       time.Time                `firestore:"updated_at"`
}

type productTranslationDocument struct {
	ProductID        string `firestore:"product_id"`
	Locale           string `firestore:"locale"`
	Position         int    `firestore:"position"`
	Name             string `firestore:"name"`
	ShortDescription string `firestore:"short_description,omitempty"`
	Description      string `firestore:"description,omitempty"`
}

type specificationDocument struct {
	ProductID    string                          `firestore:"product_id"`
	Key          string                          `firestore:"key"`
	Unit         string                          `firestore:"unit,omitempty"`
	SortOrder    int                             `firestore:"sort_order"`
	Translations []specificationTranslationValue `firestore:"translations"`
}

type specificationTranslationValue struct {
	Locale string `firestore:"locale"`
	Label  string `firestore:"label"`
	Value  string `firestore:"value"`
}

type featureDocument struct {
	ProductID    string                    `firestore:"product_id"`
	Icon         string                    `firestore:"icon"`
	SortOrder    int                       `firestore:"sort_order"`
	Translations []featureTranslationValue `firestore:"translations"`
}

type featureTranslationValue struct {
	Locale      string `firestore:"locale"`
	Title       string `firestore:"title"`
	Description string `firestore:"description,omitempty"`
}

type colorVariantDocument struct {
	ID           string          `firestore:"id"`
	Name         string          `firestore:"name"`
	HexCode      string          `firestore:"hex_code"`
	ImageURL     string          `firestore:"image_url,omitempty"`
	SortOrder    int             `firestore:"sort_order"`
	Translations []labelByLocale `firestore:"translations"`
}

type contentSectionDocument struct {
	ID           string                    `firestore:"id"`
	ImageURL     string                    `firestore:"image_url,omitempty"`
	Layout       string                    `firestore:"layout,omitempty"`
	SortOrder    int                       `firestore:"sort_order"`
	Translations []contentTranslationValue `firestore:"translations"`
}

type contentTranslationValue struct {
	Locale  string `firestore:"locale"`
	Heading string `firestore:"heading"`
	Body    string `firestore:"body"`
}

type productDocDocument struct {
	ID           string          `firestore:"id"`
	DocumentID   string          `firestore:"document_id"`
	SortOrder    int             `firestore:"sort_order"`
	Translations []labelByLocale `firestore:"translations"`
}

type labelByLocale struct {
	Locale string `firestore:"locale"`
	Label  string `firestore:"label"`
}

func encodeProduct(p domain.Product) productDocument {
	doc := productDocument{
		Slug:       p.Slug,
		Type:       p.Type,
		CategoryID: p.CategoryID,
		ImageURL:   p.ImageURL,
		PowerKW:    p.PowerKW,
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		SortOrder:  p.SortOrder,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
	for _, c := range p.ColorVariants {
		labels := make([]labelByLocale, 0, len(c.Translations))
		for _, tr := range c.Translations {
			labels = append(labels, labelByLocale{Locale: tr.Locale, Label: tr.Label})
		}
		doc.ColorVariants = append(doc.ColorVariants, colorVariantDocument{
			ID: c.ID, Name: c.Name, HexCode: c.HexCode, ImageURL: c.ImageURL, SortOrder: c.SortOrder, Translations: labels,
		})
	}
	for _, c := range p.ContentSections {
		trs := make([]contentTranslationValue, 0, len(c.Translations))
		for _, tr := range c.Translations {
			trs = append(trs, contentTranslationValue{Locale: tr.Locale, Heading: tr.Heading, Body: tr.Body})
		}
		doc.ContentSections = append(doc.ContentSections, contentSectionDocument{
			ID: c.ID, ImageURL: c.ImageURL, Layout: c.Layout, SortOrder: c.SortOrder, Translations: trs,
		})
	}
	for _, d := range p.Documents {
		labels := make([]labelByLocale, 0, len(d.Translations))
		for _, tr := range d.Translations {
			labels = append(labels, labelByLocale{Locale: tr.Locale, Label: tr.Label})
		}
		doc.Documents = append(doc.Documents, productDocDocument{
			ID: d.ID, DocumentID: d.DocumentID, SortOrder: d.SortOrder, Translations: labels,
		})
	}
	return doc
}

func decodeProduct(id string, doc productDocument) domain.Product {
	p := domain.Product{
		ID:         id,
		Slug:       doc.Slug,
		Type:       doc.Type,
		CategoryID: doc.CategoryID,
		ImageURL:   doc.ImageURL,
		PowerKW:    doc.PowerKW,
		IsActive:   doc.IsActive,
		IsFeatured: doc.IsFeatured,
		SortOrder:  doc.SortOrder,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	for _, c := range doc.ColorVariants {
		v := domain.ColorVariant{ID: c.ID, Name: c.Name, HexCode: c.HexCode, ImageURL: c.ImageURL, SortOrder: c.SortOrder}
		for _, tr := range c.Translations {
			v.Translations = append(v.Translations, domain.ColorVariantTranslation{Locale: tr.Locale, Label: tr.Label})
		}
		p.ColorVariants = append(p.ColorVariants, v)
	}
	for _, c := range doc.ContentSections {
		s := domain.ContentSection{ID: c.ID, ImageURL: c.ImageURL, Layout: c.Layout, SortOrder: c.SortOrder}
		for _, tr := range c.Translations {
			s.Translations = append(s.Translations, domain.ContentSectionTranslation{Locale: tr.Locale, Heading: tr.Heading, Body: tr.Body})
		}
		p.ContentSections = append(p.ContentSections, s)
	}
	for _, d := range doc.Documents {
		pd := domain.ProductDocument{ID: d.ID, DocumentID: d.DocumentID, SortOrder: d.SortOrder}
		for _, tr := range d.Translations {
			pd.Translations = append(pd.Translations, domain.ProductDocumentTranslation{Locale: tr.Locale, Label: tr.Label})
		}
		p.Documents = append(p.Documents, pd)
	}
	return p
}

func encodeTranslation(productID string, position int, tr domain.ProductTranslation) productTranslationDocument {
	return productTranslationDocument{
		ProductID:        productID,
		Locale:           tr.Locale,
		Position:         position,
		Name:             tr.Name,
		ShortDescription: tr.ShortDescription,
		Description:      tr.Description,
	}
}

func encodeSpecification(productID string, spec domain.Specification) specificationDocument {
	doc := specificationDocument{ProductID: productID, Key: spec.Key, Unit: spec.Unit, SortOrder: spec.SortOrder}
	for _, tr := range spec.Translations {
		doc.Translations = append(doc.Translations, specificationTranslationValue{Locale: tr.Locale, Label: tr.Label, Value: tr.Value})
	}
	return doc
}

func decodeSpecification(id string, doc specificationDocument) domain.Specification {
	spec := domain.Specification{ID: id, Key: doc.Key, Unit: doc.Unit, SortOrder: doc.SortOrder}
	for _, tr := range doc.Translations {
		spec.Translations = append(spec.Translations, domain.SpecificationTranslation{Locale: tr.Locale, Label: tr.Label, Value: tr.Value})
	}
	return spec
}

func encodeFeature(productID string, f domain.FeaturePoint) featureDocument {
	doc := featureDocument{ProductID: productID, Icon: f.Icon, SortOrder: f.SortOrder}
	for _, tr := range f.Translations {
		doc.Translations = append(doc.Translations, featureTranslationValue{Locale: tr.Locale, Title: tr.Title, Description: tr.Description})
	}
	return doc
}

func decodeFeature(id string, doc featureDocument) domain.FeaturePoint {
	f := domain.FeaturePoint{ID: id, Icon: doc.Icon, SortOrder: doc.SortOrder}
	for _, tr := range doc.Translations {
		f.Translations = append(f.Translations, domain.FeaturePointTranslation{Locale: tr.Locale, Title: tr.Title, Description: tr.Description})
	}
	return f
}
