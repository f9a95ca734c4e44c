package handlers

import (
	"time"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
)

type productPayload struct {
	ID              string                  `json:"id,omitempty"`
	Slug            string                  `json:"slug"`
	Type            string                  `json:"type"`
	CategoryID      string                  `json:"category_id,omitempty"`
	ImageURL        string                  `json:"image_url,omitempty"`
	PowerKW         float64                 `json:"power_kw"`
	IsActive        bool                    `json:"is_active"`
	IsFeatured      bool                    `json:"is_featured"`
	SortOrder       int                     `json:"sort_order"`
	Translations    []productTranslation    `json:"translations"`
	Specifications  []specificationPayload  `json:"specifications,omitempty"`
	ColorVariants   []colorVariantPayload   `json:"color_variants,omitempty"`
	FeaturePoints   []featurePointPayload   `json:"feature_points,omitempty"`
	ContentSections []contentSectionPayload `json:"content_sections,omitempty"`
	Documents       []productDocPayload     `json:"documents,omitempty"`
	CreatedAt       *time.Time              `json:"created_at,omitempty"`
	UpdatedAt       *time.Time              `json:"updated_at,omitempty"`
	TranslationMeta *locale.Meta            `json:"translation_meta,omitempty"`
}

type productTranslation struct {
	Locale           string `json:"locale"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

type specificationPayload struct {
	ID           string                     `json:"id,omitempty"`
	Key          string                     `json:"key"`
	Unit         string                     `json:"unit,omitempty"`
	SortOrder    int                        `json:"sort_order"`
	Translations []specificationTranslation `json:"translations"`
}

type specificationTranslation struct {
	Locale string `json:"locale"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}

type colorVariantPayload struct {
	ID           string             `json:"id,omitempty"`
	Name         string             `json:"name"`
	HexCode      string             `json:"hex_code,omitempty"`
	ImageURL     string             `json:"image_url,omitempty"`
	SortOrder    int                `json:"sort_order"`
	Translations []labelTranslation `json:"translations"`
}

type labelTranslation struct {
	Locale string `json:"locale"`
	Label  string `json:"label"`
}

type featurePointPayload struct {
	ID           string               `json:"id,omitempty"`
	Icon         string               `json:"icon"`
	SortOrder    int                  `json:"sort_order"`
	Translations []featureTranslation `json:"translations"`
}

type featureTranslation struct {
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type contentSectionPayload struct {
	ID           string               `json:"id,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	Layout       string               `json:"layout,omitempty"`
	SortOrder    int                  `json:"sort_order"`
	Translations []contentTranslation `json:"translations"`
}

type contentTranslation struct {
	Locale  string `json:"locale"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type productDocPayload struct {
	ID           string             `json:"id,omitempty"`
	DocumentID   string             `json:"document_id"`
	SortOrder    int                `json:"sort_order"`
	Translations []labelTranslation `json:"translations"`
}

func convertAll[From, To any](in []From, convert func(From) To) []To {
	if len(in) == 0 {
		return nil
	}
	out := make([]To, len(in))
	for i, item := range in {
		out[i] = convert(item)
	}
	return out
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:           p.ID,
		Slug:         p.Slug,
		Type:         p.Type,
		CategoryID:   p.CategoryID,
		ImageURL:     p.ImageURL,
		PowerKW:      p.PowerKW,
		IsActive:     p.IsActive,
		IsFeatured:   p.IsFeatured,
		SortOrder:    p.SortOrder,
		Translations: convertAll(p.Translations, func(t productTranslation) domain.ProductTranslation { return domain.ProductTranslation(t) }),
		Specifications: convertAll(p.Specifications, func(s specificationPayload) domain.Specification {
			return domain.Specification{ID: s.ID, Key: s.Key, Unit: s.Unit, SortOrder: s.SortOrder,
				Translations: convertAll(s.Translations, func(t specificationTranslation) domain.SpecificationTranslation {
					return domain.SpecificationTranslation(t)
				})}
		}),
		ColorVariants: convertAll(p.ColorVariants, func(c colorVariantPayload) domain.ColorVariant {
			return domain.ColorVariant{ID: c.ID, Name: c.Name, HexCode: c.HexCode, ImageURL: c.ImageURL, SortOrder: c.SortOrder,
				Translations: convertAll(c.Translations, func(t labelTranslation) domain.ColorVariantTranslation {
					return domain.ColorVariantTranslation(t)
				})}
		}),
		FeaturePoints: convertAll(p.FeaturePoints, func(f featurePointPayload) domain.FeaturePoint {
			return domain.FeaturePoint{ID: f.ID, Icon: f.Icon, SortOrder: f.SortOrder,
				Translations: convertAll(f.Translations, func(t featureTranslation) domain.FeaturePointTranslation {
					return domain.FeaturePointTranslation(t)
				})}
		}),
		ContentSections: convertAll(p.ContentSections, func(c contentSectionPayload) domain.ContentSection {
			return domain.ContentSection{ID: c.ID, ImageURL: c.ImageURL, Layout: c.Layout, SortOrder: c.SortOrder,
				Translations: convertAll(c.Translations, func(t contentTranslation) domain.ContentSectionTranslation {
					return domain.ContentSectionTranslation(t)
				})}
		}),
		Documents: convertAll(p.Documents, func(d productDocPayload) domain.ProductDocument {
			return domain.ProductDocument{ID: d.ID, DocumentID: d.DocumentID, SortOrder: d.SortOrder,
				Translations: convertAll(d.Translations, func(t labelTranslation) domain.ProductDocumentTranslation {
					return domain.ProductDocumentTranslation(t)
				})}
		}),
	}
}

// newProductPayload renders p. With a non-nil resolver every translations
// array is narrowed to the one translation chosen for requested.
func newProductPayload(p domain.Product, resolver *locale.Resolver, requested string) productPayload {
	translations := p.Translations
	out := productPayload{
		ID:         p.ID,
		Slug:       p.Slug,
		Type:       p.Type,
		CategoryID: p.CategoryID,
		ImageURL:   p.ImageURL,
		PowerKW:    p.PowerKW,
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		SortOrder:  p.SortOrder,
	}
	if resolver != nil {
		_, meta, _ := locale.Resolve(*resolver, translations, requested)
		out.TranslationMeta = &meta
		translations = locale.Only(*resolver, translations, requested)
	}
	out.Translations = convertAll(translations, func(t domain.ProductTranslation) productTranslation { return productTranslation(t) })
	if out.Translations == nil {
		out.Translations = []productTranslation{}
	}

	out.Specifications = convertAll(p.Specifications, func(s domain.Specification) specificationPayload {
		return specificationPayload{ID: s.ID, Key: s.Key, Unit: s.Unit, SortOrder: s.SortOrder,
			Translations: convertAll(narrow(resolver, s.Translations, requested), func(t domain.SpecificationTranslation) specificationTranslation {
				return specificationTranslation(t)
			})}
	})
	out.ColorVariants = convertAll(p.ColorVariants, func(c domain.ColorVariant) colorVariantPayload {
		return colorVariantPayload{ID: c.ID, Name: c.Name, HexCode: c.HexCode, ImageURL: c.ImageURL, SortOrder: c.SortOrder,
			Translations: convertAll(narrow(resolver, c.Translations, requested), func(t domain.ColorVariantTranslation) labelTranslation {
				return labelTranslation(t)
			})}
	})
	out.FeaturePoints = convertAll(p.FeaturePoints, func(f domain.FeaturePoint) featurePointPayload {
		return featurePointPayload{ID: f.ID, Icon: f.Icon, SortOrder: f.SortOrder,
			Translations: convertAll(narrow(resolver, f.Translations, requested), func(t domain.FeaturePointTranslation) featureTranslation {
				return featureTranslation(t)
			})}
	})
	out.ContentSections = convertAll(p.ContentSections, func(c domain.ContentSection) contentSectionPayload {
		return contentSectionPayload{ID: c.ID, ImageURL: c.ImageURL, Layout: c.Layout, SortOrder: c.SortOrder,
			Translations: convertAll(narrow(resolver, c.Translations, requested), func(t domain.ContentSectionTranslation) contentTranslation {
				return contentTranslation(t)
			})}
	})
	out.Documents = convertAll(p.Documents, func(d domain.ProductDocument) productDocPayload {
		return productDocPayload{ID: d.ID, DocumentID: d.DocumentID, SortOrder: d.SortOrder,
			Translations: convertAll(narrow(resolver, d.Translations, requested), func(t domain.ProductDocumentTranslation) labelTranslation {
				return labelTranslation(t)
			})}
	})
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt.UTC()
		out.CreatedAt = &created
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt.UTC()
		out.UpdatedAt = &updated
	}
	return out
}

func narrow[T locale.Translation](resolver *locale.Resolver, items []T, requested string) []T {
	if resolver == nil {
		return items
	}
	return locale.Only(*resolver, items, requested)
}
