package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/repositories"
)

type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: map[string]domain.Product{}}
}

// Insert stores the product row. Translations, specifications and feature
// points are written by their own steps and ignored here.
func (r *ProductRepository) Insert(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID == product.ID || existing.Slug == product.Slug {
			return conflict("products.insert", "product", product.Slug)
		}
	}
	row := cloneProduct(product)
	row.Translations = nil
	row.Specifications = nil
	row.FeaturePoints = nil
	r.items[product.ID] = row
	return nil
}

func (r *ProductRepository) InsertTranslations(_ context.Context, productID string, translations []domain.ProductTranslation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[productID]
	if !ok {
		return notFound("products.insert_translations", "product", productID)
	}
	for _, tr := range translations {
		for _, existing := range product.Translations {
			if existing.Locale == tr.Locale {
				return conflict("products.insert_translations", "translation", tr.Locale)
			}
		}
		product.Translations = append(product.Translations, tr)
	}
	r.items[productID] = product
	return nil
}

func (r *ProductRepository) InsertSpecification(_ context.Context, productID string, spec domain.Specification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[productID]
	if !ok {
		return notFound("products.insert_specification", "product", productID)
	}
	spec.Translations = append([]domain.SpecificationTranslation(nil), spec.Translations...)
	product.Specifications = append(product.Specifications, spec)
	r.items[productID] = product
	return nil
}

func (r *ProductRepository) LinkFeature(_ context.Context, productID string, feature domain.FeaturePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.items[productID]
	if !ok {
		return notFound("products.link_feature", "product", productID)
	}
	feature.Translations = append([]domain.FeaturePointTranslation(nil), feature.Translations...)
	product.FeaturePoints = append(product.FeaturePoints, feature)
	r.items[productID] = product
	return nil
}

func (r *ProductRepository) Replace(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; !ok {
		return notFound("products.replace", "product", product.ID)
	}
	for id, existing := range r.items {
		if id != product.ID && existing.Slug == product.Slug {
			return conflict("products.replace", "product", product.Slug)
		}
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[productID]; !ok {
		return notFound("products.delete", "product", productID)
	}
	delete(r.items, productID)
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, productID string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.items[productID]
	if !ok {
		return domain.Product{}, notFound("products.find", "product", productID)
	}
	return cloneProduct(product), nil
}

func (r *ProductRepository) FindBySlug(_ context.Context, slug string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.items {
		if product.Slug == slug {
			return cloneProduct(product), nil
		}
	}
	return domain.Product{}, notFound("products.find_by_slug", "product", slug)
}

func (r *ProductRepository) List(_ context.Context, filter domain.ProductFilter, opts repositories.ListOptions) (domain.ListResult[domain.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if filter.Type != "" && product.Type != filter.Type {
			continue
		}
		if filter.Active != nil && product.IsActive != *filter.Active {
			continue
		}
		out = append(out, cloneProduct(product))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return window(out, opts), nil
}

func cloneProduct(p domain.Product) domain.Product {
	p.Translations = append([]domain.ProductTranslation(nil), p.Translations...)
	p.Specifications = cloneEach(p.Specifications, func(s domain.Specification) domain.Specification {
		s.Translations = append([]domain.SpecificationTranslation(nil), s.Translations...)
		return s
	})
	p.ColorVariants = cloneEach(p.ColorVariants, func(c domain.ColorVariant) domain.ColorVariant {
		c.Translations = append([]domain.ColorVariantTranslation(nil), c.Translations...)
		return c
	})
	p.FeaturePoints = cloneEach(p.FeaturePoints, func(f domain.FeaturePoint) domain.FeaturePoint {
		f.Translations = append([]domain.FeaturePointTranslation(nil), f.Translations...)
		return f
	})
	p.ContentSections = cloneEach(p.ContentSections, func(c domain.ContentSection) domain.ContentSection {
		c.Translations = append([]domain.ContentSectionTranslation(nil), c.Translations...)
		return c
	})
	p.Documents = cloneEach(p.Documents, func(d domain.ProductDocument) domain.ProductDocument {
		d.Translations = append([]domain.ProductDocumentTranslation(nil), d.Translations...)
		return d
	})
	return p
}

func cloneEach[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}
