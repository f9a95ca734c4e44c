package firestore

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/voltline/site/internal/domain"
	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/repositories"
)

const (
	productsCollection           = "products"
	productTranslationsSubcoll   = "product_translations"
	productSpecificationsSubcoll = "specifications"
	productFeaturesSubcoll       = "features"
	// Firestore caps "in" filters at 30 values.
	inFilterChunk = 30
)

// ProductRepository keeps the product row in products/{id}; translations,
// specifications and features live in subcollections so each saga step is
// its own write.
type ProductRepository struct {
	provider     *pfirestore.Provider
	products     *pfirestore.Collection[productDocument]
	translations pfirestore.SubCollection[productTranslationDocument]
	specs        pfirestore.SubCollection[specificationDocument]
	features     pfirestore.SubCollection[featureDocument]
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(provider *pfirestore.Provider) *ProductRepository {
	return &ProductRepository{
		provider:     provider,
		products:     pfirestore.NewCollection[productDocument](provider, productsCollection),
		translations: pfirestore.NewSubCollection[productTranslationDocument](productTranslationsSubcoll),
		specs:        pfirestore.NewSubCollection[specificationDocument](productSpecificationsSubcoll),
		features:     pfirestore.NewSubCollection[featureDocument](productFeaturesSubcoll),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	ref, err := r.products.Doc(ctx, product.ID)
	if err != nil {
		return err
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.ensureSlugFree(tx, client, product.Slug, ""); err != nil {
			return err
		}
		return tx.Create(ref, encodeProduct(product))
	})
}

func (r *ProductRepository) InsertTranslations(ctx context.Context, productID string, translations []domain.ProductTranslation) error {
	ref, err := r.products.Doc(ctx, productID)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		for i, tr := range translations {
			if err := tx.Create(r.translations.Ref(ref, tr.Locale), encodeTranslation(productID, i, tr)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProductRepository) InsertSpecification(ctx context.Context, productID string, spec domain.Specification) error {
	return r.insertChild(ctx, productID, func(parent *firestore.DocumentRef) (*firestore.DocumentRef, any) {
		return r.specs.Ref(parent, spec.ID), encodeSpecification(productID, spec)
	})
}

func (r *ProductRepository) LinkFeature(ctx context.Context, productID string, feature domain.FeaturePoint) error {
	return r.insertChild(ctx, productID, func(parent *firestore.DocumentRef) (*firestore.DocumentRef, any) {
		return r.features.Ref(parent, feature.ID), encodeFeature(productID, feature)
	})
}

func (r *ProductRepository) insertChild(ctx context.Context, productID string, build func(*firestore.DocumentRef) (*firestore.DocumentRef, any)) error {
	parent, err := r.products.Doc(ctx, productID)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(parent); err != nil {
			return err
		}
		ref, data := build(parent)
		return tx.Create(ref, data)
	})
}

// Replace rewrites the product and its subcollections in one transaction.
func (r *ProductRepository) Replace(ctx context.Context, product domain.Product) error {
	ref, err := r.products.Doc(ctx, product.ID)
	if err != nil {
		return err
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		if err := r.ensureSlugFree(tx, client, product.Slug, product.ID); err != nil {
			return err
		}
		existing, err := r.childRefs(tx, ref)
		if err != nil {
			return err
		}

		writes := map[string]any{}
		var order []*firestore.DocumentRef
		put := func(child *firestore.DocumentRef, data any) {
			if _, seen := writes[child.Path]; !seen {
				order = append(order, child)
			}
			writes[child.Path] = data
		}
		for i, tr := range product.Translations {
			put(r.translations.Ref(ref, tr.Locale), encodeTranslation(product.ID, i, tr))
		}
		for _, spec := range product.Specifications {
			put(r.specs.Ref(ref, spec.ID), encodeSpecification(product.ID, spec))
		}
		for _, feature := range product.FeaturePoints {
			put(r.features.Ref(ref, feature.ID), encodeFeature(product.ID, feature))
		}

		// A document may only be written once per commit, so children that
		// are rewritten are not deleted first.
		for _, child := range existing {
			if _, kept := writes[child.Path]; kept {
				continue
			}
			if err := tx.Delete(child); err != nil {
				return err
			}
		}
		if err := tx.Set(ref, encodeProduct(product)); err != nil {
			return err
		}
		for _, child := range order {
			if err := tx.Set(child, writes[child.Path]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	ref, err := r.products.Doc(ctx, productID)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		children, err := r.childRefs(tx, ref)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := tx.Delete(child); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return r.hydrate(ctx, doc)
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	doc, err := r.products.First(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", strings.TrimSpace(slug))
	})
	if err != nil {
		return domain.Product{}, err
	}
	return r.hydrate(ctx, doc)
}

// List returns products with translations and feature points; specifications
// are only loaded by the single-product lookups.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, opts repositories.ListOptions) (domain.ListResult[domain.Product], error) {
	where := func(q firestore.Query) firestore.Query {
		if filter.Type != "" {
			q = q.Where("type", "==", filter.Type)
		}
		if filter.Active != nil {
			q = q.Where("is_active", "==", *filter.Active)
		}
		return q
	}

	total, err := r.products.Count(ctx, where)
	if err != nil {
		return domain.ListResult[domain.Product]{}, err
	}

	docs, err := r.products.Query(ctx, func(q firestore.Query) firestore.Query {
		return window(bySortOrder(where(q)), opts)
	})
	if err != nil {
		return domain.ListResult[domain.Product]{}, err
	}

	items := make([]domain.Product, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeProduct(doc.ID, doc.Data))
		ids = append(ids, doc.ID)
	}
	translations, features, err := r.loadChildren(ctx, ids)
	if err != nil {
		return domain.ListResult[domain.Product]{}, err
	}
	for i := range items {
		items[i].Translations = translations[items[i].ID]
		items[i].FeaturePoints = features[items[i].ID]
	}
	return domain.ListResult[domain.Product]{Items: items, Total: total}, nil
}

func (r *ProductRepository) hydrate(ctx context.Context, doc pfirestore.Document[productDocument]) (domain.Product, error) {
	product := decodeProduct(doc.ID, doc.Data)
	parent, err := r.products.Doc(ctx, doc.ID)
	if err != nil {
		return domain.Product{}, err
	}

	trDocs, err := r.translations.List(ctx, parent, "position")
	if err != nil {
		return domain.Product{}, err
	}
	for _, tr := range trDocs {
		product.Translations = append(product.Translations, decodeTranslation(tr.Data))
	}

	specDocs, err := r.specs.List(ctx, parent, "sort_order")
	if err != nil {
		return domain.Product{}, err
	}
	for _, spec := range specDocs {
		product.Specifications = append(product.Specifications, decodeSpecification(spec.ID, spec.Data))
	}

	featureDocs, err := r.features.List(ctx, parent, "sort_order")
	if err != nil {
		return domain.Product{}, err
	}
	for _, feature := range featureDocs {
		product.FeaturePoints = append(product.FeaturePoints, decodeFeature(feature.ID, feature.Data))
	}
	return product, nil
}

// loadChildren batches translation and feature lookups for a page of
// products through collection group queries.
func (r *ProductRepository) loadChildren(ctx context.Context, ids []string) (map[string][]domain.ProductTranslation, map[string][]domain.FeaturePoint, error) {
	translations := map[string][]domain.ProductTranslation{}
	features := map[string][]domain.FeaturePoint{}
	if len(ids) == 0 {
		return translations, features, nil
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, nil, err
	}

	type positioned struct {
		position int
		value    domain.ProductTranslation
	}
	ordered := map[string][]positioned{}

	for start := 0; start < len(ids); start += inFilterChunk {
		chunk := ids[start:min(start+inFilterChunk, len(ids))]

		trSnaps, err := client.CollectionGroup(productTranslationsSubcoll).Where("product_id", "in", chunk).Documents(ctx).GetAll()
		if err != nil {
			return nil, nil, pfirestore.WrapError("products.list_translations", err)
		}
		for _, snap := range trSnaps {
			var doc productTranslationDocument
			if err := snap.DataTo(&doc); err != nil {
				return nil, nil, err
			}
			ordered[doc.ProductID] = append(ordered[doc.ProductID], positioned{position: doc.Position, value: decodeTranslation(doc)})
		}

		featureSnaps, err := client.CollectionGroup(productFeaturesSubcoll).Where("product_id", "in", chunk).Documents(ctx).GetAll()
		if err != nil {
			return nil, nil, pfirestore.WrapError("products.list_features", err)
		}
		for _, snap := range featureSnaps {
			var doc featureDocument
			if err := snap.DataTo(&doc); err != nil {
				return nil, nil, err
			}
			features[doc.ProductID] = append(features[doc.ProductID], decodeFeature(snap.Ref.ID, doc))
		}
	}

	for productID, list := range ordered {
		sort.Slice(list, func(i, j int) bool { return list[i].position < list[j].position })
		out := make([]domain.ProductTranslation, 0, len(list))
		for _, item := range list {
			out = append(out, item.value)
		}
		translations[productID] = out
	}
	for productID, list := range features {
		sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
		features[productID] = list
	}
	return translations, features, nil
}

func (r *ProductRepository) childRefs(tx *firestore.Transaction, parent *firestore.DocumentRef) ([]*firestore.DocumentRef, error) {
	var refs []*firestore.DocumentRef
	for _, name := range []string{productTranslationsSubcoll, productSpecificationsSubcoll, productFeaturesSubcoll} {
		children, err := tx.DocumentRefs(parent.Collection(name)).GetAll()
		if err != nil {
			return nil, err
		}
		refs = append(refs, children...)
	}
	return refs, nil
}

func (r *ProductRepository) ensureSlugFree(tx *firestore.Transaction, client *firestore.Client, slug, selfID string) error {
	snaps, err := tx.Documents(client.Collection(productsCollection).Where("slug", "==", slug).Limit(2)).GetAll()
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if snap.Ref.ID != selfID {
			return status.Errorf(codes.AlreadyExists, "product slug %q already in use", slug)
		}
	}
	return nil
}

func decodeTranslation(doc productTranslationDocument) domain.ProductTranslation {
	return domain.ProductTranslation{
		Locale:           doc.Locale,
		Name:             doc.Name,
		ShortDescription: doc.ShortDescription,
		Description:      doc.Description,
	}
}
