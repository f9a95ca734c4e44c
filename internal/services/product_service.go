package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/formarray"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/textutil"
	"github.com/voltline/site/internal/repositories"
)

const (
	productLoggerEventCreated        = "product.create.completed"
	productLoggerEventCompensated    = "product.create.compensated"
	productLoggerEventCompensateFail = "product.create.compensation_failed"
	productLoggerEventSpecSkipped    = "product.create.specification_skipped"
	productLoggerEventFeatureSkipped = "product.create.feature_skipped"
)

var productTypes = map[string]struct{}{
	domain.ProductTypeACCharger: {},
	domain.ProductTypeDCCharger: {},
	domain.ProductTypeAccessory: {},
}

// ProductServiceDeps bundles constructor inputs for the product service.
type ProductServiceDeps struct {
	Products repositories.ProductRepository
	Locales  locale.Resolver
	// Supported lists the locales translations may use.
	Supported []string
	Clock     func() time.Time
	IDGen     func() string
	Logger    LoggerFunc
}

type productService struct {
	repo      repositories.ProductRepository
	resolver  locale.Resolver
	supported map[string]struct{}
	codes     []string
	clock     func() time.Time
	newID     func() string
	logger    LoggerFunc
}

var _ ProductService = (*productService)(nil)

func NewProductService(deps ProductServiceDeps) (ProductService, error) {
	if deps.Products == nil {
		return nil, errors.New("product service: product repository is required")
	}
	if len(deps.Supported) == 0 {
		return nil, errors.New("product service: supported locales are required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}
	supported := make(map[string]struct{}, len(deps.Supported))
	codes := make([]string, 0, len(deps.Supported))
	for _, code := range deps.Supported {
		code = domain.NormalizeLocale(code)
		if _, dup := supported[code]; code == "" || dup {
			continue
		}
		supported[code] = struct{}{}
		codes = append(codes, code)
	}
	return &productService{
		repo:      deps.Products,
		resolver:  deps.Locales,
		supported: supported,
		codes:     codes,
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger,
	}, nil
}

// CreateProduct writes the product in steps: the product row, then its
// translations, then each specification and feature point. A failed
// translations step deletes the product row again. Specification and
// feature failures are logged and skipped.
func (s *productService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (domain.Product, error) {
	product := s.normalize(cmd.Product)
	product.ID = s.newID()
	now := s.clock()
	product.CreatedAt, product.UpdatedAt = now, now
	s.assignIDs(&product)

	if err := s.validate(product); err != nil {
		return domain.Product{}, err
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		if repositories.IsConflict(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductConflict, product.Slug)
		}
		return domain.Product{}, fmt.Errorf("%w: insert product: %v", ErrProductCreate, err)
	}

	if err := s.repo.InsertTranslations(ctx, product.ID, product.Translations); err != nil {
		fields := map[string]any{"productId": product.ID, "error": err}
		if delErr := s.repo.Delete(ctx, product.ID); delErr != nil && !repositories.IsNotFound(delErr) {
			fields["compensationError"] = delErr
			s.logger(ctx, productLoggerEventCompensateFail, fields)
		} else {
			s.logger(ctx, productLoggerEventCompensated, fields)
		}
		return domain.Product{}, fmt.Errorf("%w: insert translations: %v", ErrProductCreate, err)
	}

	stored := product
	stored.Specifications = stored.Specifications[:0:0]
	for _, spec := range product.Specifications {
		if err := s.repo.InsertSpecification(ctx, product.ID, spec); err != nil {
			s.logger(ctx, productLoggerEventSpecSkipped, map[string]any{"productId": product.ID, "specificationId": spec.ID, "error": err})
			continue
		}
		stored.Specifications = append(stored.Specifications, spec)
	}
	stored.FeaturePoints = stored.FeaturePoints[:0:0]
	for _, feature := range product.FeaturePoints {
		if err := s.repo.LinkFeature(ctx, product.ID, feature); err != nil {
			s.logger(ctx, productLoggerEventFeatureSkipped, map[string]any{"productId": product.ID, "featureId": feature.ID, "error": err})
			continue
		}
		stored.FeaturePoints = append(stored.FeaturePoints, feature)
	}

	s.logger(ctx, productLoggerEventCreated, map[string]any{
		"productId":      product.ID,
		"actorId":        cmd.ActorID,
		"specifications": len(stored.Specifications),
		"features":       len(stored.FeaturePoints),
	})
	return stored, nil
}

func (s *productService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (domain.Product, error) {
	product := s.normalize(cmd.Product)
	if product.ID == "" {
		return domain.Product{}, fieldErrors{"id": "required"}.err(ErrProductInvalid)
	}
	existing, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return domain.Product{}, s.mapRepoErr(err, product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()
	s.assignIDs(&product)

	if err := s.validate(product); err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.Replace(ctx, product); err != nil {
		return domain.Product{}, s.mapRepoErr(err, product.ID)
	}
	return product, nil
}

func (s *productService) ReorderProduct(ctx context.Context, cmd ReorderProductCommand) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, strings.TrimSpace(cmd.ProductID))
	if err != nil {
		return domain.Product{}, s.mapRepoErr(err, cmd.ProductID)
	}

	activeID, overID := strings.TrimSpace(cmd.ActiveID), strings.TrimSpace(cmd.OverID)
	switch strings.TrimSpace(cmd.Field) {
	case ProductFieldSpecifications:
		product.Specifications, err = moveByID(product.Specifications, func(v domain.Specification) int { return v.SortOrder }, activeID, overID)
	case ProductFieldColorVariants:
		product.ColorVariants, err = moveByID(product.ColorVariants, func(v domain.ColorVariant) int { return v.SortOrder }, activeID, overID)
	case ProductFieldFeaturePoints:
		product.FeaturePoints, err = moveByID(product.FeaturePoints, func(v domain.FeaturePoint) int { return v.SortOrder }, activeID, overID)
	case ProductFieldContentSections:
		product.ContentSections, err = moveByID(product.ContentSections, func(v domain.ContentSection) int { return v.SortOrder }, activeID, overID)
	case ProductFieldDocuments:
		product.Documents, err = moveByID(product.Documents, func(v domain.ProductDocument) int { return v.SortOrder }, activeID, overID)
	default:
		return domain.Product{}, fieldErrors{"field": "unknown field"}.err(ErrProductInvalid)
	}
	if err != nil {
		return domain.Product{}, fieldErrors{"active_id": err.Error()}.err(ErrProductInvalid)
	}

	product.UpdatedAt = s.clock()
	if err := s.repo.Replace(ctx, product); err != nil {
		return domain.Product{}, s.mapRepoErr(err, product.ID)
	}
	return product, nil
}

func moveByID[T formarray.Item, PT interface {
	*T
	SetSortOrder(int)
}](items []T, sortOrder func(T) int, activeID, overID string) ([]T, error) {
	arr := formarray.New[T, PT](items, sortOrder)
	if err := arr.MoveByID(activeID, overID); err != nil {
		return nil, err
	}
	return arr.Items(), nil
}

func (s *productService) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fieldErrors{"id": "required"}.err(ErrProductInvalid)
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return s.mapRepoErr(err, productID)
	}
	return nil
}

func (s *productService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, s.mapRepoErr(err, productID)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter ProductListFilter) (domain.ListResult[domain.Product], error) {
	params := filter.Pagination
	if params.Limit <= 0 {
		params.Limit = pagination.DefaultLimit
	}
	return s.repo.List(ctx, domain.ProductFilter{
		Type:   strings.TrimSpace(filter.Type),
		Active: filter.Active,
	}, repositories.ListOptions{Offset: params.Offset(), Limit: params.Limit})
}

func (s *productService) Completeness(ctx context.Context, productID string) (map[string]formarray.Status, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return formarray.LocaleStatuses(product.Translations, s.codes,
		func(t domain.ProductTranslation) string { return t.Name },
		func(t domain.ProductTranslation) string { return t.ShortDescription },
		func(t domain.ProductTranslation) string { return t.Description },
	), nil
}

func (s *productService) Showcase(ctx context.Context, productType, requested string, limit int) ([]domain.ShowcaseProduct, error) {
	active := true
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	result, err := s.repo.List(ctx, domain.ProductFilter{Type: strings.TrimSpace(productType), Active: &active}, repositories.ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	pageLocale := domain.NormalizeLocale(requested)
	if pageLocale == "" {
		pageLocale = s.resolver.DefaultLocale()
	}
	cards := make([]domain.ShowcaseProduct, 0, len(result.Items))
	for _, product := range result.Items {
		tr, _, _ := locale.Resolve(s.resolver, product.Translations, requested)
		card := domain.ShowcaseProduct{
			ID:    product.ID,
			Name:  tr.Name,
			Image: product.ImageURL,
			Href:  "/" + pageLocale + "/products/" + product.Slug,
		}
		if product.PowerKW > 0 {
			card.Power = strconv.FormatFloat(product.PowerKW, 'f', -1, 64) + " kW"
		}
		for _, feature := range product.FeaturePoints {
			ftr, _, ok := locale.Resolve(s.resolver, feature.Translations, requested)
			if ok && ftr.Title != "" {
				card.Features = append(card.Features, ftr.Title)
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *productService) normalize(p domain.Product) domain.Product {
	p.ID = strings.TrimSpace(p.ID)
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Translations = append([]domain.ProductTranslation(nil), p.Translations...)
	for i := range p.Translations {
		tr := &p.Translations[i]
		tr.Locale = domain.NormalizeLocale(tr.Locale)
		tr.Name = strings.TrimSpace(tr.Name)
		tr.ShortDescription = strings.TrimSpace(tr.ShortDescription)
		tr.Description = strings.TrimSpace(tr.Description)
	}
	p.Specifications = formarray.New(p.Specifications, func(v domain.Specification) int { return v.SortOrder }).Items()
	p.ColorVariants = formarray.New(p.ColorVariants, func(v domain.ColorVariant) int { return v.SortOrder }).Items()
	p.FeaturePoints = formarray.New(p.FeaturePoints, func(v domain.FeaturePoint) int { return v.SortOrder }).Items()
	p.ContentSections = formarray.New(p.ContentSections, func(v domain.ContentSection) int { return v.SortOrder }).Items()
	p.Documents = formarray.New(p.Documents, func(v domain.ProductDocument) int { return v.SortOrder }).Items()
	return p
}

func (s *productService) assignIDs(p *domain.Product) {
	for i := range p.Specifications {
		if strings.TrimSpace(p.Specifications[i].ID) == "" {
			p.Specifications[i].ID = s.newID()
		}
	}
	for i := range p.ColorVariants {
		if strings.TrimSpace(p.ColorVariants[i].ID) == "" {
			p.ColorVariants[i].ID = s.newID()
		}
	}
	for i := range p.FeaturePoints {
		if strings.TrimSpace(p.FeaturePoints[i].ID) == "" {
			p.FeaturePoints[i].ID = s.newID()
		}
	}
	for i := range p.ContentSections {
		if strings.TrimSpace(p.ContentSections[i].ID) == "" {
			p.ContentSections[i].ID = s.newID()
		}
	}
	for i := range p.Documents {
		if strings.TrimSpace(p.Documents[i].ID) == "" {
			p.Documents[i].ID = s.newID()
		}
	}
}

func (s *productService) validate(p domain.Product) error {
	fields := fieldErrors{}
	if !textutil.IsSlug(p.Slug) {
		fields.add("slug", "must be lowercase letters, digits and hyphens")
	}
	if _, ok := productTypes[p.Type]; !ok {
		fields.add("type", "unknown product type")
	}
	if p.PowerKW < 0 {
		fields.add("power_kw", "must not be negative")
	}
	if len(p.Translations) == 0 {
		fields.add("translations", "at least one translation is required")
	}
	seen := make(map[string]struct{}, len(p.Translations))
	for i, tr := range p.Translations {
		prefix := fmt.Sprintf("translations[%d]", i)
		if _, ok := s.supported[tr.Locale]; !ok {
			fields.add(prefix+".locale", "unsupported locale")
		}
		if _, dup := seen[tr.Locale]; dup {
			fields.add(prefix+".locale", "duplicate locale")
		}
		seen[tr.Locale] = struct{}{}
		if tr.Name == "" {
			fields.add(prefix+".name", "required")
		}
	}
	if len(p.FeaturePoints) > domain.MaxFeaturePoints {
		fields.add("feature_points", fmt.Sprintf("at most %d feature points", domain.MaxFeaturePoints))
	}
	for i, spec := range p.Specifications {
		if strings.TrimSpace(spec.Key) == "" {
			fields.add(fmt.Sprintf("specifications[%d].key", i), "required")
		}
	}
	return fields.err(ErrProductInvalid)
}

func (s *productService) mapRepoErr(err error, productID string) error {
	switch {
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrProductConflict, err)
	default:
		return err
	}
}
