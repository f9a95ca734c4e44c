// Package firestore implements the repositories on Cloud Firestore.
package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/repositories"
)

// Registry wires every Firestore repository to one provider.
type Registry struct {
	provider   *pfirestore.Provider
	products   *ProductRepository
	sections   *SectionRepository
	categories *CategoryRepository
	faqs       *FAQRepository
	documents  *DocumentRepository
	articles   *ArticleRepository
	media      *MediaRepository
	contact    *ContactRepository
}

var _ repositories.Registry = (*Registry)(nil)

func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("firestore registry requires a provider")
	}
	return &Registry{
		provider:   provider,
		products:   NewProductRepository(provider),
		sections:   NewSectionRepository(provider),
		categories: NewCategoryRepository(provider),
		faqs:       NewFAQRepository(provider),
		documents:  NewDocumentRepository(provider),
		articles:   NewArticleRepository(provider),
		media:      NewMediaRepository(provider),
		contact:    NewContactRepository(provider),
	}, nil
}

func (r *Registry) Close(context.Context) error    { return r.provider.Close() }
func (r *Registry) Ping(ctx context.Context) error { return r.provider.Ping(ctx) }

func (r *Registry) Products() repositories.ProductRepository    { return r.products }
func (r *Registry) Sections() repositories.SectionRepository    { return r.sections }
func (r *Registry) Categories() repositories.CategoryRepository { return r.categories }
func (r *Registry) FAQs() repositories.FAQRepository            { return r.faqs }
func (r *Registry) Documents() repositories.DocumentRepository  { return r.documents }
func (r *Registry) Articles() repositories.ArticleRepository    { return r.articles }
func (r *Registry) Media() repositories.MediaRepository         { return r.media }
func (r *Registry) Contact() repositories.ContactRepository     { return r.contact }
