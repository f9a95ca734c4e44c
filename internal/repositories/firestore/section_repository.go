package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/voltline/site/internal/domain"
	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/repositories"
)

const sectionsCollection = "page_sections"

type sectionDocument struct {
	PageSlug     string                       `firestore:"page_slug"`
	Type         string                       `firestore:"section_type"`
	SortOrder    int                          `firestore:"sort_order"`
	IsActive     bool                         `firestore:"is_active"`
	Config       map[string]any               `firestore:"config"`
	Translations []sectionTranslationDocument `firestore:"translations"`
	Benefits     []benefitDocument            `firestore:"benefits"`
	CreatedAt    time.Time                    `firestore:"created_at"`
	UpdatedAt    time.Time                    `firestore:"updated_at"`
}

type sectionTranslationDocument struct {
	Locale     string `firestore:"locale"`
	Heading    string `firestore:"heading,omitempty"`
	Subheading string `firestore:"subheading,omitempty"`
	Content    string `firestore:"content,omitempty"`
}

type benefitDocument struct {
	ID           string                       `firestore:"id"`
	Icon         string                       `firestore:"icon"`
	ColorAccent  string                       `firestore:"color_accent"`
	SortOrder    int                          `firestore:"sort_order"`
	Translations []benefitTranslationDocument `firestore:"translations"`
}

type benefitTranslationDocument struct {
	Locale      string `firestore:"locale"`
	Title       string `firestore:"title"`
	Description string `firestore:"description,omitempty"`
}

type SectionRepository struct {
	provider *pfirestore.Provider
	sections *pfirestore.Collection[sectionDocument]
}

var _ repositories.SectionRepository = (*SectionRepository)(nil)

func NewSectionRepository(provider *pfirestore.Provider) *SectionRepository {
	return &SectionRepository{
		provider: provider,
		sections: pfirestore.NewCollection[sectionDocument](provider, sectionsCollection),
	}
}

func (r *SectionRepository) Insert(ctx context.Context, section domain.Section) error {
	return r.sections.Create(ctx, section.ID, encodeSection(section))
}

func (r *SectionRepository) Update(ctx context.Context, section domain.Section) error {
	ref, err := r.sections.Doc(ctx, section.ID)
	if err != nil {
		return err
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, encodeSection(section))
	})
}

func (r *SectionRepository) Delete(ctx context.Context, sectionID string) error {
	return r.sections.Delete(ctx, sectionID)
}

func (r *SectionRepository) FindByID(ctx context.Context, sectionID string) (domain.Section, error) {
	doc, err := r.sections.Get(ctx, sectionID)
	if err != nil {
		return domain.Section{}, err
	}
	return decodeSection(doc.ID, doc.Data), nil
}

func (r *SectionRepository) ListByPage(ctx context.Context, pageSlug string, activeOnly bool) ([]domain.Section, error) {
	docs, err := r.sections.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("page_slug", "==", pageSlug)
		if activeOnly {
			q = q.Where("is_active", "==", true)
		}
		return q.OrderBy("sort_order", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Section, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeSection(doc.ID, doc.Data))
	}
	return out, nil
}

// Reorder rewrites sort_order for ids in a single transaction so readers never
// see a half-applied order.
func (r *SectionRepository) Reorder(ctx context.Context, pageSlug string, ids []string) error {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		ref, err := r.sections.Doc(ctx, id)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if !snap.Exists() {
				return status.Errorf(codes.NotFound, "section %s not found", snap.Ref.ID)
			}
			slug, err := snap.DataAt("page_slug")
			if err != nil || slug != pageSlug {
				return status.Errorf(codes.NotFound, "section %s not on page %s", snap.Ref.ID, pageSlug)
			}
		}
		for order, ref := range refs {
			if err := tx.Update(ref, []firestore.Update{{Path: "sort_order", Value: order}}); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeSection(s domain.Section) sectionDocument {
	doc := sectionDocument{
		PageSlug:  s.PageSlug,
		Type:      s.Type,
		SortOrder: s.SortOrder,
		IsActive:  s.IsActive,
		Config:    s.Config,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
	for _, tr := range s.Translations {
		doc.Translations = append(doc.Translations, sectionTranslationDocument(tr))
	}
	for _, b := range s.Benefits {
		bd := benefitDocument{ID: b.ID, Icon: b.Icon, ColorAccent: b.ColorAccent, SortOrder: b.SortOrder}
		for _, tr := range b.Translations {
			bd.Translations = append(bd.Translations, benefitTranslationDocument(tr))
		}
		doc.Benefits = append(doc.Benefits, bd)
	}
	return doc
}

func decodeSection(id string, doc sectionDocument) domain.Section {
	s := domain.Section{
		ID:        id,
		PageSlug:  doc.PageSlug,
		Type:      doc.Type,
		SortOrder: doc.SortOrder,
		IsActive:  doc.IsActive,
		Config:    doc.Config,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, tr := range doc.Translations {
		s.Translations = append(s.Translations, domain.SectionTranslation(tr))
	}
	for _, b := range doc.Benefits {
		benefit := domain.Benefit{ID: b.ID, Icon: b.Icon, ColorAccent: b.ColorAccent, SortOrder: b.SortOrder}
		for _, tr := range b.Translations {
			benefit.Translations = append(benefit.Translations, domain.BenefitTranslation(tr))
		}
		s.Benefits = append(s.Benefits, benefit)
	}
	return s
}
