package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/repositories"
)

type SectionRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Section
}

var _ repositories.SectionRepository = (*SectionRepository)(nil)

func NewSectionRepository() *SectionRepository {
	return &SectionRepository{items: map[string]domain.Section{}}
}

func (r *SectionRepository) Insert(_ context.Context, section domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[section.ID]; ok {
		return conflict("sections.insert", "section", section.ID)
	}
	r.items[section.ID] = cloneSection(section)
	return nil
}

func (r *SectionRepository) Update(_ context.Context, section domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[section.ID]; !ok {
		return notFound("sections.update", "section", section.ID)
	}
	r.items[section.ID] = cloneSection(section)
	return nil
}

func (r *SectionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("sections.delete", "section", id)
	}
	delete(r.items, id)
	return nil
}

func (r *SectionRepository) FindByID(_ context.Context, id string) (domain.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	section, ok := r.items[id]
	if !ok {
		return domain.Section{}, notFound("sections.find", "section", id)
	}
	return cloneSection(section), nil
}

func (r *SectionRepository) ListByPage(_ context.Context, pageSlug string, activeOnly bool) ([]domain.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Section{}
	for _, section := range r.items {
		if section.PageSlug != pageSlug || (activeOnly && !section.IsActive) {
			continue
		}
		out = append(out, cloneSection(section))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (r *SectionRepository) Reorder(_ context.Context, pageSlug string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		section, ok := r.items[id]
		if !ok || section.PageSlug != pageSlug {
			return notFound("sections.reorder", "section", id)
		}
	}
	for order, id := range ids {
		section := r.items[id]
		section.SortOrder = order
		r.items[id] = section
	}
	return nil
}

func cloneSection(s domain.Section) domain.Section {
	s.Config = maps.Clone(s.Config)
	s.Translations = append([]domain.SectionTranslation(nil), s.Translations...)
	s.Benefits = cloneEach(s.Benefits, func(b domain.Benefit) domain.Benefit {
		b.Translations = append([]domain.BenefitTranslation(nil), b.Translations...)
		return b
	})
	return s
}
