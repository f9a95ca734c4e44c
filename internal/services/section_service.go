package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/formarray"
	"github.com/voltline/site/internal/platform/textutil"
	"github.com/voltline/site/internal/repositories"
	"github.com/voltline/site/internal/sections"
)

// SectionServiceDeps bundles constructor inputs for the section service.
type SectionServiceDeps struct {
	Sections  repositories.SectionRepository
	Supported []string
	// OnChange is told which page changed so cached renders can be dropped.
	OnChange func(pageSlug string)
	Clock    func() time.Time
	IDGen    func() string
}

type sectionService struct {
	repo      repositories.SectionRepository
	supported map[string]struct{}
	onChange  func(string)
	clock     func() time.Time
	newID     func() string
}

var _ SectionService = (*sectionService)(nil)

func NewSectionService(deps SectionServiceDeps) (SectionService, error) {
	if deps.Sections == nil {
		return nil, errors.New("section service: section repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	onChange := deps.OnChange
	if onChange == nil {
		onChange = func(string) {}
	}
	supported := make(map[string]struct{}, len(deps.Supported))
	for _, code := range deps.Supported {
		supported[domain.NormalizeLocale(code)] = struct{}{}
	}
	return &sectionService{
		repo:      deps.Sections,
		supported: supported,
		onChange:  onChange,
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
	}, nil
}

func (s *sectionService) ListSections(ctx context.Context, pageSlug string) ([]domain.Section, error) {
	return s.repo.ListByPage(ctx, strings.TrimSpace(pageSlug), false)
}

// CreateSection appends the section to the end of its page.
func (s *sectionService) CreateSection(ctx context.Context, section domain.Section) (domain.Section, error) {
	section = s.normalize(section)
	if err := s.validate(section); err != nil {
		return domain.Section{}, err
	}
	next, err := s.nextSortOrder(ctx, section.PageSlug)
	if err != nil {
		return domain.Section{}, err
	}
	now := s.clock()
	section.ID = s.newID()
	section.SortOrder = next
	section.CreatedAt, section.UpdatedAt = now, now
	if err := s.repo.Insert(ctx, section); err != nil {
		return domain.Section{}, err
	}
	s.onChange(section.PageSlug)
	return section, nil
}

// UpdateSection keeps the section's position. A section moved to another
// page goes to the end of that page and the source page is renumbered.
func (s *sectionService) UpdateSection(ctx context.Context, section domain.Section) (domain.Section, error) {
	section = s.normalize(section)
	current, err := s.repo.FindByID(ctx, section.ID)
	if err != nil {
		return domain.Section{}, s.mapRepoErr(err, section.ID)
	}
	if err := s.validate(section); err != nil {
		return domain.Section{}, err
	}
	moved := current.PageSlug != section.PageSlug
	section.SortOrder = current.SortOrder
	if moved {
		if section.SortOrder, err = s.nextSortOrder(ctx, section.PageSlug); err != nil {
			return domain.Section{}, err
		}
	}
	section.CreatedAt = current.CreatedAt
	section.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, section); err != nil {
		return domain.Section{}, s.mapRepoErr(err, section.ID)
	}
	s.onChange(current.PageSlug)
	if moved {
		s.onChange(section.PageSlug)
		if err := s.compact(ctx, current.PageSlug); err != nil {
			return domain.Section{}, err
		}
	}
	return section, nil
}

func (s *sectionService) DeleteSection(ctx context.Context, sectionID string) error {
	sectionID = strings.TrimSpace(sectionID)
	current, err := s.repo.FindByID(ctx, sectionID)
	if err != nil {
		return s.mapRepoErr(err, sectionID)
	}
	if err := s.repo.Delete(ctx, sectionID); err != nil {
		return s.mapRepoErr(err, sectionID)
	}
	s.onChange(current.PageSlug)
	return s.compact(ctx, current.PageSlug)
}

func (s *sectionService) ReorderSections(ctx context.Context, pageSlug, activeID, overID string) ([]domain.Section, error) {
	pageSlug = strings.TrimSpace(pageSlug)
	current, err := s.repo.ListByPage(ctx, pageSlug, false)
	if err != nil {
		return nil, err
	}
	arr := formarray.New(current, func(v domain.Section) int { return v.SortOrder })
	if err := arr.MoveByID(strings.TrimSpace(activeID), strings.TrimSpace(overID)); err != nil {
		if errors.Is(err, formarray.ErrUnknownID) {
			return nil, fmt.Errorf("%w: %v", ErrSectionNotFound, err)
		}
		return nil, err
	}
	ordered := arr.Items()
	ids := make([]string, len(ordered))
	for i, section := range ordered {
		ids[i] = section.ID
	}
	if err := s.repo.Reorder(ctx, pageSlug, ids); err != nil {
		return nil, s.mapRepoErr(err, pageSlug)
	}
	s.onChange(pageSlug)
	return ordered, nil
}

func (s *sectionService) nextSortOrder(ctx context.Context, pageSlug string) (int, error) {
	existing, err := s.repo.ListByPage(ctx, pageSlug, false)
	if err != nil {
		return 0, err
	}
	next := len(existing)
	for _, section := range existing {
		if section.SortOrder >= next {
			next = section.SortOrder + 1
		}
	}
	return next, nil
}

// compact renumbers the page's sections to 0..n-1 keeping their order.
func (s *sectionService) compact(ctx context.Context, pageSlug string) error {
	existing, err := s.repo.ListByPage(ctx, pageSlug, false)
	if err != nil {
		return err
	}
	dense := true
	ids := make([]string, len(existing))
	for i, section := range formarray.New(existing, func(v domain.Section) int { return v.SortOrder }).Items() {
		ids[i] = section.ID
		if existing[i].ID != section.ID || existing[i].SortOrder != i {
			dense = false
		}
	}
	if dense {
		return nil
	}
	if err := s.repo.Reorder(ctx, pageSlug, ids); err != nil {
		return s.mapRepoErr(err, pageSlug)
	}
	s.onChange(pageSlug)
	return nil
}

func (s *sectionService) normalize(section domain.Section) domain.Section {
	section.ID = strings.TrimSpace(section.ID)
	section.PageSlug = strings.ToLower(strings.TrimSpace(section.PageSlug))
	section.Type = strings.TrimSpace(section.Type)
	section.Config = maps.Clone(section.Config)
	section.Translations = append([]domain.SectionTranslation(nil), section.Translations...)
	for i := range section.Translations {
		section.Translations[i].Locale = domain.NormalizeLocale(section.Translations[i].Locale)
	}
	section.Benefits = formarray.New(section.Benefits, func(v domain.Benefit) int { return v.SortOrder }).Items()
	for i := range section.Benefits {
		if strings.TrimSpace(section.Benefits[i].ID) == "" {
			section.Benefits[i].ID = s.newID()
		}
	}
	return section
}

func (s *sectionService) validate(section domain.Section) error {
	fields := fieldErrors{}
	if !textutil.IsSlug(section.PageSlug) {
		fields.add("page_slug", "must be lowercase letters, digits and hyphens")
	}
	seen := map[string]struct{}{}
	for i, tr := range section.Translations {
		key := fmt.Sprintf("translations[%d].locale", i)
		if _, ok := s.supported[tr.Locale]; len(s.supported) > 0 && !ok {
			fields.add(key, "unsupported locale")
		}
		if _, dup := seen[tr.Locale]; dup {
			fields.add(key, "duplicate locale")
		}
		seen[tr.Locale] = struct{}{}
	}
	if err := sections.Validate(section); err != nil {
		var cfgErr *sections.ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		if len(cfgErr.Fields) == 0 {
			fields.add("config", cfgErr.Error())
		}
		for key, msg := range cfgErr.Fields {
			if key == "type" {
				fields.add("type", msg)
				continue
			}
			fields.add("config."+key, msg)
		}
	}
	return fields.err(ErrSectionInvalid)
}

func (s *sectionService) mapRepoErr(err error, id string) error {
	if repositories.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	return err
}
