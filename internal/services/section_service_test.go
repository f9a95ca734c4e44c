package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/repositories/memory"
)

func textSection(page, heading string) domain.Section {
	return domain.Section{
		PageSlug: page,
		Type:     "text",
		IsActive: true,
		Translations: []domain.SectionTranslation{
			{Locale: "cs", Heading: heading, Content: "Obsah"},
		},
	}
}

func TestSectionService_CreateAppendsAndReorders(t *testing.T) {
	var changed []string
	svc, err := NewSectionService(SectionServiceDeps{
		Sections:  memory.NewSectionRepository(),
		Supported: testSupported,
		OnChange:  func(slug string) { changed = append(changed, slug) },
		Clock:     fixedClock(testNow),
		IDGen:     sequentialIDs("sec"),
	})
	require.NoError(t, err)
	ctx := context.Background()

	var ids []string
	for _, heading := range []string{"A", "B", "C"} {
		section, err := svc.CreateSection(ctx, textSection("Home", heading))
		require.NoError(t, err)
		require.Equal(t, "home", section.PageSlug)
		require.Equal(t, len(ids), section.SortOrder)
		ids = append(ids, section.ID)
	}

	ordered, err := svc.ReorderSections(ctx, "home", ids[0], ids[2])
	require.NoError(t, err)
	require.Equal(t, []string{ids[1], ids[2], ids[0]}, sectionIDs(ordered))

	stored, err := svc.ListSections(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, []string{ids[1], ids[2], ids[0]}, sectionIDs(stored))
	for i, section := range stored {
		require.Equal(t, i, section.SortOrder)
	}
	require.Equal(t, []string{"home", "home", "home", "home"}, changed)

	_, err = svc.ReorderSections(ctx, "home", "missing", ids[0])
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestSectionService_UpdateKeepsPosition(t *testing.T) {
	svc, err := NewSectionService(SectionServiceDeps{Sections: memory.NewSectionRepository(), Supported: testSupported})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateSection(ctx, textSection("home", "A"))
	require.NoError(t, err)
	second, err := svc.CreateSection(ctx, textSection("home", "B"))
	require.NoError(t, err)

	second.Translations[0].Heading = "B2"
	second.SortOrder = 0
	updated, err := svc.UpdateSection(ctx, second)
	require.NoError(t, err)
	require.Equal(t, 1, updated.SortOrder)

	require.NoError(t, svc.DeleteSection(ctx, second.ID))
	require.ErrorIs(t, svc.DeleteSection(ctx, second.ID), ErrSectionNotFound)
	_, err = svc.UpdateSection(ctx, second)
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestSectionService_DeleteRenumbersPage(t *testing.T) {
	var changed []string
	svc, err := NewSectionService(SectionServiceDeps{
		Sections:  memory.NewSectionRepository(),
		Supported: testSupported,
		OnChange:  func(slug string) { changed = append(changed, slug) },
		IDGen:     sequentialIDs("sec"),
	})
	require.NoError(t, err)
	ctx := context.Background()

	var ids []string
	for _, heading := range []string{"A", "B", "C"} {
		section, err := svc.CreateSection(ctx, textSection("home", heading))
		require.NoError(t, err)
		ids = append(ids, section.ID)
	}

	changed = nil
	require.NoError(t, svc.DeleteSection(ctx, ids[1]))
	require.Equal(t, []string{"home", "home"}, changed)

	added, err := svc.CreateSection(ctx, textSection("home", "D"))
	require.NoError(t, err)
	require.Equal(t, 2, added.SortOrder)

	stored, err := svc.ListSections(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, []string{ids[0], ids[2], added.ID}, sectionIDs(stored))
	for i, section := range stored {
		require.Equal(t, i, section.SortOrder)
	}
}

func TestSectionService_MoveAppendsToTargetPage(t *testing.T) {
	var changed []string
	svc, err := NewSectionService(SectionServiceDeps{
		Sections:  memory.NewSectionRepository(),
		Supported: testSupported,
		OnChange:  func(slug string) { changed = append(changed, slug) },
		IDGen:     sequentialIDs("sec"),
	})
	require.NoError(t, err)
	ctx := context.Background()

	var home []domain.Section
	for _, heading := range []string{"A", "B", "C"} {
		section, err := svc.CreateSection(ctx, textSection("home", heading))
		require.NoError(t, err)
		home = append(home, section)
	}
	b2b, err := svc.CreateSection(ctx, textSection("b2b", "X"))
	require.NoError(t, err)

	moving := home[0]
	moving.PageSlug = "b2b"
	changed = nil
	moved, err := svc.UpdateSection(ctx, moving)
	require.NoError(t, err)
	require.Equal(t, 1, moved.SortOrder)
	require.ElementsMatch(t, []string{"home", "b2b", "home"}, changed)

	target, err := svc.ListSections(ctx, "b2b")
	require.NoError(t, err)
	require.Equal(t, []string{b2b.ID, moving.ID}, sectionIDs(target))

	source, err := svc.ListSections(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, []string{home[1].ID, home[2].ID}, sectionIDs(source))
	for i, section := range source {
		require.Equal(t, i, section.SortOrder)
	}
}

func TestSectionService_ValidatesConfig(t *testing.T) {
	svc, err := NewSectionService(SectionServiceDeps{Sections: memory.NewSectionRepository(), Supported: testSupported})
	require.NoError(t, err)

	hero := textSection("home", "Hero")
	hero.Type = "hero"
	hero.Config = map[string]any{"cta_label": "Více"}
	_, err = svc.CreateSection(context.Background(), hero)
	require.ErrorIs(t, err, ErrSectionInvalid)
	fields := FieldErrors(err)
	require.Contains(t, fields, "config.image")
	require.Contains(t, fields, "config.cta_href")

	unknown := textSection("home", "Map")
	unknown.Type = "store_locator"
	unknown.Translations = append(unknown.Translations, domain.SectionTranslation{Locale: "pl"})
	_, err = svc.CreateSection(context.Background(), unknown)
	require.ErrorIs(t, err, ErrSectionInvalid)
	fields = FieldErrors(err)
	require.Contains(t, fields, "type")
	require.Contains(t, fields, "translations[1].locale")
}

func sectionIDs(items []domain.Section) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
