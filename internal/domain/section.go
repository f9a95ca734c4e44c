package domain

import "time"

// Section is one block of a composed page. Type selects the renderer and the
// meaning of Config.
type Section struct {
	ID           string
	PageSlug     string
	Type         string
	SortOrder    int
	IsActive     bool
	Config       map[string]any
	Translations []SectionTranslation
	Benefits     []Benefit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SectionTranslation struct {
	Locale     string
	Heading    string
	Subheading string
	Content    string
}

func (t SectionTranslation) LocaleCode() string { return t.Locale }

// Benefit is a highlighted advantage listed by a benefits section.
type Benefit struct {
	ID           string
	Icon         string
	ColorAccent  string
	SortOrder    int
	Translations []BenefitTranslation
}

type BenefitTranslation struct {
	Locale      string
	Title       string
	Description string
}

func (t BenefitTranslation) LocaleCode() string { return t.Locale }

func (b Benefit) ItemID() string          { return b.ID }
func (b *Benefit) SetSortOrder(order int) { b.SortOrder = order }
func (s Section) ItemID() string          { return s.ID }
func (s *Section) SetSortOrder(order int) { s.SortOrder = order }
