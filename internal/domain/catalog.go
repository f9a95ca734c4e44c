package domain

import "time"

type Category struct {
	ID           string
	Slug         string
	SortOrder    int
	Translations []CategoryTranslation
	CreatedAt    time.Time
}

type CategoryTranslation struct {
	Locale      string
	Name        string
	Description string
}

func (t CategoryTranslation) LocaleCode() string { return t.Locale }

type FAQ struct {
	ID           string
	CategoryID   string
	SortOrder    int
	IsActive     bool
	Translations []FAQTranslation
	CreatedAt    time.Time
}

type FAQTranslation struct {
	Locale   string
	Question string
	Answer   string
}

func (t FAQTranslation) LocaleCode() string { return t.Locale }

// Document kinds in the download library.
const (
	DocumentKindDatasheet   = "datasheet"
	DocumentKindManual      = "manual"
	DocumentKindCertificate = "certificate"
)

// Document is a downloadable file from the document library.
type Document struct {
	ID           string
	Kind         string
	FileURL      string
	FileSize     int64
	IsActive     bool
	SortOrder    int
	Translations []DocumentTranslation
	CreatedAt    time.Time
}

type DocumentTranslation struct {
	Locale      string
	Title       string
	Description string
}

func (t DocumentTranslation) LocaleCode() string { return t.Locale }

// Article is a blog post.
type Article struct {
	ID            string
	Slug          string
	CoverImageURL string
	IsPublished   bool
	PublishedAt   time.Time
	Translations  []ArticleTranslation
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ArticleTranslation struct {
	Locale  string
	Title   string
	Excerpt string
	Body    string
}

func (t ArticleTranslation) LocaleCode() string { return t.Locale }

// ListResult is one page of a listing plus the unpaged total.
type ListResult[T any] struct {
	Items []T
	Total int
}
