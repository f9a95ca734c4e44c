package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/voltline/site/internal/services"
)

const siteName = "Voltline"

type layoutData struct {
	Page       services.ComposedPage
	Alternates []alternate
	Canonical  string
}

type alternate struct {
	Locale string
	Href   string
}

// pageLayout wraps composed sections in the document shell.
func pageLayout(data layoutData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"")
		b.WriteString(templ.EscapeString(data.Page.Locale))
		b.WriteString("\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		b.WriteString(templ.EscapeString(documentTitle(data.Page.Title)))
		b.WriteString("</title>")
		if data.Canonical != "" {
			writeLink(&b, "canonical", data.Canonical, "")
		}
		for _, alt := range data.Alternates {
			writeLink(&b, "alternate", alt.Href, alt.Locale)
		}
		b.WriteString("</head><body><main data-page=\"")
		b.WriteString(templ.EscapeString(data.Page.Slug))
		b.WriteString("\">")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		for _, section := range data.Page.Sections {
			if section.Component == nil {
				continue
			}
			if err := section.Component.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

func writeLink(b *strings.Builder, rel, href, hreflang string) {
	b.WriteString(`<link rel="`)
	b.WriteString(rel)
	b.WriteString(`" href="`)
	b.WriteString(templ.EscapeString(string(templ.URL(href))))
	b.WriteByte('"')
	if hreflang != "" {
		b.WriteString(` hreflang="`)
		b.WriteString(templ.EscapeString(hreflang))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func documentTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return siteName
	}
	return title + " | " + siteName
}

// notFoundLayout is the HTML 404 body for public pages.
func notFoundLayout(localeCode string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\""+templ.EscapeString(localeCode)+
			"\"><head><meta charset=\"utf-8\"><title>"+templ.EscapeString(documentTitle("404"))+
			"</title></head><body><main class=\"not-found\"><h1>404</h1><p><a href=\"/"+templ.EscapeString(localeCode)+
			"/\">"+siteName+"</a></p></main></body></html>")
		return err
	})
}
