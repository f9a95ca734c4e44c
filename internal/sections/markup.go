package sections

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// builder accumulates escaped HTML for one component.
type builder struct {
	strings.Builder
}

// open writes a start tag. attrs are name/value pairs; values are escaped and
// attributes named href or src are passed through templ's URL sanitiser.
func (b *builder) open(tag string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if name == "href" || name == "src" || name == "action" {
			value = string(templ.URL(value))
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func (b *builder) close(tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func (b *builder) text(value string) {
	b.WriteString(templ.EscapeString(value))
}

// element writes tag with escaped text content, skipping it when text is empty.
func (b *builder) element(tag, text string, attrs ...string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b.open(tag, attrs...)
	b.text(text)
	b.close(tag)
}

func (b *builder) void(tag string, attrs ...string) {
	b.open(tag, attrs...)
}

func component(write func(b *builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b builder
		write(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
