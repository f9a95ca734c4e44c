package sections

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/widgets/carousel"
)

// ErrUnknownType is reported by Validate for types outside AllTypes.
var ErrUnknownType = errors.New("sections: unknown section type")

// ConfigError describes a section whose config does not fit its type.
type ConfigError struct {
	SectionID string
	Type      Type
	Fields    map[string]string
	Err       error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("sections: invalid %s config", e.Type)
	if e.SectionID != "" {
		msg += " for section " + e.SectionID
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for key := range e.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+" "+e.Fields[key])
		}
		msg += ": " + strings.Join(parts, ", ")
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type checker interface {
	Variant
	check(fields map[string]string)
}

// Parse decodes the section config into the variant for its type. Unknown
// types yield an Unknown variant and no error.
func Parse(section domain.Section) (Variant, error) {
	b := base{Section: section}
	switch Type(strings.TrimSpace(section.Type)) {
	case TypeHero:
		return finish(&Hero{base: b})
	case TypeBenefits:
		return finish(&Benefits{base: b})
	case TypeText:
		return finish(&Text{base: b})
	case TypeGallery:
		return finish(&Gallery{base: b})
	case TypeFAQ:
		return finish(&FAQ{base: b})
	case TypeContactForm:
		return finish(&ContactForm{base: b})
	case TypeCTA:
		return finish(&CTA{base: b})
	case TypeStats:
		return finish(&Stats{base: b})
	case TypeProductShowcase:
		return finish(&ProductShowcase{base: b})
	case TypeProductSelector:
		return finish(&ProductSelector{base: b})
	case TypeComparison:
		return finish(&Comparison{base: b})
	case TypeDocuments:
		return finish(&Documents{base: b})
	default:
		return Unknown{base: b, Raw: section.Type}, nil
	}
}

// Validate is Parse for the write path: unknown types are rejected.
func Validate(section domain.Section) error {
	v, err := Parse(section)
	if err != nil {
		return err
	}
	if _, ok := v.(Unknown); ok {
		return &ConfigError{
			SectionID: section.ID,
			Type:      Type(section.Type),
			Fields:    map[string]string{"type": "is not a known section type"},
			Err:       ErrUnknownType,
		}
	}
	return nil
}

func finish[V any, PV interface {
	*V
	checker
}](v PV) (Variant, error) {
	section := v.Base()
	if len(section.Config) > 0 {
		raw, err := json.Marshal(section.Config)
		if err == nil {
			err = json.Unmarshal(raw, v)
		}
		if err != nil {
			return nil, &ConfigError{SectionID: section.ID, Type: v.Type(), Err: err}
		}
	}
	fields := map[string]string{}
	v.check(fields)
	if len(fields) > 0 {
		return nil, &ConfigError{SectionID: section.ID, Type: v.Type(), Fields: fields}
	}
	return any(*v).(Variant), nil
}

func (h *Hero) check(fields map[string]string) {
	h.Image = strings.TrimSpace(h.Image)
	if h.Image == "" {
		fields["image"] = "is required"
	}
	if strings.TrimSpace(h.CTALabel) != "" && strings.TrimSpace(h.CTAHref) == "" {
		fields["cta_href"] = "is required when cta_label is set"
	}
}

func (b *Benefits) check(fields map[string]string) {
	if b.Columns == 0 {
		b.Columns = 3
	}
	if b.Columns < 1 || b.Columns > 4 {
		fields["columns"] = "must be between 1 and 4"
	}
}

func (t *Text) check(fields map[string]string) {
	switch t.Align {
	case "":
		t.Align = "left"
	case "left", "center":
	default:
		fields["align"] = "must be left or center"
	}
}

func (g *Gallery) check(fields map[string]string) {
	if len(g.Images) == 0 {
		fields["images"] = "must contain at least one image"
	}
	for i, img := range g.Images {
		if strings.TrimSpace(img.URL) == "" {
			fields[fmt.Sprintf("images[%d].url", i)] = "is required"
		}
	}
}

func (f *FAQ) check(fields map[string]string) {
	if f.Limit < 0 {
		fields["limit"] = "must not be negative"
	}
}

func (c *ContactForm) check(map[string]string) {
	if strings.TrimSpace(c.Action) == "" {
		c.Action = "/api/contact"
	}
}

func (c *CTA) check(fields map[string]string) {
	if strings.TrimSpace(c.Href) == "" {
		fields["href"] = "is required"
	}
}

func (s *Stats) check(fields map[string]string) {
	if len(s.Items) == 0 {
		fields["items"] = "must contain at least one entry"
	}
	for i, item := range s.Items {
		if strings.TrimSpace(item.Value) == "" {
			fields[fmt.Sprintf("items[%d].value", i)] = "is required"
		}
	}
}

func (p *ProductShowcase) check(fields map[string]string) {
	checkProductType(p.ProductType, fields)
	if p.Limit == 0 {
		p.Limit = 6
	}
	if p.Limit < 0 {
		fields["limit"] = "must not be negative"
	}
	if p.IntervalMS == 0 {
		p.IntervalMS = int(carousel.DefaultInterval / time.Millisecond)
	}
	if p.CooldownMS == 0 {
		p.CooldownMS = int(carousel.DefaultCooldown / time.Millisecond)
	}
	if p.IntervalMS < 0 {
		fields["interval_ms"] = "must be positive"
	}
	if p.CooldownMS < 0 {
		fields["cooldown_ms"] = "must be positive"
	}
}

func (p *ProductSelector) check(fields map[string]string) {
	checkProductType(p.ProductType, fields)
}

func (c *Comparison) check(fields map[string]string) {
	if strings.TrimSpace(c.Left.Image) == "" {
		fields["left.image"] = "is required"
	}
	if strings.TrimSpace(c.Right.Image) == "" {
		fields["right.image"] = "is required"
	}
	if c.Initial != nil && (*c.Initial < 0 || *c.Initial > 100) {
		fields["initial"] = "must be between 0 and 100"
	}
}

func (d *Documents) check(fields map[string]string) {
	switch d.Kind {
	case "", domain.DocumentKindDatasheet, domain.DocumentKindManual, domain.DocumentKindCertificate:
	default:
		fields["kind"] = "is not a known document kind"
	}
}

func checkProductType(value string, fields map[string]string) {
	switch value {
	case "", domain.ProductTypeACCharger, domain.ProductTypeDCCharger, domain.ProductTypeAccessory:
	default:
		fields["product_type"] = "is not a known product type"
	}
}
