// Package catalog holds the site's static content: products, contact details,
// testimonials and the "about" narrative. It is parsed once and never mutated.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"matifood/internal/domain"
)

//go:embed data/*
var bundled embed.FS

var ErrNotFound = errors.New("catalog: not found")

type Brand struct {
	Name         string `yaml:"name"`
	Tagline      string `yaml:"tagline"`
	HeroTitle    string `yaml:"hero_title"`
	HeroSubtitle string `yaml:"hero_subtitle"`
	HeroImage    string `yaml:"hero_image"`
}

// About is the rendered narrative section.
type About struct {
	Title   string
	Summary string
	HTML    template.HTML
}

type file struct {
	Brand        Brand                `yaml:"brand"`
	Contact      domain.ContactInfo   `yaml:"contact"`
	Products     []domain.Product     `yaml:"products"`
	Testimonials []domain.Testimonial `yaml:"testimonials"`
}

type Catalog struct {
	brand        Brand
	contact      domain.ContactInfo
	products     []domain.Product
	byID         map[string]int
	testimonials []domain.Testimonial
	about        About
}

// Default loads the catalog bundled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads catalog.yaml and about.md from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	c := &Catalog{
		brand:        f.Brand,
		contact:      f.Contact,
		products:     f.Products,
		byID:         make(map[string]int, len(f.Products)),
		testimonials: f.Testimonials,
	}
	for i, p := range f.Products {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalog: product %d is missing id or name", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = i
	}
	for i, t := range f.Testimonials {
		if t.Rating < 1 || t.Rating > 5 {
			return nil, fmt.Errorf("catalog: testimonial %d rating %d out of range", i, t.Rating)
		}
	}

	md, err := fs.ReadFile(fsys, "about.md")
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("catalog: read about: %w", err)
	default:
		if c.about, err = renderAbout(md); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Brand() Brand { return c.brand }
func (c *Catalog) Contact() domain.ContactInfo { return c.contact }
func (c *Catalog) About() About { return c.about }
func (c *Catalog) ProductCount() int { return len(c.products) }
func (c *Catalog) TestimonialCount() int { return len(c.testimonials) }

// Products returns a copy of the listings in catalog order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Product(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return c.products[i], nil
}

// Featured returns up to limit featured testimonials.
func (c *Catalog) Featured(limit int) []domain.Testimonial {
	limit = max(limit, 0)
	out := make([]domain.Testimonial, 0, limit)
	for _, t := range c.testimonials {
		if len(out) >= limit {
			break
		}
		if t.Featured {
			out = append(out, t)
		}
	}
	return out
}

// AverageRating over all testimonials, rounded to one decimal.
func (c *Catalog) AverageRating() float64 {
	if len(c.testimonials) == 0 {
		return 0
	}
	sum := 0
	for _, t := range c.testimonials {
		sum += t.Rating
	}
	tenths := (sum*10 + len(c.testimonials)/2) / len(c.testimonials)
	return float64(tenths) / 10
}

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders an amount in US dollars, e.g. "$ 12.99".
func FormatPrice(m domain.Money) string {
	return pricePrinter.Sprint(currency.Symbol(currency.USD.Amount(m.Float())))
}

var aboutPolicy = newAboutPolicy()

func newAboutPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	return p
}

type aboutFront struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

func renderAbout(src []byte) (About, error) {
	fm, body := splitFrontMatter(string(src))
	var front aboutFront
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return About{}, fmt.Errorf("catalog: parse about front matter: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return About{}, fmt.Errorf("catalog: render about: %w", err)
	}
	return About{
		Title:   strings.TrimSpace(front.Title),
		Summary: strings.TrimSpace(front.Summary),
		HTML:    template.HTML(aboutPolicy.SanitizeBytes(buf.Bytes())),
	}, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", input
}
