// Package site assembles public college pages from stored data and
// section content.
package site

import (
	"github.com/huangang/portfolio/internal/content"
	"github.com/huangang/portfolio/internal/models"
)

// Section names shared by every bundle.
const (
	SectionNavbar   = "navbar"
	SectionHero     = "hero"
	SectionAbout    = "about"
	SectionPrograms = "programs"
	SectionEvents   = "events"
	SectionGallery  = "gallery"
	SectionFaculty  = "faculty"
	SectionContact  = "contact"
	SectionFooter   = "footer"
)

// DefaultTemplateID is served for unknown template ids.
const DefaultTemplateID = 1

// Section is one block of a template. A non-empty Module hides the section
// when the college has that module switched off.
type Section struct {
	Name     string
	Module   string
	Fallback content.Content
}

// Bundle is a site template: an ordered list of sections.
type Bundle struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Sections []Section `json:"-"`
}

// SectionNames lists the bundle's sections in display order.
func (b *Bundle) SectionNames() []string {
	names := make([]string, len(b.Sections))
	for i, s := range b.Sections {
		names[i] = s.Name
	}
	return names
}

// Registry holds the available bundles by id.
type Registry struct {
	bundles map[int]*Bundle
	order   []int
}

func NewRegistry() *Registry {
	r := &Registry{bundles: make(map[int]*Bundle)}
	for _, b := range []*Bundle{
		newBundle(1, "University", "university", "Shaping leaders for a changing world"),
		newBundle(2, "Institute", "institute", "Applied science and technology"),
		newBundle(3, "Academy", "academy", "Excellence through discipline"),
		newBundle(4, "Campus", "campus", "Where students come together"),
		newBundle(5, "School", "school", "Every learner matters"),
	} {
		r.Register(b)
	}
	return r
}

func (r *Registry) Register(b *Bundle) {
	if _, ok := r.bundles[b.ID]; !ok {
		r.order = append(r.order, b.ID)
	}
	r.bundles[b.ID] = b
}

// Get returns the bundle with id, or the default bundle for unknown ids.
func (r *Registry) Get(id int) *Bundle {
	if b, ok := r.bundles[id]; ok {
		return b
	}
	return r.bundles[DefaultTemplateID]
}

// List returns bundles in registration order.
func (r *Registry) List() []*Bundle {
	out := make([]*Bundle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bundles[id])
	}
	return out
}

func newBundle(id int, name, kind, tagline string) *Bundle {
	return &Bundle{
		ID:   id,
		Name: name,
		Kind: kind,
		Sections: []Section{
			{Name: SectionNavbar, Fallback: content.Content{
				"brand": name,
				"links": []interface{}{"Home", "About", "Programs", "Events", "Contact"},
			}},
			{Name: SectionHero, Fallback: content.Content{
				"title":    "Welcome to our " + kind,
				"subtitle": tagline,
				"cta":      "Apply now",
			}},
			{Name: SectionAbout, Module: models.ModuleAbout, Fallback: content.Content{
				"title": "About us",
				"text":  "Our " + kind + " has a long tradition of teaching, research and community service.",
			}},
			{Name: SectionPrograms, Fallback: content.Content{
				"title": "Programs",
				"items": []interface{}{"Undergraduate", "Postgraduate", "Continuing education"},
			}},
			{Name: SectionEvents, Module: models.ModuleEvents, Fallback: content.Content{
				"title": "Upcoming events",
				"items": []interface{}{"Open day", "Research symposium", "Graduation ceremony"},
			}},
			{Name: SectionGallery, Module: models.ModuleGallery, Fallback: content.Content{
				"title": "Gallery",
				"items": []interface{}{},
			}},
			{Name: SectionFaculty, Module: models.ModuleFaculty, Fallback: content.Content{
				"title": "Faculty",
				"text":  "Meet the people who teach here.",
			}},
			{Name: SectionContact, Module: models.ModuleContact, Fallback: content.Content{
				"title": "Contact",
				"email": "info@example.edu",
				"phone": "+1 555 0100",
			}},
			{Name: SectionFooter, Fallback: content.Content{
				"text": name + " portfolio",
			}},
		},
	}
}
