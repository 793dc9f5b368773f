package template

import (
	"fmt"
	"sync"

	"github.com/ironsheep/notehead-scan/internal/shape"
)

// DefaultFamily names the synthesized music font family.
const DefaultFamily = "synthetic"

// PointSize returns the music font point size matching a staff interline.
// A staff height (four interlines) spans one em.
func PointSize(interline int) int {
	return 4 * interline
}

// Catalog is the set of templates valid for one (font family, point size) pair.
type Catalog struct {
	Family    string
	PointSize int
	templates map[shape.Shape]*Template
}

// NewCatalog assembles templates into a catalog. Later templates replace
// earlier ones for the same shape.
func NewCatalog(family string, pointSize int, templates ...*Template) *Catalog {
	c := &Catalog{
		Family:    family,
		PointSize: pointSize,
		templates: make(map[shape.Shape]*Template, len(templates)),
	}
	for _, t := range templates {
		if t != nil {
			c.templates[t.Shape()] = t
		}
	}
	return c
}

// Template returns the template of a shape, if present.
func (c *Catalog) Template(s shape.Shape) (*Template, bool) {
	t, ok := c.templates[s]
	return t, ok
}

// Shapes lists the shapes available in the catalog, in matching order.
func (c *Catalog) Shapes() shape.Set {
	var set shape.Set
	for _, s := range shape.Matched() {
		if _, ok := c.templates[s]; ok {
			set = append(set, s)
		}
	}
	return set
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog{%s@%d %d shapes}", c.Family, c.PointSize, len(c.templates))
}

// Synthesized builds the catalog of every matched shape for a point size.
func Synthesized(family string, pointSize int) *Catalog {
	interline := max(1, pointSize/4)
	var templates []*Template
	for _, s := range shape.Matched() {
		templates = append(templates, Synthesize(s, interline))
	}
	return NewCatalog(family, pointSize, templates...)
}

// BuildFunc produces the catalog of a (family, point size) pair.
type BuildFunc func(family string, pointSize int) *Catalog

type catalogKey struct {
	family    string
	pointSize int
}

// Store caches catalogs per (family, point size). Staves of different sizes
// on the same sheet get their own catalogs, built once.
//
// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	build    BuildFunc
	catalogs map[catalogKey]*Catalog
}

// NewStore creates a store backed by build; nil selects Synthesized.
func NewStore(build BuildFunc) *Store {
	if build == nil {
		build = Synthesized
	}
	return &Store{build: build, catalogs: make(map[catalogKey]*Catalog)}
}

// Get returns the catalog for a family and point size, building it on first use.
func (s *Store) Get(family string, pointSize int) *Catalog {
	key := catalogKey{family: family, pointSize: pointSize}
	s.mu.RLock()
	if c, ok := s.catalogs[key]; ok {
		s.mu.RUnlock()
		return c
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.catalogs[key]; ok {
		return c
	}
	c := s.build(family, pointSize)
	s.catalogs[key] = c
	return c
}

// Put registers a prebuilt catalog, replacing any cached one.
func (s *Store) Put(c *Catalog) {
	s.mu.Lock()
	s.catalogs[catalogKey{family: c.Family, pointSize: c.PointSize}] = c
	s.mu.Unlock()
}
