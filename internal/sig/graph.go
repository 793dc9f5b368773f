package sig

import (
	"image"
	"sort"
	"sync"
)

// Cause explains why two interpretations exclude each other.
type Cause int

const (
	CauseOverlap Cause = iota
	CauseIncompatible
)

func (c Cause) String() string {
	if c == CauseOverlap {
		return "OVERLAP"
	}
	return "INCOMPATIBLE"
}

type edgeKey struct {
	lo, hi int
}

func keyOf(a, b *Inter) edgeKey {
	if a.id < b.id {
		return edgeKey{lo: a.id, hi: b.id}
	}
	return edgeKey{lo: b.id, hi: a.id}
}

// Graph is the interpretation graph of a sheet.
//
// Graph is safe for concurrent use; callers running several systems in
// parallel still need to serialize multi-step updates that must stay atomic.
type Graph struct {
	mu         sync.RWMutex
	nextID     int
	inters     map[int]*Inter
	exclusions map[edgeKey]Cause
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		inters:     make(map[int]*Inter),
		exclusions: make(map[edgeKey]Cause),
	}
}

// AddVertex inserts an interpretation and assigns its id.
func (g *Graph) AddVertex(i *Inter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i.id != 0 {
		if _, ok := g.inters[i.id]; ok {
			return
		}
	}
	g.nextID++
	i.id = g.nextID
	i.removed = false
	g.inters[i.id] = i
}

// RemoveVertex deletes an interpretation and all its relations.
func (g *Graph) RemoveVertex(i *Inter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inters[i.id]; !ok {
		return
	}
	delete(g.inters, i.id)
	i.removed = true
	for k := range g.exclusions {
		if k.lo == i.id || k.hi == i.id {
			delete(g.exclusions, k)
		}
	}
}

// Contains reports whether i is a live vertex of the graph.
func (g *Graph) Contains(i *Inter) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.inters[i.id]
	return ok && v == i
}

// InsertExclusion links two interpretations as mutually exclusive.
// It reports whether a new relation was created.
func (g *Graph) InsertExclusion(a, b *Inter, cause Cause) bool {
	if a == b {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inters[a.id]; !ok {
		return false
	}
	if _, ok := g.inters[b.id]; !ok {
		return false
	}
	k := keyOf(a, b)
	if _, ok := g.exclusions[k]; ok {
		return false
	}
	g.exclusions[k] = cause
	return true
}

// HasExclusion reports whether a and b exclude each other.
func (g *Graph) HasExclusion(a, b *Inter) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.exclusions[keyOf(a, b)]
	return ok
}

// ExclusionCount returns the number of exclusion relations.
func (g *Graph) ExclusionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.exclusions)
}

// Inters returns the live interpretations of the given kinds (all kinds when
// none is given), ordered by id.
func (g *Graph) Inters(kinds ...Kind) []*Inter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Inter, 0, len(g.inters))
	for _, i := range g.inters {
		if matchesKind(i, kinds) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

// IntersectedInters returns the live interpretations of the given kinds whose
// bounds intersect r, ordered by id.
func (g *Graph) IntersectedInters(r image.Rectangle, kinds ...Kind) []*Inter {
	var out []*Inter
	for _, i := range g.Inters(kinds...) {
		if i.box.Overlaps(r) {
			out = append(out, i)
		}
	}
	return out
}

func matchesKind(i *Inter, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if i.kind == k {
			return true
		}
	}
	return false
}
