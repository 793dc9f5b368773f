package calibration

import (
	"sort"

	"github.com/ironsheep/notehead-scan/internal/sig"
)

// Tally collects seed offsets observed on head candidates during one
// detection run. A later observation for the same (head, side) replaces the
// previous one.
//
// Tally is not safe for concurrent use; each engine owns its own.
type Tally struct {
	entries map[*sig.Inter]map[Side]float64
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{entries: make(map[*sig.Inter]map[Side]float64)}
}

// Put records the offset observed on side of head.
func (t *Tally) Put(head *sig.Inter, side Side, offset float64) {
	m, ok := t.entries[head]
	if !ok {
		m = make(map[Side]float64, 2)
		t.entries[head] = m
	}
	m[side] = offset
}

// Get returns the offset observed on side of head.
func (t *Tally) Get(head *sig.Inter, side Side) (float64, bool) {
	v, ok := t.entries[head][side]
	return v, ok
}

// HasData reports whether any offset was observed on head.
func (t *Tally) HasData(head *sig.Inter) bool {
	return len(t.entries[head]) > 0
}

// SidesOf returns the sides observed on head, in side order.
func (t *Tally) SidesOf(head *sig.Inter) []Side {
	var out []Side
	for _, s := range Sides() {
		if _, ok := t.entries[head][s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Copy copies into to the sides observed on from that to lacks.
// It reports how many sides were copied.
func (t *Tally) Copy(from, to *sig.Inter) int {
	n := 0
	for side, v := range t.entries[from] {
		if _, ok := t.Get(to, side); !ok {
			t.Put(to, side, v)
			n++
		}
	}
	return n
}

// Purge drops the entries of heads for which keep returns false.
func (t *Tally) Purge(keep func(*sig.Inter) bool) int {
	n := 0
	for h := range t.entries {
		if !keep(h) {
			delete(t.entries, h)
			n++
		}
	}
	return n
}

// Len returns the number of heads with data.
func (t *Tally) Len() int { return len(t.entries) }

// Heads returns the heads with data, ordered by vertex id.
func (t *Tally) Heads() []*sig.Inter {
	out := make([]*sig.Inter, 0, len(t.entries))
	for h := range t.entries {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// FoldInto writes the observations of live heads into the sheet store,
// in vertex id order so the last write is deterministic.
func (t *Tally) FoldInto(o *SeedOffsets) int {
	n := 0
	for _, h := range t.Heads() {
		if h.IsRemoved() {
			continue
		}
		for _, side := range t.SidesOf(h) {
			o.Put(h.Shape(), side, t.entries[h][side])
			n++
		}
	}
	return n
}
