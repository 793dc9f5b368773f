// Package sig holds the symbol interpretation graph: candidate
// interpretations ("inters") of page regions, and the relations between
// them, most notably mutual exclusion.
package sig

import (
	"fmt"
	"image"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/shape"
)

// Grade thresholds shared by all interpretations.
const (
	// GoodGrade marks a confident interpretation.
	GoodGrade = 0.5
	// ReallyGoodGrade marks a near-certain interpretation.
	ReallyGoodGrade = 0.75
	// MaxGrade caps every grade.
	MaxGrade = 1.0
)

// Kind tells what an interpretation stands for.
type Kind int

const (
	KindHead Kind = iota
	KindBarline
	KindConnector
	KindBeam
	KindStem
)

func (k Kind) String() string {
	switch k {
	case KindHead:
		return "Head"
	case KindBarline:
		return "Barline"
	case KindConnector:
		return "BarConnector"
	case KindBeam:
		return "Beam"
	case KindStem:
		return "Stem"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Inter is one interpretation. Head-specific fields are zero for other kinds.
type Inter struct {
	id       int
	kind     Kind
	shape    shape.Shape
	box      image.Rectangle
	area     *geom.Area
	grade    float64
	ctxGrade float64
	hasCtx   bool
	frozen   bool
	staffID  int
	pitch    int
	group    int
	glyph    *glyph.Glyph
	boosted  bool
	removed  bool
}

// NewInter creates an interpretation of the given kind.
func NewInter(kind Kind, box image.Rectangle, grade float64) *Inter {
	return &Inter{kind: kind, box: box, grade: clampGrade(grade)}
}

// NewHead creates a note-head interpretation.
func NewHead(s shape.Shape, box image.Rectangle, grade float64, staffID, pitch int) *Inter {
	return &Inter{
		kind:    KindHead,
		shape:   s,
		box:     box,
		grade:   clampGrade(grade),
		staffID: staffID,
		pitch:   pitch,
	}
}

func clampGrade(g float64) float64 {
	return min(MaxGrade, max(0, g))
}

// ID returns the vertex id, zero until inserted in a graph.
func (i *Inter) ID() int { return i.id }

// Kind returns the interpretation kind.
func (i *Inter) Kind() Kind { return i.kind }

// IsHead reports whether the interpretation is a note head.
func (i *Inter) IsHead() bool { return i.kind == KindHead }

// Shape returns the head shape, shape.None for other kinds.
func (i *Inter) Shape() shape.Shape { return i.shape }

// Bounds returns the bounding box.
func (i *Inter) Bounds() image.Rectangle { return i.box }

// Width returns the bounding box width.
func (i *Inter) Width() int { return i.box.Dx() }

// Area returns the precise area, defaulting to the bounding box.
func (i *Inter) Area() *geom.Area {
	if i.area == nil {
		return geom.RectArea(i.box)
	}
	return i.area
}

// SetArea records a precise area, such as a slanted beam outline.
func (i *Inter) SetArea(a *geom.Area) { i.area = a }

// Grade returns the intrinsic grade.
func (i *Inter) Grade() float64 { return i.grade }

// IsGood reports whether the grade reaches GoodGrade.
func (i *Inter) IsGood() bool { return i.grade >= GoodGrade }

// ContextualGrade returns the grade once supporting relations are counted.
// It defaults to the intrinsic grade.
func (i *Inter) ContextualGrade() float64 {
	if i.hasCtx {
		return i.ctxGrade
	}
	return i.grade
}

// SetContextualGrade records the contextual grade computed by a later stage.
func (i *Inter) SetContextualGrade(g float64) {
	i.ctxGrade = clampGrade(g)
	i.hasCtx = true
}

// Boost raises the grade by delta, at most once per interpretation.
// It reports whether the boost was applied.
func (i *Inter) Boost(delta float64) bool {
	if i.boosted {
		return false
	}
	i.boosted = true
	i.grade = clampGrade(i.grade + delta)
	return true
}

// IsBoosted reports whether Boost has been applied.
func (i *Inter) IsBoosted() bool { return i.boosted }

// IsFrozen reports whether the interpretation is definitive.
func (i *Inter) IsFrozen() bool { return i.frozen }

// Freeze marks the interpretation as definitive.
func (i *Inter) Freeze() { i.frozen = true }

// StaffID returns the owning staff id, zero when none.
func (i *Inter) StaffID() int { return i.staffID }

// Pitch returns the head pitch position.
func (i *Inter) Pitch() int { return i.pitch }

// Group returns the beam group id, zero when none.
func (i *Inter) Group() int { return i.group }

// SetGroup assigns the beam group id.
func (i *Inter) SetGroup(g int) { i.group = g }

// Glyph returns the supporting glyph, if recovered.
func (i *Inter) Glyph() *glyph.Glyph { return i.glyph }

// SetGlyph attaches the supporting glyph.
func (i *Inter) SetGlyph(g *glyph.Glyph) { i.glyph = g }

// IsRemoved reports whether the interpretation was removed from its graph.
func (i *Inter) IsRemoved() bool { return i.removed }

func (i *Inter) String() string {
	if i.kind == KindHead {
		return fmt.Sprintf("%s#%d(%s p%d %.3f)", i.kind, i.id, i.shape, i.pitch, i.grade)
	}
	return fmt.Sprintf("%s#%d(%.3f)", i.kind, i.id, i.grade)
}
