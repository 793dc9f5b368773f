// Package glyph models connected sets of ink pixels and extracts them from
// run tables.
package glyph

import (
	"image"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/imaging"
)

// Group tags the role a glyph plays for downstream consumers.
type Group int

const (
	GroupNone Group = iota
	GroupHeadSpot
	GroupStemSeed
	GroupHead
)

func (g Group) String() string {
	switch g {
	case GroupHeadSpot:
		return "HEAD_SPOT"
	case GroupStemSeed:
		return "VERTICAL_SEED"
	case GroupHead:
		return "HEAD"
	default:
		return "NONE"
	}
}

// Glyph is a set of ink pixels with cached geometry.
type Glyph struct {
	ID     int
	Pixels []image.Point

	box      image.Rectangle
	centroid geom.PointF
	groups   map[Group]struct{}

	// vertical axis fit: x = axisA + axisB*y
	axisA, axisB float64
}

// New builds a glyph from its pixels. The slice is retained.
func New(id int, pixels []image.Point) *Glyph {
	g := &Glyph{ID: id, Pixels: pixels, groups: make(map[Group]struct{})}
	g.computeGeometry()
	return g
}

// FromRect builds a glyph from the ink of bin inside r.
// It returns nil when r holds no ink.
func FromRect(id int, bin *imaging.BinaryImage, r image.Rectangle) *Glyph {
	var pixels []image.Point
	r = r.Intersect(bin.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if bin.IsFore(x, y) {
				pixels = append(pixels, image.Point{X: x, Y: y})
			}
		}
	}
	if len(pixels) == 0 {
		return nil
	}
	return New(id, pixels)
}

func (g *Glyph) computeGeometry() {
	if len(g.Pixels) == 0 {
		return
	}
	minX, minY := g.Pixels[0].X, g.Pixels[0].Y
	maxX, maxY := minX, minY
	var sx, sy, syy, sxy float64
	for _, p := range g.Pixels {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
		fx, fy := float64(p.X), float64(p.Y)
		sx += fx
		sy += fy
		syy += fy * fy
		sxy += fx * fy
	}
	n := float64(len(g.Pixels))
	g.box = image.Rect(minX, minY, maxX+1, maxY+1)
	g.centroid = geom.PointF{X: sx / n, Y: sy / n}

	// Least-squares x = a + b*y. A single-row glyph gets a vertical axis.
	den := n*syy - sy*sy
	if den == 0 {
		g.axisA, g.axisB = g.centroid.X, 0
		return
	}
	g.axisB = (n*sxy - sx*sy) / den
	g.axisA = (sx - g.axisB*sy) / n
}

// Bounds returns the glyph bounding box.
func (g *Glyph) Bounds() image.Rectangle { return g.box }

// Weight returns the number of pixels.
func (g *Glyph) Weight() int { return len(g.Pixels) }

// Centroid returns the mean pixel position.
func (g *Glyph) Centroid() geom.PointF { return g.centroid }

// XAt returns the abscissa of the glyph vertical axis at ordinate y.
func (g *Glyph) XAt(y float64) float64 {
	return g.axisA + g.axisB*y
}

// StartPoint returns the top end of the vertical axis.
func (g *Glyph) StartPoint() geom.PointF {
	y := float64(g.box.Min.Y)
	return geom.PointF{X: g.XAt(y), Y: y}
}

// StopPoint returns the bottom end of the vertical axis.
func (g *Glyph) StopPoint() geom.PointF {
	y := float64(g.box.Max.Y - 1)
	return geom.PointF{X: g.XAt(y), Y: y}
}

// AddGroup tags the glyph.
func (g *Glyph) AddGroup(group Group) {
	g.groups[group] = struct{}{}
}

// HasGroup reports whether the glyph carries the tag.
func (g *Glyph) HasGroup(group Group) bool {
	_, ok := g.groups[group]
	return ok
}

// SortByOrdinate sorts glyphs by top ordinate, then abscissa, then id.
func SortByOrdinate(glyphs []*Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		a, b := glyphs[i].box, glyphs[j].box
		if a.Min.Y != b.Min.Y {
			return a.Min.Y < b.Min.Y
		}
		if a.Min.X != b.Min.X {
			return a.Min.X < b.Min.X
		}
		return glyphs[i].ID < glyphs[j].ID
	})
}
