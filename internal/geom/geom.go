// Package geom provides the small geometry vocabulary shared by the page
// model and the detection engine: sub-pixel points, closed polygonal areas
// and overlap measures on integer boxes.
//
// # Coordinate System
//
// Coordinates follow the image convention used everywhere in this module:
//   - Origin (0, 0) at the top-left corner of the page
//   - X increases rightward, Y increases downward
//   - image.Rectangle boxes are inclusive at Min and exclusive at Max
package geom

import (
	"image"
	"math"
)

// PointF is a point with sub-pixel precision.
type PointF struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Round returns the nearest integer pixel.
func (p PointF) Round() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Area is a closed polygon. The last vertex is implicitly joined to the first.
type Area struct {
	points []PointF
	bounds image.Rectangle
}

// NewArea builds an area from its vertices, listed in either winding order.
func NewArea(points []PointF) *Area {
	a := &Area{points: append([]PointF(nil), points...)}
	if len(points) == 0 {
		return a
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	a.bounds = image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	return a
}

// RectArea returns the area covering an integer box.
func RectArea(r image.Rectangle) *Area {
	return NewArea([]PointF{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	})
}

// Bounds returns the integer box enclosing the polygon.
func (a *Area) Bounds() image.Rectangle {
	return a.bounds
}

// Points returns a copy of the polygon vertices.
func (a *Area) Points() []PointF {
	return append([]PointF(nil), a.points...)
}

// Contains reports whether p lies inside the polygon (even-odd rule).
func (a *Area) Contains(p PointF) bool {
	n := len(a.points)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := a.points[i], a.points[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xCross := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// IntersectsRect reports whether the polygon and the box share any point.
//
// The test is exact for convex and concave polygons: either one shape holds a
// vertex of the other, or two of their edges cross.
func (a *Area) IntersectsRect(r image.Rectangle) bool {
	if r.Empty() || len(a.points) < 3 || !a.bounds.Overlaps(r) {
		return false
	}
	corners := []PointF{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
	for _, c := range corners {
		if a.Contains(c) {
			return true
		}
	}
	for _, p := range a.points {
		if p.X >= float64(r.Min.X) && p.X <= float64(r.Max.X) &&
			p.Y >= float64(r.Min.Y) && p.Y <= float64(r.Max.Y) {
			return true
		}
	}
	n := len(a.points)
	for i := 0; i < n; i++ {
		p1, p2 := a.points[i], a.points[(i+1)%n]
		for k := 0; k < 4; k++ {
			if segmentsCross(p1, p2, corners[k], corners[(k+1)%4]) {
				return true
			}
		}
	}
	return false
}

// IntersectsArea reports whether two polygons share any point.
func (a *Area) IntersectsArea(b *Area) bool {
	if len(a.points) < 3 || len(b.points) < 3 || !a.bounds.Overlaps(b.bounds) {
		return false
	}
	for _, p := range b.points {
		if a.Contains(p) {
			return true
		}
	}
	for _, p := range a.points {
		if b.Contains(p) {
			return true
		}
	}
	na, nb := len(a.points), len(b.points)
	for i := 0; i < na; i++ {
		for k := 0; k < nb; k++ {
			if segmentsCross(a.points[i], a.points[(i+1)%na], b.points[k], b.points[(k+1)%nb]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, q1, q2 PointF) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) || (d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) || (d4 == 0 && onSegment(p1, p2, q2))
}

func cross(a, b, c PointF) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p PointF) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// IoU returns the intersection-over-union of two boxes, in [0, 1].
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := rectArea(inter)
	union := rectArea(a) + rectArea(b) - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}

// CenterX returns the horizontal center of a box.
func CenterX(r image.Rectangle) float64 {
	return float64(r.Min.X+r.Max.X) / 2
}

// Shrink returns the box reduced around its center by the given ratios
// (1.0 keeps the box unchanged). The result is never empty for a non-empty box.
func Shrink(r image.Rectangle, hRatio, vRatio float64) image.Rectangle {
	w := float64(r.Dx())
	h := float64(r.Dy())
	nw := math.Max(1, math.Round(w*hRatio))
	nh := math.Max(1, math.Round(h*vRatio))
	x0 := r.Min.X + int(math.Round((w-nw)/2))
	y0 := r.Min.Y + int(math.Round((h-nh)/2))
	return image.Rect(x0, y0, x0+int(nw), y0+int(nh))
}

func rectArea(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
