package sheet

import (
	"math"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/geom"
)

// StaffLine is a staff line modeled as a smooth polyline through points
// sorted by abscissa. Ordinates between points are interpolated linearly;
// beyond the ends the end ordinate is held.
type StaffLine struct {
	points []geom.PointF
}

// NewStaffLine builds a line from its defining points (at least one).
func NewStaffLine(points []geom.PointF) *StaffLine {
	pts := append([]geom.PointF(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return &StaffLine{points: pts}
}

// HorizontalLine builds a straight horizontal line from left to right at y.
func HorizontalLine(left, right, y float64) *StaffLine {
	return NewStaffLine([]geom.PointF{{X: left, Y: y}, {X: right, Y: y}})
}

// Points returns a copy of the defining points.
func (l *StaffLine) Points() []geom.PointF {
	return append([]geom.PointF(nil), l.points...)
}

// Left returns the leftmost abscissa.
func (l *StaffLine) Left() int {
	return int(math.Floor(l.points[0].X))
}

// Right returns the rightmost abscissa.
func (l *StaffLine) Right() int {
	return int(math.Ceil(l.points[len(l.points)-1].X))
}

// PreciseYAt returns the line ordinate at abscissa x.
func (l *StaffLine) PreciseYAt(x float64) float64 {
	pts := l.points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	p0, p1 := pts[i-1], pts[i]
	if p1.X == p0.X {
		return p0.Y
	}
	return p0.Y + (p1.Y-p0.Y)*(x-p0.X)/(p1.X-p0.X)
}

// YAt returns the rounded line ordinate at abscissa x.
func (l *StaffLine) YAt(x int) int {
	return int(math.Round(l.PreciseYAt(float64(x))))
}

// Area returns the band between ordinates y+above and y+below along the
// whole line, where above and below are signed vertical offsets.
func (l *StaffLine) Area(above, below float64) *geom.Area {
	return band(l.points, above, below)
}

// Ledger is a short straight line above or below a staff.
type Ledger struct {
	Start geom.PointF
	Stop  geom.PointF
}

// NewLedger builds a ledger from its end points, in any order.
func NewLedger(a, b geom.PointF) *Ledger {
	if b.X < a.X {
		a, b = b, a
	}
	return &Ledger{Start: a, Stop: b}
}

// Left returns the leftmost abscissa.
func (l *Ledger) Left() int {
	return int(math.Floor(l.Start.X))
}

// Right returns the rightmost abscissa.
func (l *Ledger) Right() int {
	return int(math.Ceil(l.Stop.X))
}

// PreciseYAt returns the ledger ordinate at abscissa x, extrapolated beyond its ends.
func (l *Ledger) PreciseYAt(x float64) float64 {
	if l.Stop.X == l.Start.X {
		return l.Start.Y
	}
	return l.Start.Y + (l.Stop.Y-l.Start.Y)*(x-l.Start.X)/(l.Stop.X-l.Start.X)
}

// YAt returns the rounded ledger ordinate at abscissa x.
func (l *Ledger) YAt(x int) int {
	return int(math.Round(l.PreciseYAt(float64(x))))
}

// Covers reports whether abscissa x lies within the ledger span.
func (l *Ledger) Covers(x int) bool {
	return x >= l.Left() && x <= l.Right()
}

// Area returns the band between ordinates y+above and y+below along the ledger.
func (l *Ledger) Area(above, below float64) *geom.Area {
	return band([]geom.PointF{l.Start, l.Stop}, above, below)
}

func band(pts []geom.PointF, above, below float64) *geom.Area {
	top, bottom := math.Min(above, below), math.Max(above, below)
	poly := make([]geom.PointF, 0, 2*len(pts))
	for _, p := range pts {
		poly = append(poly, geom.PointF{X: p.X, Y: p.Y + top})
	}
	for i := len(pts) - 1; i >= 0; i-- {
		poly = append(poly, geom.PointF{X: pts[i].X, Y: pts[i].Y + bottom})
	}
	if len(pts) == 1 {
		// Degenerate line: give the band a one-pixel width.
		p := pts[0]
		poly = []geom.PointF{
			{X: p.X, Y: p.Y + top}, {X: p.X + 1, Y: p.Y + top},
			{X: p.X + 1, Y: p.Y + bottom}, {X: p.X, Y: p.Y + bottom},
		}
	}
	return geom.NewArea(poly)
}
