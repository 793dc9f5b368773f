package detection

import (
	"image"
	"math"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
	"github.com/ironsheep/notehead-scan/internal/template"
)

// match is one template evaluation: pivot location and distance in pixels.
type match struct {
	x, y int
	dist float64
}

// candidate is a head not yet committed, with the fit it came from.
type candidate struct {
	head   *sig.Inter
	staff  *sheet.Staff
	tmpl   *template.Template
	x, y   int
	anchor template.Anchor
}

// evaluate applies the skip and evaluate protocol at one pivot. It reports
// false when the location is skipped or falls outside the distance table.
func (e *Engine) evaluate(s *scanner, t *template.Template, x, y int, anchor template.Anchor) (float64, bool) {
	box := t.BoundsAt(x, y, anchor)
	if s.barExcluded(box) {
		e.perf.Bars++
		return 0, false
	}
	if s.overlapsCompetitor(geom.Shrink(box, e.params.ShrinkHorizontal, e.params.ShrinkVertical)) {
		e.perf.Overlaps++
		return 0, false
	}
	e.perf.Evals++
	d, ok := t.Evaluate(x, y, anchor, e.in.Distance)
	if !ok {
		return 0, false
	}
	if t.Shape().IsCross() {
		d *= e.params.CrossPenaltyRatio
	}
	return d, true
}

// bestMatch searches the offsets (dx, dy) around (x0, y0) for the lowest
// distance. The zero offset is tried alone first: when it gives nothing or a
// really bad distance, the other offsets are not tried.
func (e *Engine) bestMatch(s *scanner, t *template.Template, x0, y0 int, xs, ys []int, anchor template.Anchor) (match, bool) {
	d, ok := e.evaluate(s, t, x0, y0, anchor)
	if !ok || d > s.scale.reallyBad {
		e.perf.Abandons++
		return match{}, false
	}

	best := match{x: x0, y: y0, dist: d}
	for _, dy := range ys {
		for _, dx := range xs {
			if dx == 0 && dy == 0 {
				continue
			}
			if d, ok := e.evaluate(s, t, x0+dx, y0+dy, anchor); ok && d < best.dist {
				best = match{x: x0 + dx, y: y0 + dy, dist: d}
			}
		}
	}
	return best, true
}

// newCandidate turns an acceptable match into a candidate head. A generic
// black head whose interior is mostly paper becomes its hollow counterpart.
func (e *Engine) newCandidate(s *scanner, t *template.Template, m match, anchor template.Anchor) *candidate {
	if m.dist > s.scale.maxDistanceLow {
		return nil
	}
	sh := t.Shape()
	if sh.IsGenericBlack() {
		if hollow, ok := sh.Hollow(); ok && s.shapes.Contains(hollow) &&
			e.holeWhiteRatio(t.HoleAt(m.x, m.y, anchor)) >= e.params.MinHoleWhiteRatio {
			sh = hollow
		}
	}
	box := t.BoundsAt(m.x, m.y, anchor)
	return &candidate{
		head:   sig.NewHead(sh, box, s.scale.grade(m.dist), s.staff.ID, s.pitch),
		staff:  s.staff,
		tmpl:   t,
		x:      m.x,
		y:      m.y,
		anchor: anchor,
	}
}

// templates returns the catalog templates of the shapes kept by keep.
func templates(catalog *template.Catalog, shapes shape.Set, keep func(shape.Shape) bool) []*template.Template {
	var out []*template.Template
	for _, s := range shapes {
		if !keep(s) {
			continue
		}
		if t, ok := catalog.Template(s); ok {
			out = append(out, t)
		}
	}
	return out
}

// lookupSeeds runs the seed-anchored pass of a scanner.
//
// Each seed is tried as the left and as the right stem of a head, for every
// stem-capable shape. The horizontal search is centered on the calibrated
// seed offset of the (shape, side) pair when one is known. Every good head
// records its own seed offset in the tally.
func (e *Engine) lookupSeeds(s *scanner, catalog *template.Catalog) []*sig.Inter {
	tmpls := templates(catalog, s.shapes, func(sh shape.Shape) bool { return !sh.IsStemLess() })
	if len(tmpls) == 0 || len(s.seeds) == 0 {
		return nil
	}
	xs := zigzag(s.scale.stemShift)
	ys := zigzag(s.scale.maxShift)

	var heads []*sig.Inter
	for _, seed := range s.seeds {
		// Seed axis crossed with the reference line.
		c := seed.Centroid()
		seedX := seed.XAt(s.line.preciseYAt(c.X))
		yf, _ := s.theoreticalY(int(math.Round(seedX)))
		y0 := int(math.Round(yf))

		for _, side := range calibration.Sides() {
			anchor := template.AnchorLeftStem
			if side == calibration.Right {
				anchor = template.AnchorRightStem
			}
			for _, t := range tmpls {
				px := seedX
				if off, ok := e.sheet.Calibration.Get(t.Shape(), side); ok {
					if side == calibration.Left {
						px = seedX + off
					} else {
						px = seedX - off
					}
				}
				m, ok := e.bestMatch(s, t, int(math.Round(px)), y0, xs, ys, anchor)
				if !ok {
					continue
				}
				cand := e.newCandidate(s, t, m, anchor)
				if cand == nil {
					continue
				}
				h := e.commit(cand)
				if h == nil {
					continue
				}
				heads = append(heads, h)
				if h.Grade() >= sig.GoodGrade {
					e.tally.Put(h, side, seedOffset(side, seedX, h.Bounds()))
				}
			}
		}
	}
	return heads
}

// seedOffset is the signed distance from the seed axis to the head box on
// side: positive when the seed stands outside the box, negative inside.
func seedOffset(side calibration.Side, seedX float64, box image.Rectangle) float64 {
	if side == calibration.Left {
		return float64(box.Min.X) - seedX
	}
	return seedX - float64(box.Max.X-1)
}

// needsSpot reports whether a shape is only searched near a head spot.
// Filled heads always leave a spot; hollow and cross heads may not.
func needsSpot(s shape.Shape) bool {
	return s.IsFilled() && !s.IsCross()
}

// lookupRange runs the range pass of a scanner: every abscissa of the
// reference line, past the staff header, is tried as the left edge of a head.
func (e *Engine) lookupRange(s *scanner, catalog *template.Catalog) []*candidate {
	all := templates(catalog, s.shapes, func(shape.Shape) bool { return true })
	if len(all) == 0 {
		return nil
	}
	var hollow []*template.Template
	maxW, minW := 0, math.MaxInt
	for _, t := range all {
		if !needsSpot(t.Shape()) {
			hollow = append(hollow, t)
		}
		maxW = max(maxW, t.Width())
		minW = min(minW, t.Width())
	}
	reach := templateReach(all, maxW/2) + float64(max(s.scale.maxShift, s.scale.maxOpenShift))

	xMin := max(s.staff.HeaderStop, s.line.left()-maxW/2)
	xMax := s.line.right() - minW/2
	if xMax < xMin {
		return nil
	}
	covered := e.spotCoverage(s, xMin, xMax, maxW)
	dt := e.in.Distance

	var out []*candidate
	for x := xMin; x <= xMax; {
		cx := x + maxW/2
		yf, open := s.theoreticalY(cx)
		y0 := int(math.Round(yf))
		if !dt.Contains(cx, y0) {
			x++
			continue
		}
		// No ink within template reach: jump to where some could be.
		if d := dt.Value(cx, y0); d > reach {
			x += max(1, int(d-reach))
			continue
		}

		set := hollow
		if covered[x-xMin] {
			set = all
		}
		ys := s.verticalOffsets(open)
		for _, t := range set {
			m, ok := e.bestMatch(s, t, x, y0, []int{0}, ys, template.AnchorMiddleLeft)
			if !ok {
				continue
			}
			c := e.newCandidate(s, t, m, template.AnchorMiddleLeft)
			if c == nil {
				continue
			}
			// Stem-less heads cannot gain stem support later.
			if c.head.Shape().IsStemLess() && c.head.Grade()+e.params.StemLessBoost < e.params.MinContextualGrade {
				continue
			}
			out = append(out, c)
		}
		x++
	}
	return out
}

// templateReach returns the largest distance between the probe point
// (probeDX, middle height) and a key point, over all templates anchored on
// their middle left point.
func templateReach(tmpls []*template.Template, probeDX int) float64 {
	reach := 0.0
	for _, t := range tmpls {
		cy := t.Height() / 2
		for _, k := range t.KeyPoints() {
			reach = math.Max(reach, math.Hypot(float64(k.DX-probeDX), float64(k.DY-cy)))
		}
	}
	return reach
}

// spotCoverage flags the abscissae in [xMin, xMax] where a head of width up
// to maxW starting there would touch a head spot of the scanner band.
func (e *Engine) spotCoverage(s *scanner, xMin, xMax, maxW int) []bool {
	covered := make([]bool, xMax-xMin+1)
	for _, g := range e.spots {
		b := g.Bounds()
		if !s.seedArea.IntersectsRect(b) {
			continue
		}
		from := max(xMin, b.Min.X-maxW-s.scale.spotMargin)
		to := min(xMax, b.Max.X+s.scale.spotMargin)
		for x := from; x <= to; x++ {
			covered[x-xMin] = true
		}
	}
	return covered
}
