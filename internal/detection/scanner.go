package detection

import (
	"image"
	"math"

	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// staffScale holds the engine parameters of one staff converted to pixels.
type staffScale struct {
	interline       int
	maxDistanceLow  float64
	maxDistanceHigh float64
	reallyBad       float64
	barMargin       int
	maxShift        int
	maxOpenShift    int
	stemShift       int // half the max stem width, odd
	aggregateTol    float64
	spotMargin      int
}

func newStaffScale(interline, maxStem int, p config.Heads) staffScale {
	il := float64(interline)
	px := func(f float64) int { return int(math.Round(f * il)) }
	return staffScale{
		interline:       interline,
		maxDistanceLow:  p.MaxDistanceLow * il,
		maxDistanceHigh: p.MaxDistanceHigh * il,
		reallyBad:       p.ReallyBadDistance * il,
		barMargin:       px(p.BarMargin),
		maxShift:        px(p.MaxVerticalShift),
		maxOpenShift:    px(p.MaxOpenShift),
		stemShift:       int(math.Round(float64(maxStem)/2)) | 1,
		aggregateTol:    p.AggregateTolerance * il,
		spotMargin:      px(p.SpotMargin),
	}
}

// grade converts a template distance to a grade in [0, 1].
func (s staffScale) grade(dist float64) float64 {
	if s.maxDistanceHigh <= 0 {
		return 0
	}
	return math.Max(0, 1-dist/s.maxDistanceHigh)
}

// scanner is the scanning context of one pitch position along one reference
// line. It is built once per staff and holds everything a pass needs.
type scanner struct {
	staff *sheet.Staff
	line  lineAdapter
	other secondary // far reference of a space; nil on a line
	pitch int
	dir   int // -1 above the line, 0 on it, +1 below
	scale staffScale

	seedArea       *geom.Area
	competitorArea *geom.Area
	barArea        *geom.Area

	shapes shape.Set

	seeds       []*glyph.Glyph
	competitors []*sig.Inter
	bars        []image.Rectangle
}

type scannerSpec struct {
	staff  *sheet.Staff
	line   lineAdapter
	other  secondary
	pitch  int
	dir    int
	scale  staffScale
	params config.Heads
	shapes shape.Set
}

func newScanner(spec scannerSpec) *scanner {
	il := float64(spec.scale.interline)
	center := float64(spec.dir) * il / 2

	seedHalf := il / 2 * (1 + spec.params.SeedMarginRatio)
	compHalf := il/2*spec.params.ShrinkVertical + float64(max(spec.scale.maxShift, spec.scale.maxOpenShift))
	barHalf := il/2 + float64(spec.scale.barMargin)

	return &scanner{
		staff:          spec.staff,
		line:           spec.line,
		other:          spec.other,
		pitch:          spec.pitch,
		dir:            spec.dir,
		scale:          spec.scale,
		seedArea:       spec.line.area(center-seedHalf, center+seedHalf),
		competitorArea: spec.line.area(center-compHalf, center+compHalf),
		barArea:        spec.line.area(center-barHalf, center+barHalf),
		shapes:         spec.shapes,
	}
}

// collect keeps the seeds, competitors and bar stripes relevant to the scanner.
func (s *scanner) collect(seeds []*glyph.Glyph, competitors []*sig.Inter, bars []image.Rectangle) {
	for _, g := range seeds {
		if s.seedArea.IntersectsRect(g.Bounds()) {
			s.seeds = append(s.seeds, g)
		}
	}
	for _, c := range competitors {
		if c.Area().IntersectsArea(s.competitorArea) {
			s.competitors = append(s.competitors, c)
		}
	}
	for _, b := range bars {
		if s.barArea.IntersectsRect(b) {
			s.bars = append(s.bars, b)
		}
	}
}

// addCompetitors extends the competitor set with heads found meanwhile.
func (s *scanner) addCompetitors(heads []*sig.Inter) {
	for _, h := range heads {
		if h.Area().IntersectsArea(s.competitorArea) {
			s.competitors = append(s.competitors, h)
		}
	}
}

// theoreticalY returns the expected head center ordinate at abscissa x and
// whether the position is open there (a space with no far reference).
func (s *scanner) theoreticalY(x int) (float64, bool) {
	fx := float64(x)
	y := s.line.preciseYAt(fx)
	if s.dir == 0 {
		return y, false
	}
	if s.other != nil {
		if o := s.other(x); o != nil {
			return (y + o.preciseYAt(fx)) / 2, false
		}
	}
	return y + float64(s.dir)*float64(s.scale.interline)/2, true
}

// verticalOffsets returns the vertical search pattern at a position.
func (s *scanner) verticalOffsets(open bool) []int {
	if open {
		return openPattern(s.scale.maxOpenShift, s.dir)
	}
	return zigzag(s.scale.maxShift)
}

// barExcluded reports whether box hits a bar or connector stripe.
func (s *scanner) barExcluded(box image.Rectangle) bool {
	for _, b := range s.bars {
		if b.Overlaps(box) {
			return true
		}
	}
	return false
}

// overlapsCompetitor reports whether the shrunk box hits a good competitor
// that is not a head.
func (s *scanner) overlapsCompetitor(shrunk image.Rectangle) bool {
	for _, c := range s.competitors {
		if c.IsHead() || !c.IsGood() {
			continue
		}
		if c.Area().IntersectsRect(shrunk) {
			return true
		}
	}
	return false
}

// zigzag returns 0, 1, -1, 2, -2, ... up to ±limit.
func zigzag(limit int) []int {
	out := make([]int, 0, 2*limit+1)
	out = append(out, 0)
	for i := 1; i <= limit; i++ {
		out = append(out, i, -i)
	}
	return out
}

// openPattern returns 0, dir, -dir, 2*dir, 3*dir, ... up to limit*dir.
// Only one step is tried back toward the reference line.
func openPattern(limit, dir int) []int {
	if dir == 0 {
		return zigzag(limit)
	}
	out := []int{0}
	if limit >= 1 {
		out = append(out, dir, -dir)
	}
	for i := 2; i <= limit; i++ {
		out = append(out, i*dir)
	}
	return out
}
