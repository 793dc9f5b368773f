package detection

import (
	"image"
	"log/slog"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/drum"
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
	"github.com/ironsheep/notehead-scan/internal/template"
)

// Inputs gathers the read-only page artifacts an engine works on.
type Inputs struct {
	// Distance is the chamfer distance table of the whole page.
	Distance *imaging.DistanceTable

	// Binary is the binarized page, used to recover the glyph under a match.
	Binary *imaging.BinaryImage

	// Spots are the head-spot glyphs of the system (see ExtractSpots).
	Spots []*glyph.Glyph

	// Catalogs provides the template catalog of each staff size.
	Catalogs *template.Store

	// Drums maps percussion pitches to head motifs. Nil means no mapping.
	Drums *drum.Mapping
}

// Engine detects the note heads of one system.
//
// An engine is stateful and single-use per BuildHeads call: the competitor,
// seed and spot lists are refreshed at the start of each call. Engines of
// distinct systems may run concurrently over one graph and sheet: the graph
// locks its own updates and the sheet calibration is only read. Observed
// offsets land in the engine Tally, to be folded once every engine is done.
type Engine struct {
	sheet  *sheet.Sheet
	system *sheet.System
	graph  *sig.Graph
	in     Inputs
	params config.Heads
	log    *slog.Logger

	tally *calibration.Tally
	perf  Perf

	systemBox   image.Rectangle
	bars        []image.Rectangle
	competitors []*sig.Inter
	seeds       []*glyph.Glyph
	spots       []*glyph.Glyph
	heads       []*sig.Inter
}

// NewEngine creates the engine of one system. A nil logger discards output.
func NewEngine(sh *sheet.Sheet, sys *sheet.System, graph *sig.Graph, in Inputs, params config.Heads, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = config.Discard()
	}
	if in.Catalogs == nil {
		in.Catalogs = template.NewStore(nil)
	}
	if sh.Calibration == nil {
		sh.Calibration = calibration.NewSeedOffsets()
	}
	return &Engine{
		sheet:  sh,
		system: sys,
		graph:  graph,
		in:     in,
		params: params,
		log:    logger.With("system", sys.ID),
		tally:  calibration.NewTally(),
	}
}

// Tally returns the seed offsets observed during the last run.
func (e *Engine) Tally() *calibration.Tally { return e.tally }

// Perf returns the diagnostic counters of the last run.
func (e *Engine) Perf() Perf { return e.perf }

// BuildHeads runs head detection on every staff of the system.
//
// Accepted heads are inserted in the graph and registered on their staff.
// Conflicting heads that are not duplicates stay in the graph, linked by an
// exclusion relation.
//
// Returns:
//   - []*sig.Inter: The heads still alive at the end of the run.
//
// # Algorithm
//
//  1. Setup: bar and connector stripes, competitors, seeds and spots
//  2. Per staff (tablatures skipped): scanners for every line, space and
//     ledger position, seed-anchored pass, then range pass with
//     aggregation and seed conflict filtering
//  3. Per staff: duplicate purge (losers removed), overlap purge
//     (exclusions inserted)
//  4. System: stem-less heads boosted once, small beams arbitrated
//     against the heads they cover
func (e *Engine) BuildHeads() []*sig.Inter {
	e.perf = Perf{}
	e.heads = nil
	e.setup()

	for _, staff := range e.system.Staves {
		if staff.Tablature {
			e.log.Debug("skipping tablature", "staff", staff.ID)
			continue
		}
		e.heads = append(e.heads, e.processStaff(staff)...)
	}

	e.boostStemLess()
	e.arbitrateBeams()
	e.tally.Purge(func(h *sig.Inter) bool { return !h.IsRemoved() })

	live := liveHeads(e.heads)
	e.log.Debug("heads built", "heads", len(live), "perf", e.perf.String())
	return live
}

// setup refreshes the per-system state.
func (e *Engine) setup() {
	sys := e.system
	e.systemBox = image.Rect(sys.Left, sys.Top, sys.Right+1, sys.Bottom+1)
	scale := e.sheet.Scale
	margin := scale.ToPixels(e.params.BarMargin)

	e.bars = nil
	e.competitors = nil
	for _, bar := range e.graph.IntersectedInters(e.systemBox, sig.KindBarline, sig.KindConnector) {
		if bar.IsFrozen() && bar.IsGood() {
			b := bar.Bounds()
			e.bars = append(e.bars, image.Rect(b.Min.X-margin, b.Min.Y, b.Max.X+margin, b.Max.Y))
		}
		if bar.IsGood() && bar.Width() > scale.MaxStem {
			e.competitors = append(e.competitors, bar)
		}
	}

	minBeam := scale.ToPixels(e.params.MinBeamWidth)
	beams := e.graph.IntersectedInters(e.systemBox, sig.KindBeam)
	wideGroups := make(map[int]bool)
	for _, b := range beams {
		if b.Group() != 0 && b.Width() >= minBeam {
			wideGroups[b.Group()] = true
		}
	}
	for _, b := range beams {
		if (b.Group() == 0 && b.Width() >= minBeam) || wideGroups[b.Group()] {
			e.competitors = append(e.competitors, b)
		}
	}

	e.seeds = append([]*glyph.Glyph(nil), sys.Seeds...)
	glyph.SortByOrdinate(e.seeds)
	e.spots = append([]*glyph.Glyph(nil), e.in.Spots...)
	glyph.SortByOrdinate(e.spots)
}

func (e *Engine) processStaff(staff *sheet.Staff) []*sig.Inter {
	il := staff.Interline(e.sheet.Scale.Interline)
	catalog := e.in.Catalogs.Get(e.sheet.Family, template.PointSize(il))
	sc := newStaffScale(il, e.sheet.Scale.MaxStem, e.params)

	scanners := e.buildScanners(staff, catalog, sc)
	for _, s := range scanners {
		s.collect(e.seeds, e.competitors, e.bars)
	}

	var seedHeads []*sig.Inter
	for _, s := range scanners {
		seedHeads = append(seedHeads, e.lookupSeeds(s, catalog)...)
	}
	e.perf.SeedHeads += len(seedHeads)

	// Later search must not re-claim space explained by seed heads.
	for _, s := range scanners {
		s.addCompetitors(seedHeads)
	}

	var rangeHeads []*sig.Inter
	for _, s := range scanners {
		cands := aggregate(e.lookupRange(s, catalog), sc.aggregateTol)
		cands = filterSeedConflicts(cands, s.competitors, e.params.MinSeedOverlapIoU, e.params.SeedGradeMargin)
		for _, c := range cands {
			if h := e.commit(c); h != nil {
				rangeHeads = append(rangeHeads, h)
			}
		}
	}
	e.perf.RangeHeads += len(rangeHeads)

	heads := append(seedHeads, rangeHeads...)
	heads = e.purge(heads, e.isDuplicate, true)
	e.tally.Purge(func(h *sig.Inter) bool { return !h.IsRemoved() })
	heads = e.purge(heads, e.isOverlap, false)

	e.log.Debug("staff done", "staff", staff.ID, "scanners", len(scanners),
		"seedHeads", len(seedHeads), "rangeHeads", len(rangeHeads), "kept", len(heads))
	return heads
}

// buildScanners creates the scanning contexts of every pitch position of a staff.
func (e *Engine) buildScanners(staff *sheet.Staff, catalog *template.Catalog, sc staffScale) []*scanner {
	available := catalog.Shapes()
	warned := false
	shapesAt := func(pitch int) shape.Set {
		if !staff.Percussion {
			return available.Intersect(shape.Standard())
		}
		var set shape.Set
		ok := false
		if e.in.Drums != nil {
			set, ok = e.in.Drums.Shapes(staff.LineCount(), pitch)
		}
		if !ok {
			if !warned {
				e.log.Warn("no drum mapping for percussion staff", "staff", staff.ID, "lines", staff.LineCount())
				warned = true
			}
			return nil
		}
		return available.Intersect(set)
	}

	var scanners []*scanner
	add := func(line lineAdapter, other secondary, pitch, dir int) {
		scanners = append(scanners, newScanner(scannerSpec{
			staff:  staff,
			line:   line,
			other:  other,
			pitch:  pitch,
			dir:    dir,
			scale:  sc,
			params: e.params,
			shapes: shapesAt(pitch),
		}))
	}

	n := staff.LineCount()
	for i, l := range staff.Lines {
		la := staffLineAdapter{line: l}
		p := staff.LinePitch(i)
		above := ledgerSecondary(staff, -1)
		if i > 0 {
			above = fixedSecondary(staffLineAdapter{line: staff.Lines[i-1]})
		}
		add(la, above, p-1, -1)
		add(la, nil, p, 0)
		if i == n-1 {
			add(la, ledgerSecondary(staff, 1), p+1, 1)
		}
	}

	for _, dir := range []int{-1, 1} {
		// A merged grand staff stops at the middle ledger shared with its partner.
		limit := 0
		if (dir < 0 && staff.Grand == sheet.GrandPartnerAbove) || (dir > 0 && staff.Grand == sheet.GrandPartnerBelow) {
			limit = 1
		}
		for k := 1; limit == 0 || k <= limit; k++ {
			idx := dir * k
			ledgers := staff.Ledgers(idx)
			if len(ledgers) == 0 {
				break
			}
			p := staff.LedgerPitch(idx)
			for _, l := range ledgers {
				la := ledgerAdapter{ledger: l}
				add(la, nil, p, 0)
				if limit == 0 || k < limit {
					add(la, ledgerSecondary(staff, idx+dir), p+dir, dir)
				}
			}
		}
	}
	return scanners
}

// commit recovers the glyph of a candidate and, when some ink is found,
// inserts the head in the graph and registers it on its staff.
func (e *Engine) commit(c *candidate) *sig.Inter {
	g := e.recoverGlyph(c)
	if g == nil {
		e.perf.NoGlyph++
		return nil
	}
	h := c.head
	e.graph.AddVertex(h)
	g.ID = h.ID()
	h.SetGlyph(g)
	c.staff.AddHead(h)
	return h
}

func (e *Engine) recoverGlyph(c *candidate) *glyph.Glyph {
	var pixels []image.Point
	for _, p := range c.tmpl.ForeAt(c.x, c.y, c.anchor) {
		if e.in.Binary.IsFore(p.X, p.Y) {
			pixels = append(pixels, p)
		}
	}
	if len(pixels) == 0 {
		return nil
	}
	g := glyph.New(0, pixels)
	g.AddGroup(glyph.GroupHead)
	return g
}

// discard removes a head from the graph and from its staff.
func (e *Engine) discard(h *sig.Inter) {
	e.graph.RemoveVertex(h)
	if st, err := e.system.Staff(h.StaffID()); err == nil {
		st.RemoveHead(h)
	}
}

// holeWhiteRatio returns the share of paper pixels in r.
func (e *Engine) holeWhiteRatio(r image.Rectangle) float64 {
	r = r.Intersect(e.in.Binary.Bounds())
	if r.Empty() {
		return 0
	}
	total := r.Dx() * r.Dy()
	white := total - e.in.Binary.ForeCount(r)
	return float64(white) / float64(total)
}

func liveHeads(heads []*sig.Inter) []*sig.Inter {
	out := make([]*sig.Inter, 0, len(heads))
	for _, h := range heads {
		if !h.IsRemoved() {
			out = append(out, h)
		}
	}
	return out
}
