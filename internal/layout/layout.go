// Package layout reads the page-layout document produced by earlier
// recognition stages: systems, staves with their lines and ledgers, stem
// seeds, bar lines and beams. Building a layout yields the sheet and the
// interpretation graph the head engine works on.
package layout

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
	"github.com/ironsheep/notehead-scan/internal/template"
)

// ErrInvalidLayout is returned when a document is structurally wrong.
var ErrInvalidLayout = errors.New("invalid layout")

// Point is an (x, y) pair written as a two-element sequence.
type Point [2]float64

// Box is a rectangle written as [x0, y0, x1, y1], max exclusive.
type Box [4]int

// Rect converts the box to an image rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b[0], b[1], b[2], b[3])
}

// Document is the page layout.
type Document struct {
	Interline     int      `yaml:"interline"`
	LineThickness int      `yaml:"line_thickness"`
	MaxStem       int      `yaml:"max_stem"`
	Family        string   `yaml:"family,omitempty"`
	Systems       []System `yaml:"systems"`
}

// System is one system of the page.
type System struct {
	ID     int     `yaml:"id"`
	Left   int     `yaml:"left"`
	Right  int     `yaml:"right"`
	Top    int     `yaml:"top"`
	Bottom int     `yaml:"bottom"`
	Staves []Staff `yaml:"staves"`
	Seeds  []Box   `yaml:"seeds,omitempty"`
	Bars   []Bar   `yaml:"bars,omitempty"`
	Beams  []Beam  `yaml:"beams,omitempty"`
}

// Staff is one staff of a system. Lines are listed top to bottom.
type Staff struct {
	ID         int       `yaml:"id"`
	Lines      [][]Point `yaml:"lines"`
	Ledgers    []Ledger  `yaml:"ledgers,omitempty"`
	HeaderStop int       `yaml:"header_stop,omitempty"`
	Interline  int       `yaml:"interline,omitempty"`
	Tablature  bool      `yaml:"tablature,omitempty"`
	Percussion bool      `yaml:"percussion,omitempty"`
	// Grand is "", "partner_below" or "partner_above".
	Grand string `yaml:"grand,omitempty"`
}

// Ledger is one ledger; index -1 is the first above the staff, +1 the first below.
type Ledger struct {
	Index int   `yaml:"index"`
	Start Point `yaml:"start"`
	Stop  Point `yaml:"stop"`
}

// Bar is a bar line or a bar connector.
type Bar struct {
	// Kind is "barline" (default) or "connector".
	Kind   string  `yaml:"kind,omitempty"`
	Box    Box     `yaml:"box"`
	Grade  float64 `yaml:"grade"`
	Frozen bool    `yaml:"frozen,omitempty"`
}

// Beam is a beam, possibly part of a multi-beam group.
type Beam struct {
	Box             Box      `yaml:"box"`
	Grade           float64  `yaml:"grade"`
	ContextualGrade *float64 `yaml:"contextual_grade,omitempty"`
	Group           int      `yaml:"group,omitempty"`
	// Outline is the slanted beam polygon; the box alone is used when absent.
	Outline []Point `yaml:"outline,omitempty"`
}

// Decode parses and validates a YAML layout document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidLayout)
		}
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads a layout document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks the document structure.
func (d *Document) Validate() error {
	if d.Interline <= 0 {
		return fmt.Errorf("%w: interline must be positive", ErrInvalidLayout)
	}
	if len(d.Systems) == 0 {
		return fmt.Errorf("%w: no system", ErrInvalidLayout)
	}
	for _, sys := range d.Systems {
		if sys.Right < sys.Left || sys.Bottom < sys.Top {
			return fmt.Errorf("%w: system %d has inverted bounds", ErrInvalidLayout, sys.ID)
		}
		for _, st := range sys.Staves {
			if len(st.Lines) == 0 {
				return fmt.Errorf("%w: staff %d has no line", ErrInvalidLayout, st.ID)
			}
			for i, l := range st.Lines {
				if len(l) == 0 {
					return fmt.Errorf("%w: staff %d line %d has no point", ErrInvalidLayout, st.ID, i)
				}
			}
			for _, l := range st.Ledgers {
				if l.Index == 0 {
					return fmt.Errorf("%w: staff %d has a ledger at index 0", ErrInvalidLayout, st.ID)
				}
			}
			if _, err := parseGrand(st.Grand); err != nil {
				return fmt.Errorf("staff %d: %w", st.ID, err)
			}
		}
		for _, b := range sys.Bars {
			if _, err := parseBarKind(b.Kind); err != nil {
				return fmt.Errorf("system %d: %w", sys.ID, err)
			}
		}
		for i, b := range sys.Beams {
			if n := len(b.Outline); n > 0 && n < 3 {
				return fmt.Errorf("%w: system %d beam %d outline has %d points", ErrInvalidLayout, sys.ID, i, n)
			}
		}
	}
	return nil
}

func parseGrand(s string) (sheet.GrandSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return sheet.GrandNone, nil
	case "partner_below":
		return sheet.GrandPartnerBelow, nil
	case "partner_above":
		return sheet.GrandPartnerAbove, nil
	default:
		return sheet.GrandNone, fmt.Errorf("%w: unknown grand side %q", ErrInvalidLayout, s)
	}
}

func parseBarKind(s string) (sig.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "barline":
		return sig.KindBarline, nil
	case "connector":
		return sig.KindConnector, nil
	default:
		return sig.KindBarline, fmt.Errorf("%w: unknown bar kind %q", ErrInvalidLayout, s)
	}
}

// Build creates the sheet and the interpretation graph of the document.
//
// Seed boxes are turned into glyphs from the ink of bin; a seed box holding
// no ink is dropped. Bars and beams become graph vertices.
//
// Parameters:
//   - bin: Binarized page the seed glyphs are read from.
//   - family: Music font family used when the document names none.
//
// Returns the sheet with an empty calibration, the graph, and the number of
// dropped seeds.
func (d *Document) Build(bin *imaging.BinaryImage, family string) (*sheet.Sheet, *sig.Graph, int, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, 0, err
	}
	if d.Family != "" {
		family = d.Family
	}
	if family == "" {
		family = template.DefaultFamily
	}

	sh := sheet.New(sheet.Scale{
		Interline:     d.Interline,
		LineThickness: d.LineThickness,
		MaxStem:       d.MaxStem,
	}, family)
	graph := sig.NewGraph()

	dropped := 0
	seedID := 1
	for _, ds := range d.Systems {
		sys := &sheet.System{ID: ds.ID, Left: ds.Left, Right: ds.Right, Top: ds.Top, Bottom: ds.Bottom}
		for _, dst := range ds.Staves {
			sys.Staves = append(sys.Staves, buildStaff(dst))
		}
		for _, b := range ds.Seeds {
			g := glyph.FromRect(seedID, bin, b.Rect())
			if g == nil {
				dropped++
				continue
			}
			g.AddGroup(glyph.GroupStemSeed)
			sys.Seeds = append(sys.Seeds, g)
			seedID++
		}
		for _, b := range ds.Bars {
			kind, _ := parseBarKind(b.Kind)
			bar := sig.NewInter(kind, b.Box.Rect(), b.Grade)
			if b.Frozen {
				bar.Freeze()
			}
			graph.AddVertex(bar)
		}
		for _, b := range ds.Beams {
			beam := sig.NewInter(sig.KindBeam, b.Box.Rect(), b.Grade)
			beam.SetGroup(b.Group)
			if len(b.Outline) > 0 {
				beam.SetArea(geom.NewArea(points(b.Outline)))
			}
			if b.ContextualGrade != nil {
				beam.SetContextualGrade(*b.ContextualGrade)
			}
			graph.AddVertex(beam)
		}
		sh.Systems = append(sh.Systems, sys)
	}
	return sh, graph, dropped, nil
}

func buildStaff(d Staff) *sheet.Staff {
	lines := make([]*sheet.StaffLine, len(d.Lines))
	for i, pts := range d.Lines {
		lines[i] = sheet.NewStaffLine(points(pts))
	}
	st := sheet.NewStaff(d.ID, lines)
	st.HeaderStop = d.HeaderStop
	st.SpecificInterline = d.Interline
	st.Tablature = d.Tablature
	st.Percussion = d.Percussion
	st.Grand, _ = parseGrand(d.Grand)
	for _, l := range d.Ledgers {
		st.AddLedger(l.Index, sheet.NewLedger(l.Start.pointF(), l.Stop.pointF()))
	}
	return st
}

func (p Point) pointF() geom.PointF { return geom.PointF{X: p[0], Y: p[1]} }

func points(pts []Point) []geom.PointF {
	out := make([]geom.PointF, len(pts))
	for i, p := range pts {
		out[i] = p.pointF()
	}
	return out
}
