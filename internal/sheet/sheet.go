// Package sheet models the page geometry consumed by head detection: scale,
// systems, staves, staff lines and ledgers.
package sheet

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// ErrNoStaff is returned when a staff cannot be resolved.
var ErrNoStaff = errors.New("staff not found")

// Scale carries the key dimensions measured on a sheet, in pixels.
type Scale struct {
	// Interline is the vertical distance between two staff lines.
	Interline int `yaml:"interline" json:"interline"`

	// LineThickness is the typical staff line thickness.
	LineThickness int `yaml:"line_thickness" json:"line_thickness"`

	// MaxStem is the maximum plausible stem width.
	MaxStem int `yaml:"max_stem" json:"max_stem"`
}

// ToPixels converts an interline fraction to whole pixels.
func (s Scale) ToPixels(fraction float64) int {
	return int(math.Round(fraction * float64(s.Interline)))
}

// ToPixelsDouble converts an interline fraction to pixels.
func (s Scale) ToPixelsDouble(fraction float64) float64 {
	return fraction * float64(s.Interline)
}

// GrandSide tells where the partner of a merged grand staff lies.
type GrandSide int

const (
	// GrandNone marks a staff that is not part of a merged grand staff.
	GrandNone GrandSide = iota
	// GrandPartnerBelow marks the upper staff of the pair.
	GrandPartnerBelow
	// GrandPartnerAbove marks the lower staff of the pair.
	GrandPartnerAbove
)

// Staff is one staff of a system, with its lines, ledgers and accepted heads.
type Staff struct {
	ID int

	// Lines are ordered from top to bottom.
	Lines []*StaffLine

	// HeaderStop is the abscissa where the staff header (clef, key,
	// time signature) ends.
	HeaderStop int

	Tablature  bool
	Percussion bool

	// SpecificInterline overrides the sheet interline for small staves; 0 keeps it.
	SpecificInterline int

	// Grand tells on which side the partner of a merged grand staff lies.
	Grand GrandSide

	ledgers map[int][]*Ledger
	heads   []*sig.Inter
}

// NewStaff creates a staff from its lines, ordered top to bottom.
func NewStaff(id int, lines []*StaffLine) *Staff {
	return &Staff{ID: id, Lines: lines, ledgers: make(map[int][]*Ledger)}
}

// LineCount returns the number of staff lines.
func (s *Staff) LineCount() int { return len(s.Lines) }

// Left returns the leftmost abscissa of the staff lines.
func (s *Staff) Left() int {
	left := math.MaxInt
	for _, l := range s.Lines {
		left = min(left, l.Left())
	}
	return left
}

// Right returns the rightmost abscissa of the staff lines.
func (s *Staff) Right() int {
	right := math.MinInt
	for _, l := range s.Lines {
		right = max(right, l.Right())
	}
	return right
}

// Interline returns the staff interline given the sheet one.
func (s *Staff) Interline(sheetInterline int) int {
	if s.SpecificInterline > 0 {
		return s.SpecificInterline
	}
	return sheetInterline
}

// LinePitch returns the pitch position of line i (0 is the top line).
// The middle of the staff is pitch 0 and pitch grows downward.
func (s *Staff) LinePitch(i int) int {
	return 2*i - (len(s.Lines) - 1)
}

// LedgerPitch returns the pitch position of ledgers at index
// (-1 first above, +1 first below).
func (s *Staff) LedgerPitch(index int) int {
	edge := len(s.Lines) - 1
	if index < 0 {
		return -edge + 2*index
	}
	return edge + 2*index
}

// AddLedger registers a ledger at index (-1 first above, +1 first below).
func (s *Staff) AddLedger(index int, l *Ledger) {
	if index == 0 {
		return
	}
	if s.ledgers == nil {
		s.ledgers = make(map[int][]*Ledger)
	}
	s.ledgers[index] = append(s.ledgers[index], l)
	sort.Slice(s.ledgers[index], func(a, b int) bool {
		return s.ledgers[index][a].Start.X < s.ledgers[index][b].Start.X
	})
}

// Ledgers returns the ledgers at index, ordered by abscissa.
func (s *Staff) Ledgers(index int) []*Ledger {
	return s.ledgers[index]
}

// LedgerAt returns the ledger at index covering abscissa x, if any.
func (s *Staff) LedgerAt(index, x int) *Ledger {
	for _, l := range s.ledgers[index] {
		if l.Covers(x) {
			return l
		}
	}
	return nil
}

// AddHead registers an accepted head on the staff.
func (s *Staff) AddHead(h *sig.Inter) {
	s.heads = append(s.heads, h)
}

// RemoveHead unregisters a head.
func (s *Staff) RemoveHead(h *sig.Inter) {
	for i, x := range s.heads {
		if x == h {
			s.heads = append(s.heads[:i], s.heads[i+1:]...)
			return
		}
	}
}

// Heads returns the heads registered on the staff.
func (s *Staff) Heads() []*sig.Inter {
	return s.heads
}

// System is a horizontal band of staves played together.
type System struct {
	ID     int
	Left   int
	Right  int
	Top    int
	Bottom int
	Staves []*Staff

	// Seeds are the stem-seed glyphs found upstream in this system.
	Seeds []*glyph.Glyph
}

// ContainsAbscissa reports whether x lies within the system horizontal span.
func (s *System) ContainsAbscissa(x float64) bool {
	return x >= float64(s.Left) && x <= float64(s.Right)
}

// ContainsOrdinate reports whether y lies within the system vertical span.
func (s *System) ContainsOrdinate(y float64) bool {
	return y >= float64(s.Top) && y <= float64(s.Bottom)
}

// Staff returns the staff with the given id.
func (s *System) Staff(id int) (*Staff, error) {
	for _, st := range s.Staves {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %d in system %d", ErrNoStaff, id, s.ID)
}

// Sheet is the page aggregate. It owns the seed-offset calibration, whose
// lifetime is the sheet's.
type Sheet struct {
	Scale   Scale
	Systems []*System

	// Family is the music font family used to pick template catalogs.
	Family string

	Calibration *calibration.SeedOffsets
}

// New creates a sheet with an empty calibration.
func New(scale Scale, family string) *Sheet {
	return &Sheet{Scale: scale, Family: family, Calibration: calibration.NewSeedOffsets()}
}
