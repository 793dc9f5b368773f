// Package drum maps percussion staff positions to the head motifs their
// instruments are written with.
package drum

import (
	"fmt"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/shape"
)

// Motif is the head drawing used for an instrument.
type Motif int

const (
	MotifOval Motif = iota
	MotifSmall
	MotifCross
	MotifDiamond
)

func (m Motif) String() string {
	switch m {
	case MotifOval:
		return "oval"
	case MotifSmall:
		return "small"
	case MotifCross:
		return "cross"
	case MotifDiamond:
		return "diamond"
	default:
		return fmt.Sprintf("Motif(%d)", int(m))
	}
}

// Shapes returns the head shapes a motif can be drawn with.
func (m Motif) Shapes() shape.Set {
	switch m {
	case MotifOval:
		return shape.Set{shape.NoteheadBlack, shape.NoteheadVoid, shape.WholeNote, shape.BreveNote}
	case MotifSmall:
		return shape.Set{shape.NoteheadBlackSmall, shape.NoteheadVoidSmall, shape.WholeNoteSmall}
	case MotifCross:
		return shape.Set{shape.NoteheadCross}
	case MotifDiamond:
		return shape.Set{shape.NoteheadDiamondBlack, shape.NoteheadDiamondVoid}
	}
	return nil
}

// Instrument is one entry of a drum set, placed at a pitch position.
type Instrument struct {
	Name  string `yaml:"name" json:"name"`
	Pitch int    `yaml:"pitch" json:"pitch"`
	Motif Motif  `yaml:"motif" json:"motif"`
}

// Mapping tells, per staff line count, which instruments sit at each pitch.
type Mapping struct {
	byLines map[int]map[int][]Instrument
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{byLines: make(map[int]map[int][]Instrument)}
}

// Add registers an instrument for staves of lineCount lines.
func (m *Mapping) Add(lineCount int, inst Instrument) {
	byPitch, ok := m.byLines[lineCount]
	if !ok {
		byPitch = make(map[int][]Instrument)
		m.byLines[lineCount] = byPitch
	}
	byPitch[inst.Pitch] = append(byPitch[inst.Pitch], inst)
}

// Has reports whether staves of lineCount lines have a mapping.
func (m *Mapping) Has(lineCount int) bool {
	_, ok := m.byLines[lineCount]
	return ok
}

// Instruments returns the instruments at pitch on a staff of lineCount lines.
func (m *Mapping) Instruments(lineCount, pitch int) []Instrument {
	return m.byLines[lineCount][pitch]
}

// Shapes returns the union of shapes implied by the motifs mapped at pitch,
// in motif order. The second result is false when lineCount has no mapping.
func (m *Mapping) Shapes(lineCount, pitch int) (shape.Set, bool) {
	byPitch, ok := m.byLines[lineCount]
	if !ok {
		return nil, false
	}
	insts := byPitch[pitch]
	motifs := make([]Motif, 0, len(insts))
	for _, in := range insts {
		motifs = append(motifs, in.Motif)
	}
	sort.Slice(motifs, func(i, j int) bool { return motifs[i] < motifs[j] })

	var set shape.Set
	for _, mo := range motifs {
		set = set.Union(mo.Shapes())
	}
	return set, true
}

// Default returns a drum kit layout for five-line and one-line percussion staves.
func Default() *Mapping {
	m := NewMapping()
	for _, in := range []Instrument{
		{Name: "Crash Cymbal", Pitch: -6, Motif: MotifCross},
		{Name: "Closed Hi-Hat", Pitch: -5, Motif: MotifCross},
		{Name: "Ride Cymbal", Pitch: -4, Motif: MotifCross},
		{Name: "Ride Bell", Pitch: -4, Motif: MotifDiamond},
		{Name: "High Tom", Pitch: -3, Motif: MotifOval},
		{Name: "Mid Tom", Pitch: -2, Motif: MotifOval},
		{Name: "Snare", Pitch: -1, Motif: MotifOval},
		{Name: "Side Stick", Pitch: -1, Motif: MotifCross},
		{Name: "Snare Ghost", Pitch: -1, Motif: MotifSmall},
		{Name: "Low Tom", Pitch: 1, Motif: MotifOval},
		{Name: "Floor Tom", Pitch: 2, Motif: MotifOval},
		{Name: "Bass Drum", Pitch: 3, Motif: MotifOval},
		{Name: "Pedal Hi-Hat", Pitch: 5, Motif: MotifCross},
	} {
		m.Add(5, in)
	}
	for _, in := range []Instrument{
		{Name: "High Percussion", Pitch: -1, Motif: MotifOval},
		{Name: "Percussion", Pitch: 0, Motif: MotifOval},
		{Name: "Percussion Rim", Pitch: 0, Motif: MotifCross},
		{Name: "Low Percussion", Pitch: 1, Motif: MotifOval},
	} {
		m.Add(1, in)
	}
	return m
}
