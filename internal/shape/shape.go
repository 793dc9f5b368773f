// Package shape enumerates the note-head shapes handled by template matching
// and the families they belong to.
package shape

import (
	"errors"
	"fmt"
)

// ErrUnknownShape is returned when a shape name cannot be resolved.
var ErrUnknownShape = errors.New("unknown shape")

// Shape identifies one note-head symbol.
type Shape int

const (
	None Shape = iota

	// Oval family
	NoteheadBlack
	NoteheadBlackSmall
	NoteheadVoid
	NoteheadVoidSmall
	WholeNote
	WholeNoteSmall
	BreveNote

	// Percussion heads
	NoteheadCross
	NoteheadDiamondBlack
	NoteheadDiamondVoid

	numShapes
)

var names = [numShapes]string{
	None:                 "NONE",
	NoteheadBlack:        "NOTEHEAD_BLACK",
	NoteheadBlackSmall:   "NOTEHEAD_BLACK_SMALL",
	NoteheadVoid:         "NOTEHEAD_VOID",
	NoteheadVoidSmall:    "NOTEHEAD_VOID_SMALL",
	WholeNote:            "WHOLE_NOTE",
	WholeNoteSmall:       "WHOLE_NOTE_SMALL",
	BreveNote:            "BREVE",
	NoteheadCross:        "NOTEHEAD_CROSS",
	NoteheadDiamondBlack: "NOTEHEAD_DIAMOND_FILLED",
	NoteheadDiamondVoid:  "NOTEHEAD_DIAMOND_VOID",
}

func (s Shape) String() string {
	if s < 0 || s >= numShapes {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return names[s]
}

// Parse resolves a shape from its persisted name.
func Parse(name string) (Shape, error) {
	for i, n := range names {
		if n == name && Shape(i) != None {
			return Shape(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if s <= None || s >= numShapes {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Family groups shapes that share a template outline.
type Family int

const (
	FamilyOval Family = iota
	FamilyCross
	FamilyDiamond
)

// Family returns the outline family of a head shape.
func (s Shape) Family() Family {
	switch s {
	case NoteheadCross:
		return FamilyCross
	case NoteheadDiamondBlack, NoteheadDiamondVoid:
		return FamilyDiamond
	default:
		return FamilyOval
	}
}

// IsStemLess reports whether a head of this shape never carries a stem.
func (s Shape) IsStemLess() bool {
	switch s {
	case WholeNote, WholeNoteSmall, BreveNote:
		return true
	}
	return false
}

// IsSmall reports whether the shape is a cue or grace size variant.
func (s Shape) IsSmall() bool {
	switch s {
	case NoteheadBlackSmall, NoteheadVoidSmall, WholeNoteSmall:
		return true
	}
	return false
}

// IsFilled reports whether the head interior is black.
func (s Shape) IsFilled() bool {
	switch s {
	case NoteheadBlack, NoteheadBlackSmall, NoteheadCross, NoteheadDiamondBlack:
		return true
	}
	return false
}

// IsCross reports whether the head is cross shaped.
func (s Shape) IsCross() bool {
	return s == NoteheadCross
}

// Hollow returns the hollow counterpart of a filled head, if any.
func (s Shape) Hollow() (Shape, bool) {
	switch s {
	case NoteheadBlack:
		return NoteheadVoid, true
	case NoteheadBlackSmall:
		return NoteheadVoidSmall, true
	case NoteheadDiamondBlack:
		return NoteheadDiamondVoid, true
	}
	return None, false
}

// IsGenericBlack reports whether the shape is the plain filled oval head,
// the only shape re-tested as hollow after matching.
func (s Shape) IsGenericBlack() bool {
	return s == NoteheadBlack || s == NoteheadBlackSmall
}

// Matched lists every head shape handled by template matching, in a stable order.
func Matched() []Shape {
	return []Shape{
		NoteheadBlack, NoteheadBlackSmall,
		NoteheadVoid, NoteheadVoidSmall,
		WholeNote, WholeNoteSmall, BreveNote,
		NoteheadCross, NoteheadDiamondBlack, NoteheadDiamondVoid,
	}
}

// Standard lists the shapes searched on a standard (non-percussion) staff.
func Standard() []Shape {
	return []Shape{
		NoteheadBlack, NoteheadBlackSmall,
		NoteheadVoid, NoteheadVoidSmall,
		WholeNote, WholeNoteSmall, BreveNote,
	}
}

// Set is an ordered shape collection without duplicates.
type Set []Shape

// Contains reports whether s belongs to the set.
func (set Set) Contains(s Shape) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

// Filter returns the members satisfying keep, preserving order.
func (set Set) Filter(keep func(Shape) bool) Set {
	out := make(Set, 0, len(set))
	for _, s := range set {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Intersect returns the members of set also present in other.
func (set Set) Intersect(other Set) Set {
	return set.Filter(other.Contains)
}

// Union returns set followed by the members of other not already present.
func (set Set) Union(other Set) Set {
	out := append(Set(nil), set...)
	for _, s := range other {
		if !out.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}
