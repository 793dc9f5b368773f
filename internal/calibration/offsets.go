// Package calibration remembers the typical horizontal offset between a stem
// seed and the head it carries, per head shape and per side.
//
// SeedOffsets is the sheet-scoped, persisted store. Tally collects the
// observations of one detection run, per head instance, before they are
// folded back into the store.
package calibration

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/notehead-scan/internal/shape"
)

// ErrUnknownSide is returned when a side name cannot be resolved.
var ErrUnknownSide = errors.New("unknown side")

// Side is the horizontal side of a head where a stem seed stands.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both sides in persisted order.
func Sides() []Side { return []Side{Left, Right} }

func (s Side) String() string {
	if s == Left {
		return "LEFT"
	}
	return "RIGHT"
}

// ParseSide resolves a side from its persisted name.
func ParseSide(name string) (Side, error) {
	switch name {
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	}
	return Left, fmt.Errorf("%w: %q", ErrUnknownSide, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record is the persisted form of one calibrated offset.
type Record struct {
	Shape  shape.Shape `yaml:"shape" json:"shape"`
	Side   Side        `yaml:"side" json:"side"`
	Offset float64     `yaml:"offset" json:"offset"`
}

type key struct {
	shape shape.Shape
	side  Side
}

// SeedOffsets holds one offset per (shape, side). An offset is positive
// when the seed stands outside the head box, negative when inside.
//
// The store keeps the last value written for a pair; it does not average.
// It is safe for concurrent use.
type SeedOffsets struct {
	mu      sync.RWMutex
	offsets map[key]float64
}

// NewSeedOffsets creates an empty store.
func NewSeedOffsets() *SeedOffsets {
	return &SeedOffsets{offsets: make(map[key]float64)}
}

// Get returns the offset of (s, side) and whether one is known.
func (o *SeedOffsets) Get(s shape.Shape, side Side) (float64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.offsets[key{shape: s, side: side}]
	return v, ok
}

// Put records the offset of (s, side), rounded to one decimal digit.
func (o *SeedOffsets) Put(s shape.Shape, side Side, offset float64) {
	o.mu.Lock()
	o.offsets[key{shape: s, side: side}] = round1(offset)
	o.mu.Unlock()
}

// Len returns the number of calibrated pairs.
func (o *SeedOffsets) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.offsets)
}

// Records flattens the store, ordered by shape then side.
func (o *SeedOffsets) Records() []Record {
	o.mu.RLock()
	recs := make([]Record, 0, len(o.offsets))
	for k, v := range o.offsets {
		recs = append(recs, Record{Shape: k.shape, Side: k.side, Offset: v})
	}
	o.mu.RUnlock()
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Shape != recs[j].Shape {
			return recs[i].Shape < recs[j].Shape
		}
		return recs[i].Side < recs[j].Side
	})
	return recs
}

// Load replays records into the store, in order.
func (o *SeedOffsets) Load(recs []Record) {
	for _, r := range recs {
		o.Put(r.Shape, r.Side, r.Offset)
	}
}

type document struct {
	SeedOffsets []Record `yaml:"seed_offsets"`
}

// WriteYAML writes the flattened records.
func (o *SeedOffsets) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{SeedOffsets: o.Records()}); err != nil {
		return fmt.Errorf("failed to encode seed offsets: %w", err)
	}
	return enc.Close()
}

// ReadYAML replays the records found in r.
func (o *SeedOffsets) ReadYAML(r io.Reader) error {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode seed offsets: %w", err)
	}
	o.Load(doc.SeedOffsets)
	return nil
}

// LoadFile reads a calibration file. A missing file yields an empty store.
func LoadFile(path string) (*SeedOffsets, error) {
	o := NewSeedOffsets()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return o, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration: %w", err)
	}
	defer f.Close()
	if err := o.ReadYAML(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// SaveFile writes the store to path, replacing it atomically.
func (o *SeedOffsets) SaveFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".calibration-*")
	if err != nil {
		return fmt.Errorf("failed to save calibration: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := o.WriteYAML(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save calibration: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save calibration: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
