// Package config holds the tunable parameters of head detection and their
// YAML loading.
//
// Lengths are expressed as fractions of the staff interline unless the field
// name says otherwise, so one configuration serves every scan resolution.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/template"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "HEADSCAN_LOG_LEVEL"

// Config is the top-level configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	Threshold uint8  `yaml:"threshold"` // gray level separating ink from paper
	Family    string `yaml:"family"`    // template font family
	Workers   int    `yaml:"workers"`   // systems processed concurrently
	Heads     Heads  `yaml:"heads"`
}

// Heads tunes the head detection engine.
type Heads struct {
	// Template distances, in interline fractions.
	MaxDistanceLow    float64 `yaml:"max_distance_low"`    // acceptance limit
	MaxDistanceHigh   float64 `yaml:"max_distance_high"`   // distance of grade zero
	ReallyBadDistance float64 `yaml:"really_bad_distance"` // early abandon limit

	CrossPenaltyRatio float64 `yaml:"cross_penalty_ratio"`  // distance multiplier for cross heads
	MinHoleWhiteRatio float64 `yaml:"min_hole_white_ratio"` // black head re-tested as void above this

	// Scanner areas.
	SeedMarginRatio  float64 `yaml:"seed_margin_ratio"`  // widening of the seed lookup band
	ShrinkHorizontal float64 `yaml:"shrink_horizontal"`  // head box shrink for competitor overlap
	ShrinkVertical   float64 `yaml:"shrink_vertical"`    // also widens the competitor band
	BarMargin        float64 `yaml:"bar_margin"`         // widening of bar and connector stripes
	MaxVerticalShift float64 `yaml:"max_vertical_shift"` // zig-zag extension on lines
	MaxOpenShift     float64 `yaml:"max_open_shift"`     // zig-zag extension in open spaces
	SpotMargin       float64 `yaml:"spot_margin"`        // abscissa margin around head spots
	SpotRadius       float64 `yaml:"spot_radius"`        // opening radius of the head-spot image

	// Candidate resolution.
	AggregateTolerance float64 `yaml:"aggregate_tolerance"`  // center distance of one aggregate
	MinSeedOverlapIoU  float64 `yaml:"min_seed_overlap_iou"` // range head vs seed head conflict
	SeedGradeMargin    float64 `yaml:"seed_grade_margin"`    // handicap tolerated for seed heads
	DuplicateIoU       float64 `yaml:"duplicate_iou"`
	MinOverlapIoU      float64 `yaml:"min_overlap_iou"`
	GradeEpsilon       float64 `yaml:"grade_epsilon"`

	// Context.
	StemLessBoost      float64 `yaml:"stem_less_boost"`
	MinContextualGrade float64 `yaml:"min_contextual_grade"`
	MinBeamWidth       float64 `yaml:"min_beam_width"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Threshold: imaging.DefaultThreshold,
		Family:    template.DefaultFamily,
		Workers:   1,
		Heads:     DefaultHeads(),
	}
}

// DefaultHeads returns the built-in engine parameters.
//
// A match at the acceptance limit grades 1 - 0.025/0.03, about 0.17, under
// the good grade (0.5) and under MinContextualGrade - StemLessBoost (0.4).
func DefaultHeads() Heads {
	return Heads{
		MaxDistanceLow:    0.025,
		MaxDistanceHigh:   0.03,
		ReallyBadDistance: 0.1,
		CrossPenaltyRatio: 0.8,
		MinHoleWhiteRatio: 0.5,

		SeedMarginRatio:  0.5,
		ShrinkHorizontal: 0.7,
		ShrinkVertical:   0.7,
		BarMargin:        0.25,
		MaxVerticalShift: 0.2,
		MaxOpenShift:     0.4,
		SpotMargin:       0.25,
		SpotRadius:       0.2,

		AggregateTolerance: 0.25,
		MinSeedOverlapIoU:  0.25,
		SeedGradeMargin:    0.15,
		DuplicateIoU:       0.8,
		MinOverlapIoU:      0.25,
		GradeEpsilon:       1e-3,

		StemLessBoost:      0.1,
		MinContextualGrade: 0.5,
		MinBeamWidth:       2.5,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. The log level environment override is applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize restores defaults for missing or invalid values.
func (c *Config) Normalize() {
	def := Default()
	if c.Threshold == 0 {
		c.Threshold = def.Threshold
	}
	if strings.TrimSpace(c.Family) == "" {
		c.Family = def.Family
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	c.Heads.normalize()
}

func (h *Heads) normalize() {
	def := DefaultHeads()
	positive := []struct {
		v   *float64
		def float64
	}{
		{&h.MaxDistanceLow, def.MaxDistanceLow},
		{&h.MaxDistanceHigh, def.MaxDistanceHigh},
		{&h.ReallyBadDistance, def.ReallyBadDistance},
		{&h.CrossPenaltyRatio, def.CrossPenaltyRatio},
		{&h.MinHoleWhiteRatio, def.MinHoleWhiteRatio},
		{&h.ShrinkHorizontal, def.ShrinkHorizontal},
		{&h.ShrinkVertical, def.ShrinkVertical},
		{&h.AggregateTolerance, def.AggregateTolerance},
		{&h.DuplicateIoU, def.DuplicateIoU},
		{&h.MinOverlapIoU, def.MinOverlapIoU},
		{&h.MinSeedOverlapIoU, def.MinSeedOverlapIoU},
		{&h.GradeEpsilon, def.GradeEpsilon},
		{&h.MinBeamWidth, def.MinBeamWidth},
		{&h.SpotRadius, def.SpotRadius},
	}
	for _, p := range positive {
		if *p.v <= 0 {
			*p.v = p.def
		}
	}
	if h.MaxDistanceHigh < h.MaxDistanceLow {
		h.MaxDistanceHigh = h.MaxDistanceLow
	}
	if h.ReallyBadDistance < h.MaxDistanceHigh {
		h.ReallyBadDistance = h.MaxDistanceHigh
	}
	for _, v := range []*float64{&h.SeedMarginRatio, &h.BarMargin, &h.MaxVerticalShift,
		&h.MaxOpenShift, &h.SpotMargin, &h.SeedGradeMargin, &h.StemLessBoost, &h.MinContextualGrade} {
		if *v < 0 {
			*v = 0
		}
	}
}
