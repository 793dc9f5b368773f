package detection

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Perf counts what happened during a detection run. Misses are expected
// outcomes and only show up here.
type Perf struct {
	Bars     int `json:"bars"`     // locations skipped on a bar or connector
	Overlaps int `json:"overlaps"` // locations skipped on a competitor
	Evals    int `json:"evals"`    // template evaluations
	Abandons int `json:"abandons"` // shapes abandoned on the zero offset

	SeedHeads     int `json:"seed_heads"`
	RangeHeads    int `json:"range_heads"`
	NoGlyph       int `json:"no_glyph"`
	Duplicates    int `json:"duplicates"`
	Exclusions    int `json:"exclusions"`
	Boosts        int `json:"boosts"`
	BeamsDefeated int `json:"beams_defeated"`
	HeadsDefeated int `json:"heads_defeated"`
}

// Add accumulates the counters of another run.
func (p *Perf) Add(o Perf) {
	p.Bars += o.Bars
	p.Overlaps += o.Overlaps
	p.Evals += o.Evals
	p.Abandons += o.Abandons
	p.SeedHeads += o.SeedHeads
	p.RangeHeads += o.RangeHeads
	p.NoGlyph += o.NoGlyph
	p.Duplicates += o.Duplicates
	p.Exclusions += o.Exclusions
	p.Boosts += o.Boosts
	p.BeamsDefeated += o.BeamsDefeated
	p.HeadsDefeated += o.HeadsDefeated
}

// String formats the counters for logs, e.g. "evals=12,345 abandons=87 ...".
func (p Perf) String() string {
	fields := []struct {
		name  string
		value int
	}{
		{"bars", p.Bars},
		{"overlaps", p.Overlaps},
		{"evals", p.Evals},
		{"abandons", p.Abandons},
		{"seedHeads", p.SeedHeads},
		{"rangeHeads", p.RangeHeads},
		{"noGlyph", p.NoGlyph},
		{"duplicates", p.Duplicates},
		{"exclusions", p.Exclusions},
		{"boosts", p.Boosts},
		{"beamsDefeated", p.BeamsDefeated},
		{"headsDefeated", p.HeadsDefeated},
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s=%s", f.name, humanize.Comma(int64(f.value)))
	}
	return strings.Join(parts, " ")
}
