package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// aggregate collapses candidates sharing a horizontal location.
//
// Candidates are visited by decreasing grade. A candidate whose box center
// lies within tolerance of the center of an aggregate leader joins that
// aggregate and is dropped; otherwise it leads a new aggregate. Only the
// leaders are returned, by decreasing grade.
func aggregate(cands []*candidate, tolerance float64) []*candidate {
	if len(cands) < 2 {
		return cands
	}
	sorted := append([]*candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].head.Grade() > sorted[j].head.Grade()
	})

	var leaders []*candidate
	for _, c := range sorted {
		cx := geom.CenterX(c.head.Bounds())
		joined := false
		for _, l := range leaders {
			if math.Abs(geom.CenterX(l.head.Bounds())-cx) <= tolerance {
				joined = true
				break
			}
		}
		if !joined {
			leaders = append(leaders, c)
		}
	}
	return leaders
}

// filterSeedConflicts drops the candidates overlapping a seed-based head
// that is at least as good as the candidate once lowered by margin.
// Seed evidence wins ties.
func filterSeedConflicts(cands []*candidate, competitors []*sig.Inter, minIoU, margin float64) []*candidate {
	var seedHeads []*sig.Inter
	for _, c := range competitors {
		if c.IsHead() && !c.IsRemoved() {
			seedHeads = append(seedHeads, c)
		}
	}
	if len(seedHeads) == 0 {
		return cands
	}

	out := cands[:0:0]
	for _, c := range cands {
		box := c.head.Bounds()
		floor := c.head.Grade() * (1 - margin)
		conflict := false
		for _, h := range seedHeads {
			if geom.IoU(box, h.Bounds()) > minIoU && h.Grade() >= floor {
				conflict = true
				break
			}
		}
		if !conflict {
			out = append(out, c)
		}
	}
	return out
}
