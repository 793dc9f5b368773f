package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// conflict tells whether two heads compete for the same place.
type conflict func(a, b *sig.Inter) bool

// isDuplicate reports whether two heads are the same interpretation.
func (e *Engine) isDuplicate(a, b *sig.Inter) bool {
	return a.Pitch() == b.Pitch() && geom.IoU(a.Bounds(), b.Bounds()) >= e.params.DuplicateIoU
}

// isOverlap reports whether two heads overlap beyond the tolerated ratio.
func (e *Engine) isOverlap(a, b *sig.Inter) bool {
	return geom.IoU(a.Bounds(), b.Bounds()) > e.params.MinOverlapIoU
}

// purge resolves the conflicting pairs of heads.
//
// With remove set, the loser of each pair is removed from the graph and its
// staff. Otherwise both stay and an exclusion relation links them.
//
// Returns the heads still alive, ordered by abscissa.
//
// # Algorithm
//
// Heads are sorted by left then right abscissa. Each head is compared only
// with the following ones until one starts past its right edge, so only
// horizontally intersecting boxes are tested.
func (e *Engine) purge(heads []*sig.Inter, conflicting conflict, remove bool) []*sig.Inter {
	sorted := append([]*sig.Inter(nil), heads...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Bounds(), sorted[j].Bounds()
		if a.Min.X != b.Min.X {
			return a.Min.X < b.Min.X
		}
		if a.Max.X != b.Max.X {
			return a.Max.X < b.Max.X
		}
		return sorted[i].ID() < sorted[j].ID()
	})

	for i, a := range sorted {
		if a.IsRemoved() {
			continue
		}
		for _, b := range sorted[i+1:] {
			if b.Bounds().Min.X >= a.Bounds().Max.X {
				break
			}
			if b.IsRemoved() || !conflicting(a, b) {
				continue
			}
			if !remove {
				if e.graph.InsertExclusion(a, b, sig.CauseOverlap) {
					e.perf.Exclusions++
				}
				continue
			}

			loser, winner, merge := e.loser(a, b)
			if merge {
				e.tally.Copy(loser, winner)
			}
			e.discard(loser)
			e.perf.Duplicates++
			if loser == a {
				break
			}
		}
	}
	return liveHeads(sorted)
}

// loser picks the head to discard among two conflicting ones.
//
// The lower grade loses. Between grades equal within epsilon, a head without
// seed offset data loses to one with data. When both carry data the second
// one loses and merge is set: the winner must take over the sides only the
// loser observed.
func (e *Engine) loser(a, b *sig.Inter) (loser, winner *sig.Inter, merge bool) {
	if d := a.Grade() - b.Grade(); math.Abs(d) > e.params.GradeEpsilon {
		if d < 0 {
			return a, b, false
		}
		return b, a, false
	}
	aData, bData := e.tally.HasData(a), e.tally.HasData(b)
	if bData && !aData {
		return a, b, false
	}
	return b, a, aData && bData
}
