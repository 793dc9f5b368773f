package detection

import (
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// boostStemLess raises the grade of every live stem-less head of the
// system. Such heads never get support from a stem later on. Each head is
// boosted at most once.
func (e *Engine) boostStemLess() {
	for _, h := range e.heads {
		if h.IsRemoved() || !h.Shape().IsStemLess() {
			continue
		}
		if h.Boost(e.params.StemLessBoost) {
			e.perf.Boosts++
		}
	}
}

// arbitrateBeams settles the conflicts between small beams and the heads
// they cover. A short thick beam and a stack of heads look alike: for each
// head under a small beam, the beam is discarded as soon as a head grade
// exceeds the beam contextual grade; heads graded below it are discarded.
// Only heads built by this engine are considered.
func (e *Engine) arbitrateBeams() {
	minBeam := e.sheet.Scale.ToPixels(e.params.MinBeamWidth)
	own := make(map[*sig.Inter]bool, len(e.heads))
	for _, h := range e.heads {
		own[h] = true
	}
	for _, beam := range e.graph.IntersectedInters(e.systemBox, sig.KindBeam) {
		if beam.Width() >= minBeam {
			continue
		}
		ctx := beam.ContextualGrade()
		area := beam.Area()
		for _, h := range e.graph.IntersectedInters(beam.Bounds(), sig.KindHead) {
			if !own[h] || !area.IntersectsRect(h.Bounds()) {
				continue
			}
			if h.Grade() > ctx {
				e.graph.RemoveVertex(beam)
				e.perf.BeamsDefeated++
				break
			}
			e.discard(h)
			e.perf.HeadsDefeated++
		}
	}
}
