package detection

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

func TestBoostStemLess_AppliedOnce(t *testing.T) {
	p := newTestPage()
	e, _ := p.engine(engineOpts{})
	whole := addHead(e, p, shape.WholeNote, image.Rect(300, 188, 320, 200), 0.6, -1)
	black := addHead(e, p, shape.NoteheadBlack, image.Rect(150, 194, 164, 206), 0.6, 0)
	e.heads = []*sig.Inter{whole, black}

	e.boostStemLess()
	e.boostStemLess()

	if math.Abs(whole.Grade()-0.7) > 1e-9 {
		t.Errorf("whole grade = %v, want 0.7", whole.Grade())
	}
	if black.Grade() != 0.6 {
		t.Errorf("black grade = %v, want unchanged", black.Grade())
	}
	if e.perf.Boosts != 1 {
		t.Errorf("Boosts = %d, want 1", e.perf.Boosts)
	}
}

func TestArbitrateBeams(t *testing.T) {
	tests := []struct {
		name        string
		beamBox     image.Rectangle
		beamCtx     float64
		headGrade   float64
		wantBeam    bool
		wantHead    bool
		wantBeams   int
		wantHeadsKO int
	}{
		{"head defeats weak beam", image.Rect(150, 196, 164, 202), 0.3, 0.9, false, true, 1, 0},
		{"strong beam defeats head", image.Rect(150, 196, 164, 202), 0.95, 0.9, true, false, 0, 1},
		{"wide beam left alone", image.Rect(120, 196, 200, 202), 0.3, 0.9, true, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPage()
			e, graph := p.engine(engineOpts{})
			beam := sig.NewInter(sig.KindBeam, tt.beamBox, 0.6)
			beam.SetContextualGrade(tt.beamCtx)
			graph.AddVertex(beam)
			head := addHead(e, p, shape.NoteheadBlack, image.Rect(150, 194, 164, 206), tt.headGrade, 0)

			e.setup()
			e.heads = []*sig.Inter{head}
			e.arbitrateBeams()

			if got := graph.Contains(beam); got != tt.wantBeam {
				t.Errorf("beam alive = %v, want %v", got, tt.wantBeam)
			}
			if got := graph.Contains(head); got != tt.wantHead {
				t.Errorf("head alive = %v, want %v", got, tt.wantHead)
			}
			if !tt.wantHead && len(p.staff.Heads()) != 0 {
				t.Error("defeated head still registered on its staff")
			}
			if e.perf.BeamsDefeated != tt.wantBeams || e.perf.HeadsDefeated != tt.wantHeadsKO {
				t.Errorf("perf beams/heads = %d/%d, want %d/%d",
					e.perf.BeamsDefeated, e.perf.HeadsDefeated, tt.wantBeams, tt.wantHeadsKO)
			}
		})
	}
}
