package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

// candidateAt builds a candidate whose box is centered on cx.
func candidateAt(cx int, grade float64) *candidate {
	box := image.Rect(cx-7, 194, cx+7, 206)
	return &candidate{head: sig.NewHead(shape.NoteheadBlack, box, grade, 1, 0)}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		centers   []int
		grades    []float64
		tolerance float64
		want      []float64 // grades of the leaders, in order
	}{
		{"single", []int{100}, []float64{0.8}, 3, []float64{0.8}},
		{"collapses near matches", []int{100, 101, 103}, []float64{0.7, 0.9, 0.8}, 3, []float64{0.9}},
		{"keeps distant clusters", []int{100, 101, 120}, []float64{0.7, 0.6, 0.8}, 3, []float64{0.8, 0.7}},
		{"tight tolerance", []int{100, 101, 103}, []float64{0.9, 0.8, 0.7}, 1.5, []float64{0.9, 0.7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cands []*candidate
			for i, cx := range tt.centers {
				cands = append(cands, candidateAt(cx, tt.grades[i]))
			}
			got := aggregate(cands, tt.tolerance)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d leaders, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.head.Grade() != tt.want[i] {
					t.Errorf("leader %d grade = %v, want %v", i, c.head.Grade(), tt.want[i])
				}
			}
		})
	}
}

func TestAggregate_StableOnTies(t *testing.T) {
	a, b := candidateAt(100, 0.8), candidateAt(101, 0.8)
	got := aggregate([]*candidate{a, b}, 3)
	if len(got) != 1 || got[0] != a {
		t.Errorf("tie not resolved in input order: %v", got)
	}
}

func TestFilterSeedConflicts(t *testing.T) {
	seedHead := func(grade float64) *sig.Inter {
		return sig.NewHead(shape.NoteheadBlack, image.Rect(93, 194, 107, 206), grade, 1, 0)
	}
	removed := seedHead(0.9)
	g := sig.NewGraph()
	g.AddVertex(removed)
	g.RemoveVertex(removed)

	tests := []struct {
		name        string
		competitors []*sig.Inter
		candX       int
		candGrade   float64
		wantKept    bool
	}{
		{"no seed head", nil, 100, 0.8, true},
		{"better seed head", []*sig.Inter{seedHead(0.9)}, 100, 0.8, false},
		{"seed head within margin", []*sig.Inter{seedHead(0.7)}, 100, 0.8, false},
		{"seed head far worse", []*sig.Inter{seedHead(0.5)}, 100, 0.8, true},
		{"no overlap", []*sig.Inter{seedHead(0.9)}, 130, 0.8, true},
		{"removed seed head", []*sig.Inter{removed}, 100, 0.8, true},
		{"non-head competitor", []*sig.Inter{sig.NewInter(sig.KindBeam, image.Rect(93, 194, 107, 206), 0.9)}, 100, 0.8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := []*candidate{candidateAt(tt.candX, tt.candGrade)}
			got := filterSeedConflicts(cands, tt.competitors, 0.25, 0.15)
			if kept := len(got) == 1; kept != tt.wantKept {
				t.Errorf("kept = %v, want %v", kept, tt.wantKept)
			}
		})
	}
}
