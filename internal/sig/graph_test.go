package sig

import (
	"image"
	"sync"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/shape"
)

func head(x int) *Inter {
	return NewHead(shape.NoteheadBlack, image.Rect(x, 0, x+10, 8), 0.5, 1, 0)
}

func TestGraph_AddVertex(t *testing.T) {
	g := NewGraph()
	a, b := head(0), head(20)
	g.AddVertex(a)
	g.AddVertex(b)
	g.AddVertex(a) // already present

	if a.ID() != 1 || b.ID() != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a.ID(), b.ID())
	}
	if !g.Contains(a) || !g.Contains(b) {
		t.Error("inserted inters should be contained")
	}
	if got := len(g.Inters()); got != 2 {
		t.Errorf("Inters() = %d, want 2", got)
	}
}

func TestGraph_Exclusions(t *testing.T) {
	g := NewGraph()
	a, b, c := head(0), head(5), head(40)
	for _, i := range []*Inter{a, b, c} {
		g.AddVertex(i)
	}

	tests := []struct {
		name string
		x, y *Inter
		want bool
	}{
		{"new relation", a, b, true},
		{"same pair reversed", b, a, false},
		{"self", a, a, false},
		{"second relation", b, c, true},
		{"outside vertex", a, head(80), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.InsertExclusion(tt.x, tt.y, CauseOverlap); got != tt.want {
				t.Errorf("InsertExclusion = %v, want %v", got, tt.want)
			}
		})
	}

	if !g.HasExclusion(b, a) || g.HasExclusion(a, c) {
		t.Error("HasExclusion does not reflect the inserted relations")
	}
	if g.ExclusionCount() != 2 {
		t.Errorf("ExclusionCount = %d, want 2", g.ExclusionCount())
	}

	g.RemoveVertex(b)
	if !b.IsRemoved() || g.Contains(b) {
		t.Error("removed vertex is still live")
	}
	if g.ExclusionCount() != 0 {
		t.Errorf("ExclusionCount after removal = %d, want 0", g.ExclusionCount())
	}
	g.RemoveVertex(b)

	// A removed inter may be inserted again under a fresh id.
	g.AddVertex(b)
	if b.IsRemoved() || b.ID() != 4 {
		t.Errorf("re-added vertex: removed %v id %d", b.IsRemoved(), b.ID())
	}
}

func TestGraph_IntersByKind(t *testing.T) {
	g := NewGraph()
	h1, h2 := head(0), head(50)
	stem := NewInter(KindStem, image.Rect(10, 0, 11, 30), 0.8)
	beam := NewInter(KindBeam, image.Rect(10, 25, 60, 30), 0.7)
	for _, i := range []*Inter{h1, stem, beam, h2} {
		g.AddVertex(i)
	}

	if got := g.Inters(KindHead); len(got) != 2 || got[0] != h1 || got[1] != h2 {
		t.Errorf("Inters(Head) = %v", got)
	}
	if got := g.Inters(KindStem, KindBeam); len(got) != 2 || got[0] != stem || got[1] != beam {
		t.Errorf("Inters(Stem, Beam) = %v", got)
	}

	tests := []struct {
		name  string
		r     image.Rectangle
		kinds []Kind
		want  int
	}{
		{"first head only", image.Rect(0, 0, 5, 5), []Kind{KindHead}, 1},
		{"all kinds near stem", image.Rect(8, 0, 12, 10), nil, 2},
		{"beam zone", image.Rect(30, 26, 40, 28), nil, 1},
		{"empty zone", image.Rect(100, 100, 110, 110), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IntersectedInters(tt.r, tt.kinds...); len(got) != tt.want {
				t.Errorf("IntersectedInters = %v, want %d inters", got, tt.want)
			}
		})
	}
}

func TestGraph_ConcurrentInsertion(t *testing.T) {
	g := NewGraph()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var prev *Inter
			for k := 0; k < 50; k++ {
				i := head(w*1000 + k*20)
				g.AddVertex(i)
				if prev != nil {
					g.InsertExclusion(prev, i, CauseIncompatible)
				}
				prev = i
			}
		}(w)
	}
	wg.Wait()

	if got := len(g.Inters()); got != 200 {
		t.Errorf("Inters() = %d, want 200", got)
	}
	if got := g.ExclusionCount(); got != 4*49 {
		t.Errorf("ExclusionCount = %d, want %d", got, 4*49)
	}
}

func TestCause_String(t *testing.T) {
	if CauseOverlap.String() != "OVERLAP" || CauseIncompatible.String() != "INCOMPATIBLE" {
		t.Errorf("Cause strings = %q, %q", CauseOverlap, CauseIncompatible)
	}
}
