package detection

import (
	"image"
	"strings"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

func TestPerf_AddAndString(t *testing.T) {
	p := Perf{Evals: 1200, Abandons: 3}
	p.Add(Perf{Evals: 345, SeedHeads: 2, Duplicates: 1})

	if p.Evals != 1545 || p.SeedHeads != 2 || p.Duplicates != 1 || p.Abandons != 3 {
		t.Errorf("unexpected sums: %+v", p)
	}
	s := p.String()
	for _, want := range []string{"evals=1,545", "abandons=3", "seedHeads=2", "duplicates=1", "headsDefeated=0"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := sig.NewHead(shape.NoteheadBlack, image.Rect(10, 10, 24, 22), 0.9, 1, 0)
	b := sig.NewHead(shape.NoteheadVoid, image.Rect(40, 10, 54, 22), 0.8, 1, 0)
	c := sig.NewHead(shape.NoteheadVoid, image.Rect(40, 10, 54, 22), 0.7, 1, 0)

	if Fingerprint([]*sig.Inter{a, b}) != Fingerprint([]*sig.Inter{b, a}) {
		t.Error("fingerprint depends on head order")
	}
	if Fingerprint([]*sig.Inter{a, b}) == Fingerprint([]*sig.Inter{a, c}) {
		t.Error("fingerprint ignores grades")
	}
	if Fingerprint(nil) != Fingerprint([]*sig.Inter{}) {
		t.Error("empty sets differ")
	}
}
