package sig

import (
	"image"
	"strings"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/shape"
)

func TestNewInter_ClampsGrade(t *testing.T) {
	tests := []struct {
		grade float64
		want  float64
	}{
		{-0.5, 0},
		{0.4, 0.4},
		{1.7, MaxGrade},
	}
	for _, tt := range tests {
		if got := NewInter(KindStem, image.Rect(0, 0, 1, 10), tt.grade).Grade(); got != tt.want {
			t.Errorf("NewInter grade %v: got %v, want %v", tt.grade, got, tt.want)
		}
	}
}

func TestNewHead(t *testing.T) {
	box := image.Rect(10, 20, 24, 32)
	h := NewHead(shape.NoteheadVoid, box, 0.6, 3, -2)

	if !h.IsHead() || h.Kind() != KindHead {
		t.Errorf("kind = %v, want Head", h.Kind())
	}
	if h.Shape() != shape.NoteheadVoid || h.StaffID() != 3 || h.Pitch() != -2 {
		t.Errorf("head = %v staff %d pitch %d", h.Shape(), h.StaffID(), h.Pitch())
	}
	if h.Bounds() != box || h.Width() != 14 {
		t.Errorf("bounds = %v width %d", h.Bounds(), h.Width())
	}
	if !h.IsGood() {
		t.Error("grade 0.6 should be good")
	}
	if h.ID() != 0 {
		t.Errorf("id before insertion = %d, want 0", h.ID())
	}
	if got := h.Area().Bounds(); got != image.Rect(10, 20, 25, 33) {
		t.Errorf("default area bounds = %v", got)
	}
	if s := h.String(); !strings.Contains(s, "NOTEHEAD_VOID") || !strings.Contains(s, "p-2") {
		t.Errorf("String() = %q", s)
	}
}

func TestInter_Boost(t *testing.T) {
	h := NewHead(shape.WholeNote, image.Rect(0, 0, 10, 8), 0.5, 1, 0)

	if !h.Boost(0.25) {
		t.Fatal("first boost should apply")
	}
	if h.Grade() != 0.75 || !h.IsBoosted() {
		t.Errorf("grade after boost = %v, boosted %v", h.Grade(), h.IsBoosted())
	}
	if h.Boost(0.25) {
		t.Error("second boost should be refused")
	}
	if h.Grade() != 0.75 {
		t.Errorf("grade after refused boost = %v, want 0.75", h.Grade())
	}

	top := NewHead(shape.WholeNote, image.Rect(0, 0, 10, 8), 0.9, 1, 0)
	top.Boost(0.5)
	if top.Grade() != MaxGrade {
		t.Errorf("boosted grade = %v, want capped at %v", top.Grade(), MaxGrade)
	}
}

func TestInter_ContextualGrade(t *testing.T) {
	h := NewHead(shape.NoteheadBlack, image.Rect(0, 0, 10, 8), 0.4, 1, 0)
	if h.ContextualGrade() != 0.4 {
		t.Errorf("default contextual grade = %v, want the intrinsic 0.4", h.ContextualGrade())
	}
	h.SetContextualGrade(2)
	if h.ContextualGrade() != MaxGrade || h.Grade() != 0.4 {
		t.Errorf("contextual %v intrinsic %v", h.ContextualGrade(), h.Grade())
	}
}

func TestInter_Attributes(t *testing.T) {
	h := NewHead(shape.NoteheadBlack, image.Rect(0, 0, 10, 8), 0.4, 1, 0)
	if h.IsFrozen() || h.Group() != 0 || h.Glyph() != nil {
		t.Fatal("new head should be unfrozen, ungrouped and glyph-less")
	}
	h.Freeze()
	h.SetGroup(4)
	if !h.IsFrozen() || h.Group() != 4 {
		t.Errorf("frozen %v group %d", h.IsFrozen(), h.Group())
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindHead, "Head"},
		{KindBarline, "Barline"},
		{KindConnector, "BarConnector"},
		{KindBeam, "Beam"},
		{KindStem, "Stem"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
