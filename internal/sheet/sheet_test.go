package sheet

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sig"
)

func fiveLineStaff(id int, top float64, interline float64) *Staff {
	var lines []*StaffLine
	for i := 0; i < 5; i++ {
		lines = append(lines, HorizontalLine(50, 450, top+float64(i)*interline))
	}
	return NewStaff(id, lines)
}

func TestStaffLine_YAt(t *testing.T) {
	line := NewStaffLine([]geom.PointF{{X: 200, Y: 110}, {X: 100, Y: 100}, {X: 300, Y: 110}})

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"left end held", 50, 100},
		{"first point", 100, 100},
		{"interpolated", 150, 105},
		{"flat segment", 250, 110},
		{"right end held", 400, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := line.PreciseYAt(tt.x); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PreciseYAt(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
	if got := line.YAt(125); got != 103 {
		t.Errorf("YAt(125) = %d, want 103", got)
	}
	if line.Left() != 100 || line.Right() != 300 {
		t.Errorf("Left/Right = %d/%d, want 100/300", line.Left(), line.Right())
	}
}

func TestStaffLine_Area(t *testing.T) {
	line := HorizontalLine(100, 200, 50)
	area := line.Area(-5, 5)

	// Bounds enclose the far edge pixels too.
	if got := area.Bounds(); got != image.Rect(100, 45, 201, 56) {
		t.Errorf("Bounds() = %v, want (100,45)-(201,56)", got)
	}
	if !area.Contains(geom.PointF{X: 150, Y: 52}) {
		t.Error("band should contain a point just below the line")
	}
	if area.Contains(geom.PointF{X: 150, Y: 60}) {
		t.Error("band should not contain a point beyond the offset")
	}

	// Offsets given in reverse order describe the same band.
	if line.Area(5, -5).Bounds() != area.Bounds() {
		t.Error("Area should not depend on offset order")
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger(geom.PointF{X: 130, Y: 40}, geom.PointF{X: 110, Y: 40})
	if l.Left() != 110 || l.Right() != 130 {
		t.Errorf("Left/Right = %d/%d, want 110/130", l.Left(), l.Right())
	}
	if !l.Covers(120) || l.Covers(140) {
		t.Error("Covers() mismatch")
	}
	if l.YAt(500) != 40 {
		t.Errorf("YAt(500) = %d, want 40", l.YAt(500))
	}
	if !l.Area(-2, 2).IntersectsRect(image.Rect(115, 39, 118, 41)) {
		t.Error("ledger band should intersect a box on the ledger")
	}
}

func TestStaff_Pitches(t *testing.T) {
	st := fiveLineStaff(1, 100, 20)

	wantLines := []int{-4, -2, 0, 2, 4}
	for i, want := range wantLines {
		if got := st.LinePitch(i); got != want {
			t.Errorf("LinePitch(%d) = %d, want %d", i, got, want)
		}
	}

	ledgers := map[int]int{-1: -6, -2: -8, 1: 6, 2: 8}
	for index, want := range ledgers {
		if got := st.LedgerPitch(index); got != want {
			t.Errorf("LedgerPitch(%d) = %d, want %d", index, got, want)
		}
	}

	single := NewStaff(2, []*StaffLine{HorizontalLine(0, 100, 50)})
	if single.LinePitch(0) != 0 || single.LedgerPitch(-1) != -2 {
		t.Errorf("one-line staff pitches: line=%d ledger=%d", single.LinePitch(0), single.LedgerPitch(-1))
	}
}

func TestStaff_LedgersAndHeads(t *testing.T) {
	st := fiveLineStaff(1, 100, 20)
	st.AddLedger(-1, NewLedger(geom.PointF{X: 300, Y: 80}, geom.PointF{X: 320, Y: 80}))
	st.AddLedger(-1, NewLedger(geom.PointF{X: 100, Y: 80}, geom.PointF{X: 120, Y: 80}))
	st.AddLedger(0, NewLedger(geom.PointF{X: 0, Y: 0}, geom.PointF{X: 1, Y: 0}))

	if got := st.Ledgers(-1); len(got) != 2 || got[0].Left() != 100 {
		t.Fatalf("Ledgers(-1) not sorted by abscissa: %v", got)
	}
	if st.LedgerAt(-1, 310) == nil || st.LedgerAt(-1, 200) != nil {
		t.Error("LedgerAt() mismatch")
	}
	if len(st.Ledgers(0)) != 0 {
		t.Error("index 0 is the staff itself and must be ignored")
	}

	h1 := sig.NewHead(shape.NoteheadBlack, image.Rect(0, 0, 5, 5), 0.8, 1, 0)
	h2 := sig.NewHead(shape.NoteheadVoid, image.Rect(9, 0, 14, 5), 0.8, 1, 0)
	st.AddHead(h1)
	st.AddHead(h2)
	st.RemoveHead(h1)
	if got := st.Heads(); len(got) != 1 || got[0] != h2 {
		t.Errorf("Heads() = %v, want [h2]", got)
	}
	if st.Left() != 50 || st.Right() != 450 {
		t.Errorf("Left/Right = %d/%d", st.Left(), st.Right())
	}
	if st.Interline(20) != 20 {
		t.Error("Interline should default to the sheet one")
	}
	st.SpecificInterline = 14
	if st.Interline(20) != 14 {
		t.Error("Interline should honor the specific value")
	}
}

func TestSheet_SystemLookup(t *testing.T) {
	sh := New(Scale{Interline: 20, LineThickness: 2, MaxStem: 3}, "synthetic")
	if sh.Calibration == nil {
		t.Fatal("sheet should own a calibration")
	}
	sys1 := &System{ID: 1, Left: 50, Right: 450, Top: 40, Bottom: 260, Staves: []*Staff{fiveLineStaff(1, 100, 20)}}
	sys2 := &System{ID: 2, Left: 50, Right: 450, Top: 240, Bottom: 500}
	sh.Systems = []*System{sys1, sys2}

	if !sys1.ContainsOrdinate(250) || !sys2.ContainsOrdinate(250) {
		t.Error("gutter ordinate should belong to both systems")
	}
	if !sys1.ContainsOrdinate(100) || sys2.ContainsOrdinate(100) {
		t.Error("ordinate 100 should belong to the first system only")
	}
	if !sys1.ContainsAbscissa(450) || sys1.ContainsAbscissa(451) {
		t.Error("ContainsAbscissa bounds are inclusive")
	}

	if _, err := sys1.Staff(1); err != nil {
		t.Errorf("Staff(1) error = %v", err)
	}
	if _, err := sys1.Staff(7); !errors.Is(err, ErrNoStaff) {
		t.Errorf("Staff(7) error = %v, want ErrNoStaff", err)
	}

	if got := sh.Scale.ToPixels(0.25); got != 5 {
		t.Errorf("ToPixels(0.25) = %d, want 5", got)
	}
}
