package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/sheet"
)

func TestExtractSpots(t *testing.T) {
	bin := imaging.NewBinaryImage(400, 400)
	bin.FillRect(image.Rect(50, 50, 60, 58))     // system 1
	bin.FillRect(image.Rect(100, 196, 110, 204)) // gutter shared by both systems
	bin.FillRect(image.Rect(80, 300, 90, 308))   // system 2
	bin.FillRect(image.Rect(380, 300, 390, 308)) // right of system 2
	bin.FillRect(image.Rect(150, 20, 160, 28))   // system 1, above the first spot

	systems := []*sheet.System{
		{ID: 1, Left: 10, Right: 390, Top: 0, Bottom: 210},
		{ID: 2, Left: 10, Right: 350, Top: 190, Bottom: 399},
	}
	spots := ExtractSpots(imaging.NewRunTable(bin, bin.Bounds()), systems)

	if n := len(spots[1]); n != 3 {
		t.Errorf("system 1 has %d spots, want 3", n)
	}
	if n := len(spots[2]); n != 2 {
		t.Errorf("system 2 has %d spots, want 2", n)
	}
	for id, list := range spots {
		for i, g := range list {
			if !g.HasGroup(glyph.GroupHeadSpot) {
				t.Errorf("system %d spot %d not tagged", id, i)
			}
			if i > 0 && list[i-1].Bounds().Min.Y > g.Bounds().Min.Y {
				t.Errorf("system %d spots not sorted by ordinate", id)
			}
		}
	}
	if first := spots[1][0].Bounds(); first.Min.Y != 20 {
		t.Errorf("first spot of system 1 at %v, want top at 20", first)
	}
}

func TestExtractSpots_Empty(t *testing.T) {
	systems := []*sheet.System{{ID: 1, Left: 0, Right: 100, Top: 0, Bottom: 100}}
	if got := ExtractSpots(nil, systems); len(got) != 0 {
		t.Errorf("nil table gave %d systems", len(got))
	}
	bin := imaging.NewBinaryImage(50, 50)
	if got := ExtractSpots(imaging.NewRunTable(bin, bin.Bounds()), systems); len(got) != 0 {
		t.Errorf("blank table gave %d systems", len(got))
	}
}
