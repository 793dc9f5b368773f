// Package template provides scale-sized note-head templates and their
// matching against a page distance table.
//
// A template is a set of key points placed relative to the head bounding box.
// Foreground key points expect ink (distance zero); background key points,
// taken from a thin ring around the head and from its interior hole, expect
// the distance they have to the nearest template ink. Matching a template at a
// pivot pixel averages how far the page distances deviate from these
// expectations: zero is a perfect fit.
package template

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/shape"
)

// Anchor names a reference point of a template used to align it on a pivot pixel.
type Anchor int

const (
	// AnchorTopLeft is the top-left corner of the bounding box.
	AnchorTopLeft Anchor = iota
	// AnchorMiddleLeft is the middle of the left border.
	AnchorMiddleLeft
	// AnchorLeftStem is where a stem on the left side of the head attaches.
	AnchorLeftStem
	// AnchorRightStem is where a stem on the right side of the head attaches.
	AnchorRightStem
	// AnchorCenter is the box center.
	AnchorCenter
)

func (a Anchor) String() string {
	switch a {
	case AnchorTopLeft:
		return "TOP_LEFT"
	case AnchorMiddleLeft:
		return "MIDDLE_LEFT"
	case AnchorLeftStem:
		return "LEFT_STEM"
	case AnchorRightStem:
		return "RIGHT_STEM"
	case AnchorCenter:
		return "CENTER"
	default:
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
}

// KeyPoint is one sampled location of a template, relative to the box top-left.
type KeyPoint struct {
	DX, DY int
	// Expected is the distance to template ink, in pixels. Zero for foreground.
	Expected float64
	Fore     bool
}

// Template is an immutable head pattern for one shape at one size.
type Template struct {
	shape   shape.Shape
	width   int
	height  int
	keys    []KeyPoint
	fore    []image.Point
	hole    image.Rectangle
	anchors map[Anchor]image.Point
}

// New builds a template from a foreground mask.
//
// Parameters:
//   - s: Shape represented.
//   - mask: Template ink; its bounds define the head box.
//   - hole: Interior region (mask coordinates) used for hollow-head tests.
//     May be empty.
//   - margin: Width in pixels of the background ring sampled around the head.
func New(s shape.Shape, mask *imaging.BinaryImage, hole image.Rectangle, margin int) *Template {
	w, h := mask.Width(), mask.Height()
	t := &Template{
		shape:  s,
		width:  w,
		height: h,
		hole:   hole,
		anchors: map[Anchor]image.Point{
			AnchorTopLeft:    {X: 0, Y: 0},
			AnchorMiddleLeft: {X: 0, Y: h / 2},
			AnchorLeftStem:   {X: 0, Y: h / 2},
			AnchorRightStem:  {X: w - 1, Y: h / 2},
			AnchorCenter:     {X: w / 2, Y: h / 2},
		},
	}

	// Expected distances come from the transform of the padded mask.
	padded := imaging.NewBinaryImage(w+2*margin, h+2*margin)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.IsFore(x, y) {
				padded.Set(x+margin, y+margin)
			}
		}
	}
	dt := imaging.NewDistanceTable(padded)
	maxExpected := float64(margin)

	for y := 0; y < padded.Height(); y++ {
		for x := 0; x < padded.Width(); x++ {
			dx, dy := x-margin, y-margin
			if padded.IsFore(x, y) {
				t.keys = append(t.keys, KeyPoint{DX: dx, DY: dy, Fore: true})
				t.fore = append(t.fore, image.Point{X: dx, Y: dy})
				continue
			}
			d := dt.Value(x, y)
			if d <= maxExpected {
				t.keys = append(t.keys, KeyPoint{DX: dx, DY: dy, Expected: d})
			}
		}
	}
	return t
}

// Shape returns the represented shape.
func (t *Template) Shape() shape.Shape { return t.shape }

// Width returns the head box width.
func (t *Template) Width() int { return t.width }

// Height returns the head box height.
func (t *Template) Height() int { return t.height }

// KeyPoints returns the sampled points. The slice must not be modified.
func (t *Template) KeyPoints() []KeyPoint { return t.keys }

// Offset returns the anchor position relative to the box top-left.
func (t *Template) Offset(anchor Anchor) image.Point {
	return t.anchors[anchor]
}

// BoundsAt returns the head box when anchor is placed on pixel (x, y).
func (t *Template) BoundsAt(x, y int, anchor Anchor) image.Rectangle {
	off := t.anchors[anchor]
	x0, y0 := x-off.X, y-off.Y
	return image.Rect(x0, y0, x0+t.width, y0+t.height)
}

// HoleAt returns the interior region when anchor is placed on (x, y).
// It is empty for templates without a hole region.
func (t *Template) HoleAt(x, y int, anchor Anchor) image.Rectangle {
	if t.hole.Empty() {
		return image.Rectangle{}
	}
	off := t.anchors[anchor]
	return t.hole.Add(image.Point{X: x - off.X, Y: y - off.Y})
}

// ForeAt returns the absolute positions of the template ink when anchor is
// placed on (x, y).
func (t *Template) ForeAt(x, y int, anchor Anchor) []image.Point {
	off := t.anchors[anchor]
	pts := make([]image.Point, len(t.fore))
	for i, p := range t.fore {
		pts[i] = image.Point{X: p.X + x - off.X, Y: p.Y + y - off.Y}
	}
	return pts
}

// Evaluate matches the template with anchor on (x, y) against a distance table.
//
// Returns the mean deviation in pixels (lower is better) and true, or false
// when a key point falls outside the table.
//
// Foreground points cost the page distance found under them. Background
// points cost only when page ink is closer than expected; ink farther away
// than the template predicts is not penalized, since the foreground points
// already account for missing ink.
func (t *Template) Evaluate(x, y int, anchor Anchor, dt *imaging.DistanceTable) (float64, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	off := t.anchors[anchor]
	x0, y0 := x-off.X, y-off.Y
	total := 0.0
	for _, k := range t.keys {
		px, py := x0+k.DX, y0+k.DY
		if !dt.Contains(px, py) {
			return 0, false
		}
		actual := dt.Value(px, py)
		if k.Fore {
			total += actual
		} else {
			total += math.Max(0, k.Expected-actual)
		}
	}
	return total / float64(len(t.keys)), true
}
