package template

import (
	"image"
	"math"

	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/shape"
)

// smallRatio scales cue and grace heads relative to standard heads.
const smallRatio = 0.67

// Synthesize rasterizes a head shape for the given interline.
//
// The outlines approximate common engraving fonts: an oval about 1.2
// interline wide and one interline high for quarter and half heads, a wider
// oval with a slanted hole for whole notes, a whole note flanked by double
// bars for breves, and cross and diamond outlines for percussion.
func Synthesize(s shape.Shape, interline int) *Template {
	h := interline
	if s.IsSmall() {
		h = int(math.Round(float64(interline) * smallRatio))
	}
	h = max(h, 5)
	margin := max(2, h/6)

	var mask *imaging.BinaryImage
	var hole image.Rectangle

	switch s {
	case shape.NoteheadBlack, shape.NoteheadBlackSmall:
		w := ovalWidth(h)
		mask = ellipse(w, h, 0, 0)
		hole = ovalHole(w, h)
	case shape.NoteheadVoid, shape.NoteheadVoidSmall:
		w := ovalWidth(h)
		tx, ty := ringThickness(w, h)
		mask = ellipse(w, h, tx, ty)
		hole = ovalHole(w, h)
	case shape.WholeNote, shape.WholeNoteSmall:
		w := int(math.Round(float64(h) * 1.65))
		mask = ellipse(w, h, max(2, w/4), max(1, h/5))
		hole = ovalHole(w, h)
	case shape.BreveNote:
		w := int(math.Round(float64(h) * 1.65))
		bar := max(1, h/8)
		gap := max(1, h/8)
		full := w + 2*(2*bar+gap)
		tall := int(math.Round(float64(h) * 1.5))
		mask = imaging.NewBinaryImage(full, tall)
		inner := ellipse(w, h, max(2, w/4), max(1, h/5))
		dy := (tall - h) / 2
		dx := 2*bar + gap
		copyMask(mask, inner, dx, dy)
		for _, x0 := range []int{0, bar + gap, full - 2*bar - gap, full - bar} {
			mask.FillRect(image.Rect(x0, 0, x0+bar, tall))
		}
		hole = ovalHole(w, h).Add(image.Point{X: dx, Y: dy})
	case shape.NoteheadCross:
		mask = cross(ovalWidth(h), h, max(2, h/5))
	case shape.NoteheadDiamondBlack:
		w := ovalWidth(h)
		mask = diamond(w, h, 0)
		hole = ovalHole(w, h)
	case shape.NoteheadDiamondVoid:
		w := ovalWidth(h)
		mask = diamond(w, h, max(2, h/5))
		hole = ovalHole(w, h)
	default:
		return nil
	}

	return New(s, mask, hole, margin)
}

func ovalWidth(h int) int {
	return int(math.Round(float64(h) * 1.2))
}

func ringThickness(w, h int) (int, int) {
	return max(2, w/5), max(1, h/6)
}

// ovalHole is the central region left white by a hollow oval.
func ovalHole(w, h int) image.Rectangle {
	tx, ty := ringThickness(w, h)
	hw := max(1, (w-2*tx)/2)
	hh := max(1, (h-2*ty)/2)
	cx, cy := w/2, h/2
	return image.Rect(cx-hw/2-hw%2, cy-hh/2-hh%2, cx+hw/2+1, cy+hh/2+1)
}

// ellipse rasterizes an ellipse of the given box, hollowed by an inner
// ellipse thinner by (tx, ty) on each side. Zero thickness gives a filled oval.
func ellipse(w, h, tx, ty int) *imaging.BinaryImage {
	m := imaging.NewBinaryImage(w, h)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	rx, ry := float64(w)/2, float64(h)/2
	irx, iry := rx-float64(tx), ry-float64(ty)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx/(rx*rx)+dy*dy/(ry*ry) > 1 {
				continue
			}
			if tx > 0 && ty > 0 && irx > 0 && iry > 0 &&
				dx*dx/(irx*irx)+dy*dy/(iry*iry) < 1 {
				continue
			}
			m.Set(x, y)
		}
	}
	return m
}

func cross(w, h, thickness int) *imaging.BinaryImage {
	m := imaging.NewBinaryImage(w, h)
	half := float64(thickness) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// distance to both diagonals, in x units
			t := float64(y) * float64(w-1) / float64(max(1, h-1))
			if math.Abs(float64(x)-t) <= half || math.Abs(float64(w-1-x)-t) <= half {
				m.Set(x, y)
			}
		}
	}
	return m
}

func diamond(w, h, thickness int) *imaging.BinaryImage {
	m := imaging.NewBinaryImage(w, h)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	rx, ry := float64(w)/2, float64(h)/2
	inner := 1.0
	if thickness > 0 {
		inner = 1 - float64(thickness)/ry
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Abs(float64(x)-cx)/rx + math.Abs(float64(y)-cy)/ry
			if d > 1 {
				continue
			}
			if thickness > 0 && d < inner {
				continue
			}
			m.Set(x, y)
		}
	}
	return m
}

func copyMask(dst, src *imaging.BinaryImage, dx, dy int) {
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			if src.IsFore(x, y) {
				dst.Set(x+dx, y+dy)
			}
		}
	}
}
