package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// DefaultThreshold is the gray level separating ink from paper.
// Pixels darker than this value are foreground.
const DefaultThreshold = 140

// BinaryImage is a read-only bitmap of a page where set bits are ink.
//
// Rows are packed into 64-bit words. Queries outside the image report
// background, so callers may probe template boxes that cross page borders.
type BinaryImage struct {
	width   int
	height  int
	rowSize int
	bits    []uint64
}

// NewBinaryImage creates an empty (all background) bitmap.
func NewBinaryImage(width, height int) *BinaryImage {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	rowSize := (width + 63) / 64
	return &BinaryImage{
		width:   width,
		height:  height,
		rowSize: rowSize,
		bits:    make([]uint64, rowSize*height),
	}
}

// Binarize converts any image into a bitmap.
//
// Parameters:
//   - img: Source page, color or grayscale.
//   - threshold: Gray level (0-255). Pixels strictly darker are foreground.
//
// The page is first reduced to luminance, then thresholded. The resulting
// bitmap keeps the source dimensions but is re-based at (0, 0).
func Binarize(img image.Image, threshold uint8) *BinaryImage {
	gray := imaging.Grayscale(img)
	mask := segment.Threshold(gray, threshold)
	return fromGrayMask(mask)
}

// fromGrayMask reads a thresholded mask where black (0) marks ink.
func fromGrayMask(mask *image.Gray) *BinaryImage {
	b := mask.Bounds()
	bin := NewBinaryImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.GrayAt(x+b.Min.X, y+b.Min.Y).Y == 0 {
				bin.Set(x, y)
			}
		}
	}
	return bin
}

// Width returns the bitmap width in pixels.
func (b *BinaryImage) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *BinaryImage) Height() int { return b.height }

// Bounds returns the bitmap rectangle, anchored at (0, 0).
func (b *BinaryImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Contains reports whether (x, y) lies inside the bitmap.
func (b *BinaryImage) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// IsFore reports whether (x, y) is ink. Outside pixels are background.
func (b *BinaryImage) IsFore(x, y int) bool {
	if !b.Contains(x, y) {
		return false
	}
	return b.bits[y*b.rowSize+x/64]&(1<<uint(x%64)) != 0
}

// Set marks (x, y) as ink. Outside pixels are ignored.
func (b *BinaryImage) Set(x, y int) {
	if !b.Contains(x, y) {
		return
	}
	b.bits[y*b.rowSize+x/64] |= 1 << uint(x%64)
}

// Clear marks (x, y) as background. Outside pixels are ignored.
func (b *BinaryImage) Clear(x, y int) {
	if !b.Contains(x, y) {
		return
	}
	b.bits[y*b.rowSize+x/64] &^= 1 << uint(x%64)
}

// FillRect marks every pixel of r as ink.
func (b *BinaryImage) FillRect(r image.Rectangle) {
	r = r.Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y)
		}
	}
}

// ForeCount returns the number of ink pixels inside r.
func (b *BinaryImage) ForeCount(r image.Rectangle) int {
	r = r.Intersect(b.Bounds())
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if b.IsFore(x, y) {
				count++
			}
		}
	}
	return count
}

// ToImage renders the bitmap as black ink on white paper.
func (b *BinaryImage) ToImage() *image.Gray {
	out := image.NewGray(b.Bounds())
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.IsFore(x, y) {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
