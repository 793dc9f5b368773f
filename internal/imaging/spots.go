package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// HeadSpots produces the run table of "head spots": ink blobs thick enough
// to survive a morphological opening, which removes staff lines, stems and
// thin strokes while keeping filled note heads and beams.
//
// Parameters:
//   - img: Source page.
//   - radius: Opening radius in pixels. A value around a quarter of the
//     interline keeps filled heads and drops lines.
//   - threshold: Gray level separating ink from paper.
//
// # Algorithm
//
//  1. Grayscale conversion
//  2. Dilation (local maximum) erases dark strokes thinner than 2*radius
//  3. Erosion (local minimum) restores the remaining dark blobs
//  4. Threshold into ink runs
func HeadSpots(img image.Image, radius float64, threshold uint8) *RunTable {
	gray := imaging.Grayscale(img)
	opened := effect.Erode(effect.Dilate(gray, radius), radius)
	bin := fromGrayMask(segment.Threshold(opened, threshold))
	return NewRunTable(bin, bin.Bounds())
}
