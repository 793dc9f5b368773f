package glyph

import (
	"image"

	"github.com/ironsheep/notehead-scan/internal/imaging"
)

// runRef locates one run inside a run table.
type runRef struct {
	row, index int
}

// Components groups the runs of a table into 8-connected glyphs.
//
// Two runs on adjacent rows belong to the same glyph when their abscissa
// ranges touch, diagonals included. Glyph ids start at firstID and follow
// the order in which components are first met (top row first, then left to
// right), so the output is deterministic.
//
// # Algorithm
//
// Breadth-first traversal over runs rather than pixels: each run is visited
// once and only the runs of the previous and next rows are probed.
func Components(rt *imaging.RunTable, firstID int) []*Glyph {
	if rt.IsEmpty() {
		return nil
	}

	visited := make([][]bool, len(rt.Rows))
	for i, row := range rt.Rows {
		visited[i] = make([]bool, len(row))
	}

	var glyphs []*Glyph
	id := firstID
	for r, row := range rt.Rows {
		for i := range row {
			if visited[r][i] {
				continue
			}
			visited[r][i] = true
			queue := []runRef{{row: r, index: i}}
			var pixels []image.Point

			for len(queue) > 0 {
				ref := queue[0]
				queue = queue[1:]
				run := rt.Rows[ref.row][ref.index]
				y := rt.Bounds.Min.Y + ref.row
				for x := run.Start; x <= run.Stop(); x++ {
					pixels = append(pixels, image.Point{X: x, Y: y})
				}

				for _, nr := range [2]int{ref.row - 1, ref.row + 1} {
					if nr < 0 || nr >= len(rt.Rows) {
						continue
					}
					for ni, other := range rt.Rows[nr] {
						if visited[nr][ni] {
							continue
						}
						if other.Start <= run.Stop()+1 && other.Stop() >= run.Start-1 {
							visited[nr][ni] = true
							queue = append(queue, runRef{row: nr, index: ni})
						}
					}
				}
			}

			glyphs = append(glyphs, New(id, pixels))
			id++
		}
	}
	return glyphs
}
