package imaging

import "image"

// Run is a horizontal sequence of ink pixels on one row.
type Run struct {
	Start  int // First abscissa (inclusive)
	Length int // Number of pixels
}

// Stop returns the last abscissa of the run (inclusive).
func (r Run) Stop() int {
	return r.Start + r.Length - 1
}

// RunTable is a bitmap encoded as horizontal runs, one sequence per row.
// Rows are indexed from Bounds.Min.Y.
type RunTable struct {
	Bounds image.Rectangle
	Rows   [][]Run
}

// NewRunTable encodes the ink of bin restricted to r.
func NewRunTable(bin *BinaryImage, r image.Rectangle) *RunTable {
	r = r.Intersect(bin.Bounds())
	rt := &RunTable{Bounds: r, Rows: make([][]Run, r.Dy())}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		var row []Run
		start := -1
		for x := r.Min.X; x < r.Max.X; x++ {
			if bin.IsFore(x, y) {
				if start < 0 {
					start = x
				}
				continue
			}
			if start >= 0 {
				row = append(row, Run{Start: start, Length: x - start})
				start = -1
			}
		}
		if start >= 0 {
			row = append(row, Run{Start: start, Length: r.Max.X - start})
		}
		rt.Rows[y-r.Min.Y] = row
	}
	return rt
}

// RunCount returns the total number of runs.
func (rt *RunTable) RunCount() int {
	n := 0
	for _, row := range rt.Rows {
		n += len(row)
	}
	return n
}

// IsEmpty reports whether the table holds no run.
func (rt *RunTable) IsEmpty() bool {
	return rt == nil || rt.RunCount() == 0
}
