// Package imaging provides the raster layer of head detection: page loading,
// binarization, distance transform, run tables, head-spot extraction and
// annotated overlays.
//
// All operations use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward. Rectangles follow
// image.Rectangle: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. BinaryImage, DistanceTable
// and RunTable are read-only once built and may be shared between goroutines.
//
// # Distance Transform
//
// DistanceTable holds a chamfer 3-4 distance from every pixel to the nearest
// ink pixel. Value returns it in pixels; RawValue returns the chamfer units
// (3 per orthogonal step).
//
// # Performance Considerations
//
// For repeated detections on the same page, use ImageCache to avoid redundant
// disk reads. Large pages may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
