// Package detection locates note heads in a binarized sheet-music page.
//
// Staff lines, ledgers, bar lines, beams and stem seeds are found upstream;
// this package turns the remaining ink into scored head interpretations
// inserted in the interpretation graph.
//
// # Components
//
//   - ExtractSpots: connected components of the head-spot image, assigned to
//     systems. Spots tell where filled heads are worth searching.
//   - Engine: per-system head detection (BuildHeads).
//   - Fingerprint: order-independent digest of a head set.
//
// # Search Strategy
//
// Each staff is cut into scanners, one per pitch position: on every line,
// in every space, above the first line, below the last one, and on and
// beyond every ledger. A scanner runs two passes:
//
//  1. Seed pass: every stem seed near the position is tried as the left and
//     the right stem of a head. The horizontal search is centered on the
//     seed offset calibrated for the (shape, side) pair, if any.
//  2. Range pass: every abscissa of the reference line past the staff header
//     is tried as the left edge of a head. Filled shapes are only tried near
//     a head spot, and abscissae with no ink within template reach are
//     skipped.
//
// Vertical offsets follow a zig-zag around the theoretical ordinate:
// 0, +1, -1, +2, -2, ... on a line or between two references, and
// 0, +d, -d, +2d, +3d, ... in an open space beyond the last reference,
// where d points away from it.
//
// # Grades
//
// A template evaluation yields the mean deviation, in pixels, between the
// page distance table and the template expectations. It is turned into a
// grade with 1 - distance/maxDistanceHigh; matches beyond maxDistanceLow are
// not kept. Distance limits are configured as interline fractions. The
// default limits leave accepted grades well below sig.GoodGrade, so only
// close fits feed the seed offset tally, and a weak stem-less match is
// dropped when even its boosted grade stays under the minimum contextual
// grade.
//
// # Conflict Resolution
//
// Range candidates are aggregated by horizontal center and dropped when a
// seed head already explains the place. Then, per staff, duplicates (same
// pitch, high overlap) are removed from the graph and remaining overlaps
// are linked by exclusion relations, leaving the final choice to later
// stages.
//
// # Concurrency
//
// An Engine handles one system and is not safe for concurrent use. Distinct
// systems may run in parallel with distinct engines: the graph locks its own
// updates, the calibration is only read during a run, and each engine keeps
// its observations in a private Tally folded by the caller once all engines
// are done.
package detection
