package detection

import (
	"github.com/ironsheep/notehead-scan/internal/glyph"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/sheet"
)

// ExtractSpots turns a head-spot run table into spot glyphs, grouped by system.
//
// Each connected component becomes a glyph. A glyph is given to every system
// whose vertical span holds its centroid (systems may share the gutter
// between them) and whose abscissa range [Left, Right] holds the centroid
// abscissa. Assigned glyphs are tagged with glyph.GroupHeadSpot.
//
// Parameters:
//   - runs: Head-spot runs, typically from imaging.HeadSpots. May be nil.
//   - systems: Systems of the sheet.
//
// Returns:
//   - map[int][]*glyph.Glyph: Spot glyphs keyed by system id, sorted by ordinate.
//     Glyphs matching no system are dropped. An empty table yields an empty map.
func ExtractSpots(runs *imaging.RunTable, systems []*sheet.System) map[int][]*glyph.Glyph {
	out := make(map[int][]*glyph.Glyph)
	if runs.IsEmpty() {
		return out
	}

	for _, g := range glyph.Components(runs, 1) {
		c := g.Centroid()
		assigned := false
		for _, sys := range systems {
			if !sys.ContainsOrdinate(c.Y) || !sys.ContainsAbscissa(c.X) {
				continue
			}
			out[sys.ID] = append(out[sys.ID], g)
			assigned = true
		}
		if assigned {
			g.AddGroup(glyph.GroupHeadSpot)
		}
	}

	for _, list := range out {
		glyph.SortByOrdinate(list)
	}
	return out
}
