package detection

import (
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/ironsheep/notehead-scan/internal/sig"
)

// Fingerprint digests a set of heads by shape, box and grade. The result
// does not depend on the order of heads, so two runs over the same inputs
// can be compared with a single value.
func Fingerprint(heads []*sig.Inter) uint64 {
	keys := make([]string, 0, len(heads))
	for _, h := range heads {
		b := h.Bounds()
		keys = append(keys, fmt.Sprintf("%s|%d,%d,%d,%d|%.6f",
			h.Shape(), b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, h.Grade()))
	}
	sort.Strings(keys)

	var buf []byte
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, '\n')
	}
	return xxh3.Hash(buf)
}
