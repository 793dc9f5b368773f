package detection

import (
	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/sheet"
)

// lineAdapter is the reference line of a scanner: a staff line or a ledger.
type lineAdapter interface {
	// area returns the band between the signed vertical offsets top and bottom.
	area(top, bottom float64) *geom.Area
	left() int
	right() int
	preciseYAt(x float64) float64
	yAt(x int) int
}

type staffLineAdapter struct {
	line *sheet.StaffLine
}

func (a staffLineAdapter) area(top, bottom float64) *geom.Area { return a.line.Area(top, bottom) }
func (a staffLineAdapter) left() int                          { return a.line.Left() }
func (a staffLineAdapter) right() int                         { return a.line.Right() }
func (a staffLineAdapter) preciseYAt(x float64) float64       { return a.line.PreciseYAt(x) }
func (a staffLineAdapter) yAt(x int) int                      { return a.line.YAt(x) }

type ledgerAdapter struct {
	ledger *sheet.Ledger
}

func (a ledgerAdapter) area(top, bottom float64) *geom.Area { return a.ledger.Area(top, bottom) }
func (a ledgerAdapter) left() int                          { return a.ledger.Left() }
func (a ledgerAdapter) right() int                         { return a.ledger.Right() }
func (a ledgerAdapter) preciseYAt(x float64) float64       { return a.ledger.PreciseYAt(x) }
func (a ledgerAdapter) yAt(x int) int                      { return a.ledger.YAt(x) }

// secondary resolves the reference on the far side of a space at abscissa x.
// It returns nil when there is none at x.
type secondary func(x int) lineAdapter

// fixedSecondary always returns the same line.
func fixedSecondary(l lineAdapter) secondary {
	return func(int) lineAdapter { return l }
}

// ledgerSecondary returns the ledger of staff at index covering x, if any.
func ledgerSecondary(staff *sheet.Staff, index int) secondary {
	return func(x int) lineAdapter {
		if l := staff.LedgerAt(index, x); l != nil {
			return ledgerAdapter{ledger: l}
		}
		return nil
	}
}
