package detection

import (
	"math"
	"reflect"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/geom"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
	"github.com/ironsheep/notehead-scan/internal/template"
)

func TestZigzag(t *testing.T) {
	tests := []struct {
		limit int
		want  []int
	}{
		{0, []int{0}},
		{1, []int{0, 1, -1}},
		{3, []int{0, 1, -1, 2, -2, 3, -3}},
	}
	for _, tt := range tests {
		if got := zigzag(tt.limit); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("zigzag(%d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func TestOpenPattern(t *testing.T) {
	tests := []struct {
		name       string
		limit, dir int
		want       []int
	}{
		{"below", 4, 1, []int{0, 1, -1, 2, 3, 4}},
		{"above", 3, -1, []int{0, -1, 1, -2, -3}},
		{"no shift", 0, 1, []int{0}},
		{"on line", 2, 0, []int{0, 1, -1, 2, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openPattern(tt.limit, tt.dir); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("openPattern(%d, %d) = %v, want %v", tt.limit, tt.dir, got, tt.want)
			}
		})
	}
}

func TestStaffScale(t *testing.T) {
	sc := newStaffScale(20, 5, config.DefaultHeads())
	if sc.maxShift != 4 || sc.maxOpenShift != 8 {
		t.Errorf("shifts = %d/%d, want 4/8", sc.maxShift, sc.maxOpenShift)
	}
	if math.Abs(sc.maxDistanceLow-0.5) > 1e-9 || math.Abs(sc.maxDistanceHigh-0.6) > 1e-9 {
		t.Errorf("distance limits = %v/%v, want 0.5/0.6", sc.maxDistanceLow, sc.maxDistanceHigh)
	}

	tests := []struct {
		dist, want float64
	}{
		{0, 1},
		{0.3, 0.5},
		{0.6, 0},
		{3, 0},
	}
	for _, tt := range tests {
		if got := sc.grade(tt.dist); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("grade(%v) = %v, want %v", tt.dist, got, tt.want)
		}
	}
	if g := sc.grade(sc.maxDistanceLow); g >= sig.GoodGrade {
		t.Errorf("grade at the acceptance limit = %v, want below %v", g, sig.GoodGrade)
	}
}

func TestStaffScale_StemShiftIsOdd(t *testing.T) {
	tests := []struct {
		maxStem int
		want    int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 3},
		{4, 3},
		{5, 3},
		{6, 3},
		{7, 5},
	}
	for _, tt := range tests {
		if got := newStaffScale(12, tt.maxStem, config.DefaultHeads()).stemShift; got != tt.want {
			t.Errorf("stemShift(maxStem=%d) = %d, want %d", tt.maxStem, got, tt.want)
		}
	}
}

func TestScanner_TheoreticalY(t *testing.T) {
	p := newTestPage()
	staff := p.staff
	staff.AddLedger(-1, sheet.NewLedger(geom.PointF{X: 100, Y: 164}, geom.PointF{X: 130, Y: 164}))
	sc := newStaffScale(testInterline, 3, config.DefaultHeads())

	top := staffLineAdapter{line: staff.Lines[0]}
	tests := []struct {
		name     string
		line     lineAdapter
		other    secondary
		dir      int
		x        int
		wantY    float64
		wantOpen bool
	}{
		{"on line", top, nil, 0, 200, 176, false},
		{"space between lines", staffLineAdapter{line: staff.Lines[1]}, fixedSecondary(top), -1, 200, 182, false},
		{"space under a ledger", top, ledgerSecondary(staff, -1), -1, 110, 170, false},
		{"open space past the ledger", top, ledgerSecondary(staff, -1), -1, 200, 170, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScanner(scannerSpec{staff: staff, line: tt.line, other: tt.other, dir: tt.dir, scale: sc, params: config.DefaultHeads()})
			y, open := s.theoreticalY(tt.x)
			if math.Abs(y-tt.wantY) > 1e-9 || open != tt.wantOpen {
				t.Errorf("theoreticalY(%d) = %v, %v; want %v, %v", tt.x, y, open, tt.wantY, tt.wantOpen)
			}
		})
	}
}

func TestBuildScanners_Positions(t *testing.T) {
	p := newTestPage()
	staff := p.staff
	staff.AddLedger(-1, sheet.NewLedger(geom.PointF{X: 100, Y: 164}, geom.PointF{X: 130, Y: 164}))
	staff.AddLedger(-2, sheet.NewLedger(geom.PointF{X: 100, Y: 152}, geom.PointF{X: 130, Y: 152}))
	staff.AddLedger(1, sheet.NewLedger(geom.PointF{X: 300, Y: 236}, geom.PointF{X: 330, Y: 236}))

	e, _ := p.engine(engineOpts{})
	catalog := e.in.Catalogs.Get(e.sheet.Family, template.PointSize(testInterline))
	scanners := e.buildScanners(staff, catalog, newStaffScale(testInterline, 3, e.params))

	count := make(map[int]int)
	for _, s := range scanners {
		count[s.pitch]++
	}
	// Lines give -5..5, ledgers -6/-7 and -8/-9 above, 6/7 below.
	for pitch := -9; pitch <= 7; pitch++ {
		if count[pitch] != 1 {
			t.Errorf("pitch %d has %d scanners, want 1", pitch, count[pitch])
		}
	}
	if len(scanners) != 17 {
		t.Errorf("got %d scanners, want 17", len(scanners))
	}
}

func TestBuildScanners_GrandStaffStopsAtMiddleLedger(t *testing.T) {
	p := newTestPage()
	staff := p.staff
	staff.Grand = sheet.GrandPartnerBelow
	staff.AddLedger(1, sheet.NewLedger(geom.PointF{X: 300, Y: 236}, geom.PointF{X: 330, Y: 236}))
	staff.AddLedger(2, sheet.NewLedger(geom.PointF{X: 300, Y: 248}, geom.PointF{X: 330, Y: 248}))

	e, _ := p.engine(engineOpts{})
	catalog := e.in.Catalogs.Get(e.sheet.Family, template.PointSize(testInterline))
	scanners := e.buildScanners(staff, catalog, newStaffScale(testInterline, 3, e.params))

	for _, s := range scanners {
		if s.pitch > 6 {
			t.Errorf("scanner at pitch %d past the middle ledger", s.pitch)
		}
	}
}
