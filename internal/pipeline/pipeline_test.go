package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/layout"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/template"
)

const interline = 12

// systemYAML describes a five-line staff whose middle line is at mid, with a
// stem seed on x = 150 spanning [mid-10, mid+30].
func systemYAML(id, mid int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - id: %d\n    left: 0\n    right: 499\n    top: %d\n    bottom: %d\n", id, mid-60, mid+60)
	fmt.Fprintf(&b, "    staves:\n      - id: %d\n        lines:\n", id)
	for i := -2; i <= 2; i++ {
		y := mid + i*interline
		fmt.Fprintf(&b, "          - [[50, %d], [450, %d]]\n", y, y)
	}
	fmt.Fprintf(&b, "    seeds:\n      - [150, %d, 151, %d]\n", mid-10, mid+31)
	return b.String()
}

func layoutYAML(mids ...int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "interline: %d\nline_thickness: 2\nmax_stem: 3\nsystems:\n", interline)
	for i, mid := range mids {
		b.WriteString(systemYAML(i+1, mid))
	}
	return b.String()
}

// quarterPage draws, for each middle line ordinate, a black head hanging on
// the right of a stem at x = 150. Staff lines are not drawn.
func quarterPage(height int, mids ...int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 500, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	tmpl := template.Synthesize(shape.NoteheadBlack, interline)
	for _, mid := range mids {
		for _, p := range tmpl.ForeAt(150, mid, template.AnchorLeftStem) {
			img.SetGray(p.X, p.Y, color.Gray{})
		}
		for y := mid - 10; y <= mid+30; y++ {
			img.SetGray(150, y, color.Gray{})
		}
	}
	return img
}

func blackCatalogs() *template.Store {
	store := template.NewStore(nil)
	store.Put(template.NewCatalog(template.DefaultFamily, template.PointSize(interline),
		template.Synthesize(shape.NoteheadBlack, interline)))
	return store
}

func decode(t *testing.T, doc string) *layout.Document {
	t.Helper()
	d, err := layout.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("layout.Decode() error = %v", err)
	}
	return d
}

func TestRun_QuarterNote(t *testing.T) {
	img := quarterPage(300, 200)
	res, err := Run(context.Background(), img, decode(t, layoutYAML(200)), Options{Catalogs: blackCatalogs()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Heads) != 1 {
		t.Fatalf("got %d heads, want 1: %+v", len(res.Heads), res.Heads)
	}
	h := res.Heads[0]
	if h.Shape != shape.NoteheadBlack || h.Pitch != 0 || h.System != 1 || h.Staff != 1 {
		t.Errorf("unexpected head %+v", h)
	}
	if h.Box[0] != 150 {
		t.Errorf("box = %v, want left edge on the stem", h.Box)
	}
	if res.Perf.SeedHeads != 1 {
		t.Errorf("SeedHeads = %d, want 1", res.Perf.SeedHeads)
	}
	if len(res.Fingerprint) != 16 {
		t.Errorf("fingerprint %q, want 16 hex digits", res.Fingerprint)
	}

	want := calibration.Record{Shape: shape.NoteheadBlack, Side: calibration.Left, Offset: 0}
	found := false
	for _, r := range res.Calibration {
		if r == want {
			found = true
		}
	}
	if !found {
		t.Errorf("calibration = %+v, want %+v folded in", res.Calibration, want)
	}
	if res.Overlay != nil {
		t.Error("overlay produced without being requested")
	}
}

func TestRun_Overlay(t *testing.T) {
	img := quarterPage(300, 200)
	opts := Options{Catalogs: blackCatalogs(), Overlay: true}
	res, err := Run(context.Background(), img, decode(t, layoutYAML(200)), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Overlay == nil {
		t.Fatal("no overlay")
	}
	if res.Overlay.BoxCount != len(res.Heads) || res.Overlay.MimeType != "image/png" {
		t.Errorf("unexpected overlay %+v", res.Overlay)
	}
	if res.Overlay.Width != 500 || res.Overlay.Height != 300 {
		t.Errorf("overlay size = %dx%d, want 500x300", res.Overlay.Width, res.Overlay.Height)
	}
}

func TestRun_KeepsSeededCalibration(t *testing.T) {
	seeded := calibration.NewSeedOffsets()
	seeded.Put(shape.NoteheadVoid, calibration.Right, 1.5)

	img := quarterPage(300, 200)
	res, err := Run(context.Background(), img, decode(t, layoutYAML(200)),
		Options{Catalogs: blackCatalogs(), Calibration: seeded})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Sheet.Calibration != seeded {
		t.Error("sheet does not use the given calibration")
	}
	if v, ok := seeded.Get(shape.NoteheadVoid, calibration.Right); !ok || v != 1.5 {
		t.Errorf("seeded offset = %v (%v), want 1.5", v, ok)
	}
	if _, ok := seeded.Get(shape.NoteheadBlack, calibration.Left); !ok {
		t.Error("observed offset not folded into the given calibration")
	}
}

func TestRun_WorkersAgree(t *testing.T) {
	img := quarterPage(600, 200, 450)
	doc := layoutYAML(200, 450)

	var prints []string
	for _, workers := range []int{1, 2} {
		cfg := config.Default()
		cfg.Workers = workers
		res, err := Run(context.Background(), img, decode(t, doc), Options{Config: cfg, Catalogs: blackCatalogs()})
		if err != nil {
			t.Fatalf("workers=%d: Run() error = %v", workers, err)
		}
		if len(res.Heads) != 2 {
			t.Fatalf("workers=%d: got %d heads, want 2", workers, len(res.Heads))
		}
		if res.Perf.SeedHeads != 2 {
			t.Errorf("workers=%d: SeedHeads = %d, want 2", workers, res.Perf.SeedHeads)
		}
		prints = append(prints, res.Fingerprint)
	}
	if prints[0] != prints[1] {
		t.Errorf("fingerprints differ across worker counts: %s != %s", prints[0], prints[1])
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, quarterPage(300, 200), decode(t, layoutYAML(200)), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "page.png")
	layoutPath := filepath.Join(dir, "page.yaml")

	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, quarterPage(300, 200)); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := os.WriteFile(layoutPath, []byte(layoutYAML(200)), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := imaging.NewImageCache()
	res, err := RunFiles(context.Background(), cache, imgPath, layoutPath, Options{Catalogs: blackCatalogs()})
	if err != nil {
		t.Fatalf("RunFiles() error = %v", err)
	}
	if len(res.Heads) != 1 {
		t.Errorf("got %d heads, want 1", len(res.Heads))
	}

	if _, err := RunFiles(context.Background(), cache, filepath.Join(dir, "missing.png"), layoutPath, Options{}); err == nil {
		t.Error("expected error for missing image")
	}
	if _, err := RunFiles(context.Background(), cache, imgPath, filepath.Join(dir, "missing.yaml"), Options{}); err == nil {
		t.Error("expected error for missing layout")
	}
}
