// Package pipeline runs head detection over a whole page: it derives the
// raster artifacts, extracts head spots, runs one engine per system and
// folds the observed seed offsets into the sheet calibration.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/detection"
	"github.com/ironsheep/notehead-scan/internal/drum"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/layout"
	"github.com/ironsheep/notehead-scan/internal/shape"
	"github.com/ironsheep/notehead-scan/internal/sheet"
	"github.com/ironsheep/notehead-scan/internal/sig"
	"github.com/ironsheep/notehead-scan/internal/template"
)

// Options tunes a page run. The zero value is usable: missing settings fall
// back to config.Default.
type Options struct {
	Config config.Config

	// Calibration seeds the sheet calibration, typically loaded from a
	// previous run. Nil starts empty.
	Calibration *calibration.SeedOffsets

	// Drums maps percussion staves; nil selects drum.Default.
	Drums *drum.Mapping

	// Catalogs provides template catalogs; nil synthesizes them.
	Catalogs *template.Store

	// Overlay requests an annotated PNG of the detected heads.
	Overlay bool

	Logger *slog.Logger
}

// Head is the report of one detected head.
type Head struct {
	ID      int         `json:"id"`
	Shape   shape.Shape `json:"shape"`
	System  int         `json:"system"`
	Staff   int         `json:"staff"`
	Pitch   int         `json:"pitch"`
	Box     [4]int      `json:"box"`
	Grade   float64     `json:"grade"`
	Boosted bool        `json:"boosted,omitempty"`
}

// Result is the outcome of a page run.
type Result struct {
	Heads       []Head                 `json:"heads"`
	Exclusions  int                    `json:"exclusions"`
	Perf        detection.Perf         `json:"perf"`
	Fingerprint string                 `json:"fingerprint"`
	Calibration []calibration.Record   `json:"calibration"`
	DroppedSeed int                    `json:"dropped_seeds,omitempty"`
	Overlay     *imaging.OverlayResult `json:"overlay,omitempty"`

	// Sheet and Graph expose the full state for callers going further.
	Sheet *sheet.Sheet `json:"-"`
	Graph *sig.Graph   `json:"-"`
}

func (o *Options) normalize() {
	if o.Config == (config.Config{}) {
		o.Config = config.Default()
	}
	o.Config.Normalize()
	if o.Drums == nil {
		o.Drums = drum.Default()
	}
	if o.Catalogs == nil {
		o.Catalogs = template.NewStore(nil)
	}
	if o.Logger == nil {
		o.Logger = config.Discard()
	}
}

// RunFiles loads a page image and its layout document, then runs Run.
func RunFiles(ctx context.Context, cache *imaging.ImageCache, imagePath, layoutPath string, opts Options) (*Result, error) {
	img, err := cache.Load(imagePath)
	if err != nil {
		return nil, err
	}
	doc, err := layout.Load(layoutPath)
	if err != nil {
		return nil, err
	}
	return Run(ctx, img, doc, opts)
}

// Run detects the note heads of a page.
//
// Systems are processed by up to Config.Workers goroutines, each with its own
// engine. The graph serializes its own updates and systems share no staff,
// and the calibration is only read while engines run: the observed offsets
// are folded in afterwards, in system order.
//
// Cancelling ctx stops scheduling new systems; systems already running
// complete. The context error is returned in that case.
//
// # Algorithm
//
//  1. Binarize the page and compute its distance table
//  2. Build sheet and graph from the layout
//  3. Extract head spots and assign them to systems
//  4. Run one engine per system
//  5. Fold tallies into the calibration, aggregate counters, fingerprint
func Run(ctx context.Context, img image.Image, doc *layout.Document, opts Options) (*Result, error) {
	opts.normalize()
	cfg := opts.Config
	log := opts.Logger

	page := imaging.NewPage(img, cfg.Threshold)
	sh, graph, dropped, err := doc.Build(page.Binary, cfg.Family)
	if err != nil {
		return nil, err
	}
	if opts.Calibration != nil {
		sh.Calibration = opts.Calibration
	}
	if dropped > 0 {
		log.Warn("seed boxes without ink", "count", dropped)
	}

	radius := cfg.Heads.SpotRadius * float64(sh.Scale.Interline)
	spots := detection.ExtractSpots(imaging.HeadSpots(img, radius, cfg.Threshold), sh.Systems)

	engines := make([]*detection.Engine, len(sh.Systems))
	for i, sys := range sh.Systems {
		in := detection.Inputs{
			Distance: page.Distance,
			Binary:   page.Binary,
			Spots:    spots[sys.ID],
			Catalogs: opts.Catalogs,
			Drums:    opts.Drums,
		}
		engines[i] = detection.NewEngine(sh, sys, graph, in, cfg.Heads, log)
	}

	if err := runEngines(ctx, engines, cfg.Workers); err != nil {
		return nil, err
	}

	res := &Result{Sheet: sh, Graph: graph, DroppedSeed: dropped}
	var live []*sig.Inter
	for i, e := range engines {
		e.Tally().FoldInto(sh.Calibration)
		res.Perf.Add(e.Perf())
		sys := sh.Systems[i]
		for _, st := range sys.Staves {
			for _, h := range st.Heads() {
				if !h.IsRemoved() {
					live = append(live, h)
					res.Heads = append(res.Heads, report(sys.ID, h))
				}
			}
		}
	}
	sort.Slice(res.Heads, func(i, j int) bool { return res.Heads[i].ID < res.Heads[j].ID })
	res.Exclusions = graph.ExclusionCount()
	res.Fingerprint = fmt.Sprintf("%016x", detection.Fingerprint(live))
	res.Calibration = sh.Calibration.Records()

	if opts.Overlay {
		ov, err := overlay(img, live)
		if err != nil {
			return nil, err
		}
		res.Overlay = ov
	}

	log.Info("page done", "systems", len(sh.Systems), "heads", len(res.Heads),
		"fingerprint", res.Fingerprint, "perf", res.Perf.String())
	return res, nil
}

// runEngines runs BuildHeads on every engine with a bounded worker pool.
func runEngines(ctx context.Context, engines []*detection.Engine, workers int) error {
	jobs := make(chan *detection.Engine)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(engines)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				e.BuildHeads()
			}
		}()
	}

	var err error
feed:
	for _, e := range engines {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- e:
		}
	}
	close(jobs)
	wg.Wait()
	return err
}

func report(systemID int, h *sig.Inter) Head {
	b := h.Bounds()
	return Head{
		ID:      h.ID(),
		Shape:   h.Shape(),
		System:  systemID,
		Staff:   h.StaffID(),
		Pitch:   h.Pitch(),
		Box:     [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		Grade:   h.Grade(),
		Boosted: h.IsBoosted(),
	}
}

func overlay(img image.Image, heads []*sig.Inter) (*imaging.OverlayResult, error) {
	boxes := make([]imaging.OverlayBox, len(heads))
	for i, h := range heads {
		boxes[i] = imaging.OverlayBox{
			Rect:  h.Bounds(),
			Label: fmt.Sprintf("%d", h.Pitch()),
			Key:   int(h.Shape()),
		}
	}
	_, res, err := imaging.Overlay(img, boxes, len(shape.Matched())+1)
	return res, err
}
