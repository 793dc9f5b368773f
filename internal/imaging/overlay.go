package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayBox is one rectangle to outline on the page.
type OverlayBox struct {
	Rect  image.Rectangle
	Label string
	// Key selects the palette entry; boxes sharing a key share a color.
	Key int
}

// OverlayResult contains the annotated page encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

// Overlay draws labelled box outlines on a copy of the page.
//
// Parameters:
//   - page: Source page, left untouched.
//   - boxes: Rectangles to outline, in page coordinates.
//   - paletteSize: Number of distinct colors; keys wrap around it.
//
// Returns the annotated image as an in-memory RGBA plus its PNG encoding.
func Overlay(page image.Image, boxes []OverlayBox, paletteSize int) (*image.RGBA, *OverlayResult, error) {
	bounds := page.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), imaging.Clone(page), image.Point{}, draw.Src)

	palette := overlayPalette(paletteSize)
	for _, box := range boxes {
		c := palette[((box.Key%len(palette))+len(palette))%len(palette)]
		outline(result, box.Rect, c)
		if box.Label != "" {
			drawLabel(result, box.Rect.Min.X, box.Rect.Min.Y-2, box.Label, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return result, &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		BoxCount:    len(boxes),
	}, nil
}

// overlayPalette spreads n saturated hues evenly around the color wheel.
func overlayPalette(n int) []color.RGBA {
	if n < 1 {
		n = 1
	}
	palette := make([]color.RGBA, n)
	for i := range palette {
		c := colorful.Hsv(360*float64(i)/float64(n), 0.85, 0.9).Clamped()
		r, g, b := c.RGB255()
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	b := img.Bounds()
	r = r.Intersect(b)
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel writes text with its baseline at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
