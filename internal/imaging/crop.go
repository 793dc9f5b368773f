package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	// Region is the page area actually cropped, as [x0, y0, x1, y1].
	Region      [4]int `json:"region"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropAround extracts the neighbourhood of a page box, typically a detected
// head, and enlarges it for inspection.
//
// Parameters:
//   - img: Source page.
//   - box: Area of interest, in page coordinates.
//   - margin: Pixels kept around box on every side. The result is clipped to
//     the page.
//   - scale: Enlargement factor; values <= 1 keep the original size.
//     Nearest-neighbour resampling keeps ink edges sharp.
func CropAround(img image.Image, box image.Rectangle, margin int, scale float64) (*CropResult, error) {
	if box.Empty() {
		return nil, fmt.Errorf("invalid crop region: %v is empty", box)
	}
	if margin < 0 {
		margin = 0
	}
	r := box.Inset(-margin).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", box, img.Bounds())
	}

	cropped := imaging.Crop(img, r)
	if scale > 1 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Region:      [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y},
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
