package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// ImageCache provides thread-safe caching of decoded page images to avoid
// redundant disk reads when the same page is processed several times.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Supported formats are PNG, JPEG, and GIF. The image is cached using the
// exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Page bundles the raster artifacts consumed by head detection.
type Page struct {
	// Source is the decoded page as loaded from disk.
	Source image.Image

	// Binary is the thresholded ink bitmap.
	Binary *BinaryImage

	// Distance is the chamfer distance to the nearest ink pixel.
	Distance *DistanceTable
}

// LoadPage loads a page and derives its binary and distance images.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the page image file.
//   - threshold: Gray level separating ink from paper; 0 selects DefaultThreshold.
func LoadPage(cache *ImageCache, path string, threshold uint8) (*Page, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return NewPage(img, threshold), nil
}

// NewPage derives the binary and distance images of an in-memory page.
func NewPage(img image.Image, threshold uint8) *Page {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	bin := Binarize(img, threshold)
	return &Page{
		Source:   img,
		Binary:   bin,
		Distance: NewDistanceTable(bin),
	}
}
