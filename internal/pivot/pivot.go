// Package pivot locates the visual anchor of a segmented subject: the
// center of the bounding box of its opaque pixels.
package pivot

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/jonathan/parallax-reel/internal/types"
)

// DefaultAlphaThreshold is the 8-bit alpha above which a pixel counts as opaque.
const DefaultAlphaThreshold = 10

// Result is the pivot and the full image size it was measured in.
type Result struct {
	Pivot      types.Point
	Dimensions types.Dimensions
	// Empty is set when no pixel passed the threshold and the geometric center was used.
	Empty bool
}

// DetectFile decodes the image at path and detects its pivot.
func DetectFile(path string, threshold uint8) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	res := Detect(img, threshold)
	return &res, nil
}

// Detect scans img once. Pixels with alpha above threshold are opaque; images
// without an alpha channel are entirely opaque. With no opaque pixel the pivot
// is the geometric center.
func Detect(img image.Image, threshold uint8) Result {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	res := Result{Dimensions: types.Dimensions{Width: w, Height: h}}

	var box bbox
	switch m := img.(type) {
	case *image.NRGBA:
		box = scanPix(m.Pix, m.Stride, w, h, threshold)
	case *image.RGBA:
		box = scanPix(m.Pix, m.Stride, w, h, threshold)
	default:
		box = scanGeneric(img, threshold)
	}

	if !box.found {
		res.Empty = true
		res.Pivot = types.Point{X: float64(w) / 2, Y: float64(h) / 2}
		return res
	}

	res.Pivot = types.Point{
		X: float64(box.minX+box.maxX) / 2,
		Y: float64(box.minY+box.maxY) / 2,
	}
	return res
}

type bbox struct {
	minX, minY, maxX, maxY int
	found                  bool
}

func (b *bbox) add(x, y int) {
	if !b.found {
		b.minX, b.maxX, b.minY, b.maxY = x, x, y, y
		b.found = true
		return
	}
	if x < b.minX {
		b.minX = x
	}
	if x > b.maxX {
		b.maxX = x
	}
	if y < b.minY {
		b.minY = y
	}
	if y > b.maxY {
		b.maxY = y
	}
}

// scanPix walks 4-byte-per-pixel buffers whose alpha is the fourth byte.
func scanPix(pix []uint8, stride, w, h int, threshold uint8) bbox {
	var box bbox
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] > threshold {
				box.add(x, y)
			}
		}
	}
	return box
}

func scanGeneric(img image.Image, threshold uint8) bbox {
	var box bbox
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if uint8(a>>8) > threshold {
				box.add(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return box
}
