package sprite

import "fmt"

// Image is an immutable RGBA bitmap. Width and Height are logical
// pixels; the backing data is scaled by PixelRatio.
type Image struct {
	Width      int
	Height     int
	PixelRatio float64
	Data       []byte
}

// NewImage validates that the data length matches the scaled dimensions
// at four bytes per pixel.
func NewImage(width, height int, pixelRatio float64, data []byte) (*Image, error) {
	if width <= 0 || height <= 0 || pixelRatio <= 0 {
		return nil, fmt.Errorf("sprite image has invalid dimensions %dx%d@%g", width, height, pixelRatio)
	}
	expected := int(float64(width)*pixelRatio) * int(float64(height)*pixelRatio) * 4
	if len(data) != expected {
		return nil, fmt.Errorf("sprite image data length %d does not match dimensions %dx%d@%g (want %d)",
			len(data), width, height, pixelRatio, expected)
	}
	return &Image{
		Width:      width,
		Height:     height,
		PixelRatio: pixelRatio,
		Data:       data,
	}, nil
}
