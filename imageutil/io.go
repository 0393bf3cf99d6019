package imageutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	// Registered decoders. PNG, JPEG and GIF come from the standard library.
	_ "image/gif"
	_ "image/jpeg"

	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder decodes any registered image format: PNG, JPEG, GIF, BMP, TIFF,
// WebP and QOI.
type Decoder struct {
	// MaxPixels rejects images whose header announces more pixels. Zero
	// disables the check.
	MaxPixels int
}

// Decode reads one image from r. The context is checked before the
// header and again before the pixel data is decoded.
func (d Decoder) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if d.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image header: %w", err)
		}
		if cfg.Width*cfg.Height > d.MaxPixels {
			return nil, fmt.Errorf("image is %dx%d, more than %d pixels",
				cfg.Width, cfg.Height, d.MaxPixels)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// LoadImage loads an image from the specified path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decoder{}.Decode(context.Background(), f)
}

// SavePNG saves an image as PNG to the specified path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}
