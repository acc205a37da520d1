// Package imageio converts between grayscale image files and the engine's
// float grids. It is the caller-side plumbing around the engine: loading a
// pixel source for a new Slice, and saving the engine's display buffers and
// magnitude image. PNG saves are 8-bit grayscale; TIFF saves are 16-bit for
// a lossless higher-bit-depth record of the magnitude image.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	// Registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/floats"

	"kspaceexplorer/pkg/engine"
)

// LoadGray decodes the image file at path (PNG, JPEG, GIF or TIFF) and
// converts it to a grayscale float grid using the standard luma weights.
func LoadGray(path string) (*engine.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %v", path, err)
	}

	bounds := img.Bounds()
	grid := engine.NewGrid(bounds.Dy(), bounds.Dx())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			// Scale to the 0-255 range of an 8-bit source.
			grid.Set(y-bounds.Min.Y, x-bounds.Min.X, float64(g.Y)/257)
		}
	}
	return grid, nil
}

// SaveDisplayPNG writes an 8-bit display buffer as a grayscale PNG.
func SaveDisplayPNG(display []uint8, rows, cols int, path string) error {
	if len(display) != rows*cols {
		return fmt.Errorf("display buffer has %d samples, want %d", len(display), rows*cols)
	}
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetGray(x, y, color.Gray{Y: display[y*cols+x]})
		}
	}
	return writeImage(path, func(f *os.File) error { return png.Encode(f, img) })
}

// SaveGridTIFF writes a float grid as a 16-bit grayscale TIFF, linearly
// rescaled so the grid minimum maps to 0 and the maximum to 65535.
func SaveGridTIFF(grid *engine.Grid, path string) error {
	img := image.NewGray16(image.Rect(0, 0, grid.Cols, grid.Rows))
	gmin, gmax := 0.0, 0.0
	if len(grid.Data) > 0 {
		gmin = floats.Min(grid.Data)
		gmax = floats.Max(grid.Data)
	}
	scale := 0.0
	if gmax > gmin {
		scale = 65535 / (gmax - gmin)
	}
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			v := math.Max(0, math.Min(65535, (grid.At(y, x)-gmin)*scale))
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return writeImage(path, func(f *os.File) error {
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	})
}

// SavePair saves a slice's image and k-space next to each other with "_i"
// and "_k" suffixes before the extension. A ".tiff" extension stores the
// full magnitude image at 16 bits; any other extension stores both 8-bit
// display buffers as PNG.
func SavePair(s *engine.Slice, path string) error {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	shape := s.Img.Shape()

	if strings.EqualFold(ext, ".tiff") || strings.EqualFold(ext, ".tif") {
		if err := SaveGridTIFF(s.Img, base+"_i"+ext); err != nil {
			return fmt.Errorf("failed to save image: %v", err)
		}
		kmag := engine.NewGrid(shape.Rows, shape.Cols)
		for i, v := range s.KSpaceDisplay {
			kmag.Data[i] = float64(v)
		}
		if err := SaveGridTIFF(kmag, base+"_k"+ext); err != nil {
			return fmt.Errorf("failed to save kspace: %v", err)
		}
		return nil
	}

	if err := SaveDisplayPNG(s.ImageDisplay, shape.Rows, shape.Cols, base+"_i.png"); err != nil {
		return fmt.Errorf("failed to save image: %v", err)
	}
	if err := SaveDisplayPNG(s.KSpaceDisplay, shape.Rows, shape.Cols, base+"_k.png"); err != nil {
		return fmt.Errorf("failed to save kspace: %v", err)
	}
	return nil
}

func writeImage(path string, encode func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encode(f)
}
