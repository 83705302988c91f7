package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image/png"
	"os"

	"golang.org/x/image/tiff"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/renderer"
)

// ImageData contains decoded floating point image data as a Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, top row first
}

// SaveFilm writes a rendered film in the named format. PNG and TIFF are
// tone mapped to 8-bit with gamma 2.0; PFM keeps the raw linear radiance.
func SaveFilm(film *renderer.Film, filename, format string) error {
	switch format {
	case "png":
		return WritePNG(film, filename)
	case "tiff":
		return WriteTIFF(film, filename)
	case "pfm":
		return WritePFM(film, filename)
	default:
		return fmt.Errorf("unknown image format %q (available: png, tiff, pfm)", format)
	}
}

// WritePNG writes the tone-mapped film as a PNG file.
func WritePNG(film *renderer.Film, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, film.ToImage()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// WriteTIFF writes the tone-mapped film as a deflate-compressed TIFF file.
func WriteTIFF(film *renderer.Film, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	if err := tiff.Encode(file, film.ToImage(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("failed to encode TIFF: %w", err)
	}
	return nil
}

// WritePFM writes the film as a binary Portable Float Map: a "PF" magic
// line, the dimensions, a negative scale marking little-endian data,
// then float32 RGB triplets in bottom-to-top scanline order.
func WritePFM(film *renderer.Film, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := fmt.Fprintf(writer, "PF\n%d %d\n-1.0\n", film.Width(), film.Height()); err != nil {
		return fmt.Errorf("failed to write PFM header: %w", err)
	}

	row := make([]float32, 3*film.Width())
	for y := film.Height() - 1; y >= 0; y-- {
		for x := 0; x < film.Width(); x++ {
			pixel := film.PixelColor(x, y)
			row[3*x] = float32(pixel.X)
			row[3*x+1] = float32(pixel.Y)
			row[3*x+2] = float32(pixel.Z)
		}
		if err := binary.Write(writer, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("failed to write PFM data: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write PFM data: %w", err)
	}
	return nil
}

// ReadPFM reads a binary Portable Float Map. The sign of the scale line
// selects the byte order; its magnitude is ignored.
func ReadPFM(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var magic string
	var width, height int
	var scale float64
	if _, err := fmt.Fscan(reader, &magic, &width, &height, &scale); err != nil {
		return nil, fmt.Errorf("failed to parse PFM header: %w", err)
	}
	if magic != "PF" {
		return nil, fmt.Errorf("unsupported PFM magic %q", magic)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid PFM dimensions %dx%d", width, height)
	}

	// A single whitespace byte separates the header from the pixel data.
	if _, err := reader.ReadByte(); err != nil {
		return nil, fmt.Errorf("failed to parse PFM header: %w", err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if scale > 0 {
		order = binary.BigEndian
	}

	pixels := make([]core.Vec3, width*height)
	row := make([]float32, 3*width)
	for y := height - 1; y >= 0; y-- {
		if err := binary.Read(reader, order, row); err != nil {
			return nil, fmt.Errorf("failed to read PFM data: %w", err)
		}
		for x := 0; x < width; x++ {
			pixels[y*width+x] = core.NewVec3(
				float64(row[3*x]),
				float64(row[3*x+1]),
				float64(row[3*x+2]),
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}
