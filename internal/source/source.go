// Package source supplies 8×8×3 RGB blocks from image files. It is the pixel
// collaborator of the transform core: it decodes the file, picks one block
// and reduces samples deeper than 8 bits to the 8-bit range.
package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spakin/netpbm"

	"github.com/AnyUserName/jfifcore-cli/internal/block"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Mode selects how a block is taken from the image.
type Mode int

const (
	// Crop copies one whole 8×8 block at (Col, Row) in block units.
	Crop Mode = iota
	// Fit resamples the entire image down to a single 8×8 block.
	Fit
)

func (m Mode) String() string {
	if m == Fit {
		return "fit"
	}
	return "crop"
}

// Options selects the block to extract.
type Options struct {
	Mode Mode
	Col  int
	Row  int
}

// Image is a decoded source file.
type Image struct {
	image.Image
	Format string
}

// MaxPixels bounds the declared size of a source image. Headers are checked
// before any pixel buffer is allocated.
var MaxPixels int64 = 1 << 26

// Decode reads an image in any supported format: png, jpeg, gif, bmp, tiff,
// webp, or netpbm (pbm, pgm, ppm, pam).
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, format, err := decodeConfig(data)
	if err != nil {
		return nil, err
	}
	if err := checkSize(cfg); err != nil {
		return nil, err
	}

	var img image.Image
	if isNetpbm(data) {
		img, err = netpbm.Decode(bytes.NewReader(data), nil)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	return &Image{Image: img, Format: format}, nil
}

// DecodeConfig returns the dimensions and format name of an image without
// decoding its pixels.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, "", err
	}
	return decodeConfig(data)
}

func decodeConfig(data []byte) (image.Config, string, error) {
	if isNetpbm(data) {
		cfg, err := netpbm.DecodeConfig(bytes.NewReader(data))
		return cfg, netpbmFormat(data[1]), err
	}
	return image.DecodeConfig(bytes.NewReader(data))
}

func checkSize(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d image exceeds %d pixels", block.ErrInvalidInput, cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// isNetpbm reports whether data starts with a netpbm magic number, P1 to P7.
func isNetpbm(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] >= '1' && data[1] <= '7'
}

func netpbmFormat(magic byte) string {
	switch magic {
	case '1', '4':
		return "pbm"
	case '2', '5':
		return "pgm"
	case '3', '6':
		return "ppm"
	default:
		return "pam"
	}
}

// Open decodes the image file at path.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Blocks returns how many whole blocks fit horizontally and vertically.
func Blocks(img image.Image) (cols, rows int) {
	b := img.Bounds()
	return b.Dx() / block.Size, b.Dy() / block.Size
}

// Extract returns one RGB block. Crop requires the block to lie entirely
// inside the image; partial edge blocks are rejected. Alpha is ignored.
func Extract(img image.Image, opt Options) (*block.RGB, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", block.ErrInvalidInput)
	}

	var px *image.NRGBA
	switch opt.Mode {
	case Fit:
		px = imaging.Resize(img, block.Size, block.Size, imaging.Lanczos)
	default:
		cols, rows := Blocks(img)
		if opt.Col < 0 || opt.Row < 0 || opt.Col >= cols || opt.Row >= rows {
			return nil, fmt.Errorf("%w: block (%d,%d) outside %dx%d image (%dx%d whole blocks)",
				block.ErrInvalidInput, opt.Col, opt.Row, b.Dx(), b.Dy(), cols, rows)
		}
		origin := b.Min.Add(image.Pt(opt.Col*block.Size, opt.Row*block.Size))
		px = imaging.Crop(img, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(block.Size, block.Size))})
	}
	return fromNRGBA(px)
}

func fromNRGBA(px *image.NRGBA) (*block.RGB, error) {
	if px.Rect.Dx() != block.Size || px.Rect.Dy() != block.Size {
		return nil, fmt.Errorf("%w: got %dx%d pixels", block.ErrInvalidInput, px.Rect.Dx(), px.Rect.Dy())
	}
	var planes [block.Channels][]uint8
	for c := range planes {
		planes[c] = make([]uint8, 0, block.Len)
	}
	for y := 0; y < block.Size; y++ {
		off := y * px.Stride
		for x := 0; x < block.Size; x++ {
			for c := range planes {
				planes[c] = append(planes[c], px.Pix[off+c])
			}
			off += 4
		}
	}
	return block.NewRGB(planes[0], planes[1], planes[2])
}
